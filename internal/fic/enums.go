package fic

import (
	"fmt"
	"strings"
)

// AgeRating is the work's audience rating.
type AgeRating int

const (
	NotRated AgeRating = iota
	GeneralAudiences
	TeenAndUp
	Mature
	Explicit
	numAgeRatings
)

// The tables below hold the exact strings the archive uses as option and
// checkbox values. They are indexed by the enumeration.
var ageRatingWire = [...]string{
	NotRated:         "Not Rated",
	GeneralAudiences: "General Audiences",
	TeenAndUp:        "Teen And Up Audiences",
	Mature:           "Mature",
	Explicit:         "Explicit",
}

// ArchiveWarning is one of the fixed content warnings.
type ArchiveWarning int

const (
	// ChooseNotToWarn is the sentinel asserted when no other warning applies.
	ChooseNotToWarn ArchiveWarning = iota
	GraphicViolence
	MajorCharacterDeath
	NoWarningsApply
	NonCon
	Underage
	numWarnings
)

var warningWire = [...]string{
	ChooseNotToWarn:     "Choose Not To Use Archive Warnings",
	GraphicViolence:     "Graphic Depictions Of Violence",
	MajorCharacterDeath: "Major Character Death",
	NoWarningsApply:     "No Archive Warnings Apply",
	NonCon:              "Rape/Non-Con",
	Underage:            "Underage Sex",
}

// warningAliases are spellings accepted when reading documents.
var warningAliases = map[string]ArchiveWarning{
	"Chose Not To Use Archive Warnings":         ChooseNotToWarn,
	"Creator Chose Not To Use Archive Warnings": ChooseNotToWarn,
}

// Category is a relationship category.
type Category int

const (
	FF Category = iota
	MM
	FM
	Gen
	Multi
	OtherCategory
	numCategories
)

var categoryWire = [...]string{
	FF:            "F/F",
	MM:            "M/M",
	FM:            "F/M",
	Gen:           "Gen",
	Multi:         "Multi",
	OtherCategory: "Other",
}

// FileFormat is the markup the work text is written in.
type FileFormat int

const (
	Markdown FileFormat = iota
	HTML
	Typst
	numFormats
)

var formatWire = [...]string{
	Markdown: "Markdown",
	HTML:     "HTML",
	Typst:    "Typst",
}

// Compile-time guard: every table must have exactly one entry per value.
func _() {
	var x [1]struct{}
	_ = x[len(ageRatingWire)-int(numAgeRatings)]
	_ = x[len(warningWire)-int(numWarnings)]
	_ = x[len(categoryWire)-int(numCategories)]
	_ = x[len(formatWire)-int(numFormats)]
}

func wireString(table []string, i int, kind string) string {
	if i < 0 || i >= len(table) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return table[i]
}

func parseWire(table []string, s, kind string, fold bool) (int, error) {
	s = strings.TrimSpace(s)
	for i, w := range table {
		if w == s || (fold && strings.EqualFold(w, s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

// AllAgeRatings returns every rating in form order.
func AllAgeRatings() []AgeRating {
	all := make([]AgeRating, 0, numAgeRatings)
	for r := AgeRating(0); r < numAgeRatings; r++ {
		all = append(all, r)
	}
	return all
}

// AllWarnings returns every warning, sentinel first.
func AllWarnings() []ArchiveWarning {
	all := make([]ArchiveWarning, 0, numWarnings)
	for w := ArchiveWarning(0); w < numWarnings; w++ {
		all = append(all, w)
	}
	return all
}

// AllCategories returns every category.
func AllCategories() []Category {
	all := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		all = append(all, c)
	}
	return all
}

// AllFormats returns every file format.
func AllFormats() []FileFormat {
	all := make([]FileFormat, 0, numFormats)
	for f := FileFormat(0); f < numFormats; f++ {
		all = append(all, f)
	}
	return all
}

func (r AgeRating) String() string { return wireString(ageRatingWire[:], int(r), "AgeRating") }

// Value is the option value the rating dropdown uses.
func (r AgeRating) Value() string { return r.String() }

func (r AgeRating) MarshalText() ([]byte, error) {
	if r < 0 || r >= numAgeRatings {
		return nil, fmt.Errorf("invalid rating %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *AgeRating) UnmarshalText(text []byte) error {
	i, err := parseWire(ageRatingWire[:], string(text), "rating", false)
	if err != nil {
		return err
	}
	*r = AgeRating(i)
	return nil
}

func (w ArchiveWarning) String() string { return wireString(warningWire[:], int(w), "ArchiveWarning") }

// Value is the checkbox value of the warning.
func (w ArchiveWarning) Value() string { return w.String() }

func (w ArchiveWarning) MarshalText() ([]byte, error) {
	if w < 0 || w >= numWarnings {
		return nil, fmt.Errorf("invalid warning %d", int(w))
	}
	return []byte(w.String()), nil
}

func (w *ArchiveWarning) UnmarshalText(text []byte) error {
	if alias, ok := warningAliases[strings.TrimSpace(string(text))]; ok {
		*w = alias
		return nil
	}
	i, err := parseWire(warningWire[:], string(text), "warning", false)
	if err != nil {
		return err
	}
	*w = ArchiveWarning(i)
	return nil
}

func (c Category) String() string { return wireString(categoryWire[:], int(c), "Category") }

// Value is the checkbox value of the category.
func (c Category) Value() string { return c.String() }

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || c >= numCategories {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	i, err := parseWire(categoryWire[:], string(text), "category", false)
	if err != nil {
		return err
	}
	*c = Category(i)
	return nil
}

func (f FileFormat) String() string { return wireString(formatWire[:], int(f), "FileFormat") }

func (f FileFormat) MarshalText() ([]byte, error) {
	if f < 0 || f >= numFormats {
		return nil, fmt.Errorf("invalid format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText accepts format names in any case.
func (f *FileFormat) UnmarshalText(text []byte) error {
	i, err := parseWire(formatWire[:], string(text), "format", true)
	if err != nil {
		return err
	}
	*f = FileFormat(i)
	return nil
}
