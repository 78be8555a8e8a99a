// Package fic models the declarative document describing one work: its
// preface details, tags, submission metadata and chapters.
package fic

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
)

// Work is the desired state of the "post new work" form.
type Work struct {
	Fic      Details            `toml:"fic" yaml:"fic" json:"fic"`
	Tags     Tags               `toml:"tags" yaml:"tags" json:"tags"`
	Meta     Meta               `toml:"meta" yaml:"meta" json:"meta"`
	Remix    *Remix             `toml:"remix,omitempty" yaml:"remix,omitempty" json:"remix,omitempty"`
	Chapters map[string]Details `toml:"chapters,omitempty" yaml:"chapters,omitempty" json:"chapters,omitempty"`

	// Source is the path the work was loaded from.
	Source string `toml:"-" yaml:"-" json:"-"`
}

// Details is the preface of a work or of one chapter. Nil notes and summary
// mean "absent", which is different from present but empty.
type Details struct {
	URL         string     `toml:"url" yaml:"url" json:"url"`
	AuthorPseud string     `toml:"author_pseud,omitempty" yaml:"author_pseud,omitempty" json:"author_pseud,omitempty"`
	CoAuthors   OrderedSet `toml:"co_authors" yaml:"co_authors" json:"co_authors"`
	Title       string     `toml:"title" yaml:"title" json:"title"`
	File        string     `toml:"file,omitempty" yaml:"file,omitempty" json:"file,omitempty"`
	StartNote   *string    `toml:"start_note,omitempty" yaml:"start_note,omitempty" json:"start_note,omitempty"`
	EndNote     *string    `toml:"end_note,omitempty" yaml:"end_note,omitempty" json:"end_note,omitempty"`
	Summary     *string    `toml:"summary,omitempty" yaml:"summary,omitempty" json:"summary,omitempty"`
}

// Tags is the tag section of the form.
type Tags struct {
	Rating        AgeRating        `toml:"rating" yaml:"rating" json:"rating"`
	Warnings      []ArchiveWarning `toml:"warnings" yaml:"warnings" json:"warnings"`
	Fandoms       OrderedSet       `toml:"fandoms" yaml:"fandoms" json:"fandoms"`
	Categories    []Category       `toml:"categories" yaml:"categories" json:"categories"`
	Relationships OrderedSet       `toml:"relationships" yaml:"relationships" json:"relationships"`
	Characters    OrderedSet       `toml:"characters" yaml:"characters" json:"characters"`
	Other         OrderedSet       `toml:"other" yaml:"other" json:"other"`
}

// Meta holds submission metadata used by the associations section.
type Meta struct {
	Format          FileFormat `toml:"format" yaml:"format" json:"format"`
	Language        string     `toml:"language" yaml:"language" json:"language"`
	Challenges      OrderedSet `toml:"challenges" yaml:"challenges" json:"challenges"`
	GiftTo          OrderedSet `toml:"gift_to" yaml:"gift_to" json:"gift_to"`
	WorkSkin        string     `toml:"work_skin,omitempty" yaml:"work_skin,omitempty" json:"work_skin,omitempty"`
	TotalChapters   uint64     `toml:"total_chapters" yaml:"total_chapters" json:"total_chapters"`
	InSeries        string     `toml:"in_series,omitempty" yaml:"in_series,omitempty" json:"in_series,omitempty"`
	PublicationDate string     `toml:"publication_date,omitempty" yaml:"publication_date,omitempty" json:"publication_date,omitempty"`
}

// Remix describes the work this one is inspired by or translates.
type Remix struct {
	URL        string `toml:"url" yaml:"url" json:"url"`
	Title      string `toml:"title" yaml:"title" json:"title"`
	Author     string `toml:"author" yaml:"author" json:"author"`
	Language   string `toml:"language" yaml:"language" json:"language"`
	Translated bool   `toml:"translated" yaml:"translated" json:"translated"`
}

// EffectiveWarnings is the exact set of warning boxes that should be checked:
// the sentinel alone when no warning is given, otherwise the given warnings
// in table order.
func (t Tags) EffectiveWarnings() []ArchiveWarning {
	var out []ArchiveWarning
	for _, w := range AllWarnings() {
		if w != ChooseNotToWarn && slices.Contains(t.Warnings, w) {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return []ArchiveWarning{ChooseNotToWarn}
	}
	return out
}

// Validate checks constraints the decoder cannot express.
func (w *Work) Validate() error {
	if len(w.Tags.Warnings) > 1 && slices.Contains(w.Tags.Warnings, ChooseNotToWarn) {
		return fmt.Errorf("%w: warning %q cannot be combined with other warnings", ErrMalformed, ChooseNotToWarn)
	}
	return nil
}

// Normalize dedupes every collection and sorts the enum sets.
func (w *Work) Normalize() {
	w.Fic.normalize()
	for key, ch := range w.Chapters {
		ch.normalize()
		w.Chapters[key] = ch
	}

	w.Tags.Warnings = sortedUnique(w.Tags.Warnings)
	w.Tags.Categories = sortedUnique(w.Tags.Categories)
	w.Tags.Fandoms = NewOrderedSet(w.Tags.Fandoms...)
	w.Tags.Relationships = NewOrderedSet(w.Tags.Relationships...)
	w.Tags.Characters = NewOrderedSet(w.Tags.Characters...)
	w.Tags.Other = NewOrderedSet(w.Tags.Other...)

	w.Meta.Challenges = NewOrderedSet(w.Meta.Challenges...)
	w.Meta.GiftTo = NewOrderedSet(w.Meta.GiftTo...)
}

func (d *Details) normalize() {
	d.CoAuthors = NewOrderedSet(d.CoAuthors...)
}

func sortedUnique[T ~int](in []T) []T {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// ChapterKeys returns the chapter identifiers in key order.
func (w *Work) ChapterKeys() []string {
	keys := make([]string, 0, len(w.Chapters))
	for k := range w.Chapters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chaptered reports whether the work spans more than one chapter.
func (w *Work) Chaptered() bool {
	return w.Meta.TotalChapters > 1 || len(w.Chapters) > 1
}

// ContentPath resolves the work text file relative to the document.
func (w *Work) ContentPath() string {
	if w.Fic.File == "" || filepath.IsAbs(w.Fic.File) || w.Source == "" {
		return w.Fic.File
	}
	return filepath.Join(filepath.Dir(w.Source), w.Fic.File)
}
