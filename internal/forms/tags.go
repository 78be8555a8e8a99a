package forms

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

// TagsForm is the "work meta" fieldset holding rating, warnings, categories
// and the four free text tag lists.
type TagsForm struct {
	node          *browser.Node
	logger        *zap.Logger
	rating        *browser.Resolver
	warnings      *browser.Resolver
	categories    *browser.Resolver
	fandoms       *browser.Resolver
	relationships *browser.Resolver
	characters    *browser.Resolver
	other         *browser.Resolver
}

func NewTagsForm(n *browser.Node, logger *zap.Logger) *TagsForm {
	return &TagsForm{
		node:          n,
		logger:        logger,
		rating:        n.Find("dd.rating > select"),
		warnings:      n.Find("dd.warning > fieldset.warnings"),
		categories:    n.Find("dd.category > fieldset"),
		fandoms:       n.Find("dd.fandom > ul.autocomplete"),
		relationships: n.Find("dd.relationship > ul.autocomplete"),
		characters:    n.Find("dd.character > ul.autocomplete"),
		other:         n.Find("dd.freeform > ul.autocomplete"),
	}
}

func (t *TagsForm) Rating(ctx context.Context) (*Dropdown, error) {
	return resolveWith(ctx, t.rating, NewDropdown)
}

func (t *TagsForm) Warnings(ctx context.Context) (*CheckboxGroup, error) {
	return resolveWith(ctx, t.warnings, NewCheckboxGroup)
}

func (t *TagsForm) Categories(ctx context.Context) (*CheckboxGroup, error) {
	return resolveWith(ctx, t.categories, NewCheckboxGroup)
}

func (t *TagsForm) Fandoms(ctx context.Context) (*Autocomplete, error) {
	return resolveWith(ctx, t.fandoms, NewAutocomplete)
}

func (t *TagsForm) Relationships(ctx context.Context) (*Autocomplete, error) {
	return resolveWith(ctx, t.relationships, NewAutocomplete)
}

func (t *TagsForm) Characters(ctx context.Context) (*Autocomplete, error) {
	return resolveWith(ctx, t.characters, NewAutocomplete)
}

func (t *TagsForm) Other(ctx context.Context) (*Autocomplete, error) {
	return resolveWith(ctx, t.other, NewAutocomplete)
}

// SetRating selects r unless it is already selected.
func (t *TagsForm) SetRating(ctx context.Context, r fic.AgeRating) error {
	dd, err := t.Rating(ctx)
	if err != nil {
		return err
	}
	current, ok, err := dd.CurrentValue(ctx)
	if err != nil {
		return err
	}
	if ok && current == r.Value() {
		return nil
	}
	found, err := dd.SelectByValue(ctx, r.Value())
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: rating %q", ErrNoSuchOption, r.Value())
	}
	return nil
}

// SetWarnings checks exactly the effective warnings of tags: the sentinel
// alone when none are given.
func (t *TagsForm) SetWarnings(ctx context.Context, tags fic.Tags) error {
	group, err := t.Warnings(ctx)
	if err != nil {
		return err
	}
	effective := tags.EffectiveWarnings()
	keys := make([]string, len(effective))
	for i, w := range effective {
		keys[i] = w.Value()
	}
	return group.SetExactly(ctx, keys)
}

// SetCategories checks exactly the given categories.
func (t *TagsForm) SetCategories(ctx context.Context, categories []fic.Category) error {
	group, err := t.Categories(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Value()
	}
	return group.SetExactly(ctx, keys)
}

func (t *TagsForm) reconcile(ctx context.Context, name string, r *browser.Resolver, desired fic.OrderedSet) error {
	list, err := resolveWith(ctx, r, NewAutocomplete)
	if err != nil {
		return err
	}
	plan, err := list.Reconcile(ctx, desired)
	if err != nil {
		return fmt.Errorf("failed to reconcile %s: %w", name, err)
	}
	if !plan.Empty() {
		t.logger.Info("Reconciled tag list.", zap.String("list", name),
			zap.Strings("removed", plan.Remove), zap.Strings("added", plan.Add))
	}
	return nil
}

// FillOut applies every tag field in form order.
func (t *TagsForm) FillOut(ctx context.Context, tags fic.Tags) error {
	if err := t.SetRating(ctx, tags.Rating); err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}
	if err := t.SetWarnings(ctx, tags); err != nil {
		return fmt.Errorf("failed to set warnings: %w", err)
	}
	if err := t.SetCategories(ctx, tags.Categories); err != nil {
		return fmt.Errorf("failed to set categories: %w", err)
	}
	lists := []struct {
		name    string
		r       *browser.Resolver
		desired fic.OrderedSet
	}{
		{"fandoms", t.fandoms, tags.Fandoms},
		{"relationships", t.relationships, tags.Relationships},
		{"characters", t.characters, tags.Characters},
		{"other", t.other, tags.Other},
	}
	for _, l := range lists {
		if err := t.reconcile(ctx, l.name, l.r, l.desired); err != nil {
			return err
		}
	}
	return nil
}

// Demonstrate exercises every tag widget and puts each back as it was.
func (t *TagsForm) Demonstrate(ctx context.Context, delay time.Duration) error {
	rating, err := t.Rating(ctx)
	if err != nil {
		return err
	}
	var ratings []string
	for _, r := range fic.AllAgeRatings() {
		ratings = append(ratings, r.Value())
	}
	if err := rating.Demonstrate(ctx, ratings, delay); err != nil {
		return fmt.Errorf("rating: %w", err)
	}

	warnings, err := t.Warnings(ctx)
	if err != nil {
		return err
	}
	if err := warnings.Demonstrate(ctx, delay); err != nil {
		return fmt.Errorf("warnings: %w", err)
	}

	categories, err := t.Categories(ctx)
	if err != nil {
		return err
	}
	if err := categories.Demonstrate(ctx, delay); err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	samples := []struct {
		name    string
		r       *browser.Resolver
		entries []string
	}{
		{"fandoms", t.fandoms, []string{"Bleach (Anime & Manga)", "Naruto (Anime & Manga)", "Pride and Prejudice - Jane Austen"}},
		{"relationships", t.relationships, []string{"Kurosaki Ichigo/Kuchiki Rukia", "Hyuuga Hinata/Uzumaki Naruto", "Mr. Darcy"}},
		{"characters", t.characters, []string{"Huey", "Dewey", "Louie"}},
		{"other", t.other, []string{"Isn't this just so cool?", "Look ma, no hands!", "A", "B", "C"}},
	}
	for _, s := range samples {
		list, err := resolveWith(ctx, s.r, NewAutocomplete)
		if err != nil {
			return err
		}
		t.logger.Debug("Demonstrating tag list.", zap.String("list", s.name))
		if err := list.Demonstrate(ctx, s.entries, delay); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
