package forms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

// PrefaceForm holds title, byline, summary and notes.
type PrefaceForm struct {
	node      *browser.Node
	logger    *zap.Logger
	title     *browser.Resolver
	summary   *browser.Resolver
	pseuds    *browser.Resolver
	coAuthors *browser.Resolver
	notes     *browser.Resolver
}

func NewPrefaceForm(n *browser.Node, logger *zap.Logger) *PrefaceForm {
	return &PrefaceForm{
		node:      n,
		logger:    logger,
		title:     n.Find(`dd.title > input[type="text"]`),
		summary:   n.Find("dd.summary > textarea"),
		pseuds:    n.Find("dd.byline > select"),
		coAuthors: n.Find("dd.byline.coauthors"),
		notes:     n.Find("dd.notes"),
	}
}

func (p *PrefaceForm) SetTitle(ctx context.Context, title string) error {
	field, err := resolveWith(ctx, p.title, NewTextField)
	if err != nil {
		return err
	}
	return field.SetText(ctx, title)
}

func (p *PrefaceForm) SetSummary(ctx context.Context, summary string) error {
	field, err := resolveWith(ctx, p.summary, NewTextField)
	if err != nil {
		return err
	}
	return field.SetText(ctx, summary)
}

// SetPseud selects the posting pseud by its visible name.
func (p *PrefaceForm) SetPseud(ctx context.Context, pseud string) error {
	dd, err := resolveWith(ctx, p.pseuds, NewDropdown)
	if err != nil {
		return err
	}
	found, err := dd.SelectByText(ctx, pseud)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: pseud %q", ErrNoSuchOption, pseud)
	}
	return nil
}

// CoAuthors returns the co-creator list behind its "has co-authors" gate.
func (p *PrefaceForm) CoAuthors(ctx context.Context) (*GatedAutocomplete, error) {
	base, err := p.coAuthors.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve co-authors: %w", err)
	}
	return NewGatedAutocomplete(
		base.Find(`input[type="checkbox"]`),
		base.Find("fieldset > ul.autocomplete"),
	), nil
}

// Notes returns the start and end note fields.
func (p *PrefaceForm) Notes(ctx context.Context) (start, end *GatedTextField, err error) {
	base, err := p.notes.Resolve(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve notes: %w", err)
	}
	start = NewGatedTextField(
		base.Find(`li.start > input[type="checkbox"]`),
		base.Find("li.start > fieldset.start > textarea"),
	)
	end = NewGatedTextField(
		base.Find(`li.end > input[type="checkbox"]`),
		base.Find("li.end > fieldset.end > textarea"),
	)
	return start, end, nil
}

// FillOut applies the preface details.
func (p *PrefaceForm) FillOut(ctx context.Context, d fic.Details) error {
	if err := p.SetTitle(ctx, d.Title); err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	if d.AuthorPseud != "" {
		if err := p.SetPseud(ctx, d.AuthorPseud); err != nil {
			return fmt.Errorf("failed to set pseud: %w", err)
		}
	}

	coAuthors, err := p.CoAuthors(ctx)
	if err != nil {
		return err
	}
	plan, err := coAuthors.Set(ctx, d.CoAuthors)
	if err != nil {
		return fmt.Errorf("failed to set co-authors: %w", err)
	}
	if !plan.Empty() {
		p.logger.Info("Reconciled co-authors.", zap.Strings("removed", plan.Remove), zap.Strings("added", plan.Add))
	}

	if d.Summary != nil {
		if err := p.SetSummary(ctx, *d.Summary); err != nil {
			return fmt.Errorf("failed to set summary: %w", err)
		}
	}

	start, end, err := p.Notes(ctx)
	if err != nil {
		return err
	}
	if err := start.Set(ctx, d.StartNote); err != nil {
		return fmt.Errorf("failed to set start note: %w", err)
	}
	if err := end.Set(ctx, d.EndNote); err != nil {
		return fmt.Errorf("failed to set end note: %w", err)
	}
	return nil
}
