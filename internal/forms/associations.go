package forms

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

// AssociationsForm covers collections, gift recipients, the remix, series,
// chaptering and backdating gates, language and work skin. Filling it is best
// effort: each step runs regardless of earlier failures.
type AssociationsForm struct {
	node        *browser.Node
	logger      *zap.Logger
	collections *browser.Resolver
	recipients  *browser.Resolver
	language    *browser.Resolver
	skin        *browser.Resolver
	gates       map[string]*browser.Resolver
}

const (
	gateRemix     = "remix"
	gateSeries    = "series"
	gateChaptered = "chaptered"
	gateBackdate  = "backdate"
)

func NewAssociationsForm(n *browser.Node, logger *zap.Logger) *AssociationsForm {
	return &AssociationsForm{
		node:        n,
		logger:      logger,
		collections: n.Find("dd.collection > ul.autocomplete"),
		recipients:  n.Find("dd.recipient > ul.recipient"),
		language:    n.Find("dd.language > select"),
		skin:        n.Find("dd.skin > select"),
		gates: map[string]*browser.Resolver{
			gateRemix:     n.Find(`dt.parent > input[type="checkbox"]`),
			gateSeries:    n.Find(`dt.serial > input[type="checkbox"]`),
			gateChaptered: n.Find(`dt.chaptered.wip > input[type="checkbox"]`),
			gateBackdate:  n.Find(`dt.backdate > input[type="checkbox"]`),
		},
	}
}

func (a *AssociationsForm) SetCollections(ctx context.Context, desired fic.OrderedSet) (Plan, error) {
	list, err := resolveWith(ctx, a.collections, NewAutocomplete)
	if err != nil {
		return Plan{}, err
	}
	return list.Reconcile(ctx, desired)
}

func (a *AssociationsForm) SetRecipients(ctx context.Context, desired fic.OrderedSet) (Plan, error) {
	list, err := resolveWith(ctx, a.recipients, NewAutocomplete)
	if err != nil {
		return Plan{}, err
	}
	return list.Reconcile(ctx, desired)
}

// SetLanguage selects a language by its visible name.
func (a *AssociationsForm) SetLanguage(ctx context.Context, language string) error {
	return a.chooseByText(ctx, a.language, "language", language)
}

// SetSkin selects a work skin by its visible name.
func (a *AssociationsForm) SetSkin(ctx context.Context, skin string) error {
	return a.chooseByText(ctx, a.skin, "work skin", skin)
}

func (a *AssociationsForm) chooseByText(ctx context.Context, r *browser.Resolver, what, text string) error {
	dd, err := resolveWith(ctx, r, NewDropdown)
	if err != nil {
		return err
	}
	opts, err := dd.Options(ctx)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if o.Selected && o.Text == text {
			return nil
		}
	}
	found, err := dd.SelectByText(ctx, text)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s %q", ErrNoSuchOption, what, text)
	}
	return nil
}

// SetGate toggles one of the remix, series, chaptered or backdate gates.
func (a *AssociationsForm) SetGate(ctx context.Context, name string, on bool) error {
	r, ok := a.gates[name]
	if !ok {
		return fmt.Errorf("%w: gate %q", ErrNoSuchOption, name)
	}
	box, err := resolveWith(ctx, r, NewCheckbox)
	if err != nil {
		return err
	}
	return box.Set(ctx, on)
}

// FillOut applies every association that w carries and returns the joined
// errors of the steps that failed.
func (a *AssociationsForm) FillOut(ctx context.Context, w *fic.Work) error {
	var errs []error
	step := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	plan, err := a.SetRecipients(ctx, w.Meta.GiftTo)
	step("gift recipients", err)
	if err == nil && !plan.Empty() {
		a.logger.Info("Reconciled gift recipients.", zap.Strings("removed", plan.Remove), zap.Strings("added", plan.Add))
	}
	plan, err = a.SetCollections(ctx, w.Meta.Challenges)
	step("collections", err)
	if err == nil && !plan.Empty() {
		a.logger.Info("Reconciled collections.", zap.Strings("removed", plan.Remove), zap.Strings("added", plan.Add))
	}

	step("remix gate", a.SetGate(ctx, gateRemix, w.Remix != nil))
	step("series gate", a.SetGate(ctx, gateSeries, w.Meta.InSeries != ""))
	step("chaptered gate", a.SetGate(ctx, gateChaptered, w.Chaptered()))
	step("backdate gate", a.SetGate(ctx, gateBackdate, w.Meta.PublicationDate != ""))

	if w.Meta.Language != "" {
		step("language", a.SetLanguage(ctx, w.Meta.Language))
	}
	if w.Meta.WorkSkin != "" {
		step("work skin", a.SetSkin(ctx, w.Meta.WorkSkin))
	}
	return errors.Join(errs...)
}
