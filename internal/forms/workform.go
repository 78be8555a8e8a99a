package forms

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
	"github.com/xkilldash9x/ficwright/internal/wait"
)

// ErrDraftRejected is returned when the archive refuses to save a draft.
var ErrDraftRejected = errors.New("draft rejected by the archive")

const errorBlockSelector = "#error, div.error"

// FillOptions controls the optional parts of WorkForm.FillOut.
type FillOptions struct {
	// Associations also fills the associations section, best effort.
	Associations bool
}

// WorkForm is the whole "post new work" form.
type WorkForm struct {
	session      *browser.Session
	node         *browser.Node
	logger       *zap.Logger
	tags         *browser.Resolver
	preface      *browser.Resolver
	associations *browser.Resolver
	content      *browser.Resolver
	save         *browser.Resolver
}

// ResolveWorkForm finds the form root on the current page.
func ResolveWorkForm(ctx context.Context, s *browser.Session) (*WorkForm, error) {
	n, err := s.Find(ctx, "#work-form")
	if err != nil {
		return nil, fmt.Errorf("failed to find work form: %w", err)
	}
	return &WorkForm{
		session:      s,
		node:         n,
		logger:       s.Logger().Named("work_form"),
		tags:         n.Find("fieldset.work.meta"),
		preface:      n.Find("fieldset.preface"),
		associations: n.Find("fieldset#associations"),
		content:      n.Find("textarea#content"),
		save:         n.Find(`input[name="save_button"]`),
	}, nil
}

func (f *WorkForm) Tags(ctx context.Context) (*TagsForm, error) {
	n, err := f.tags.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags section: %w", err)
	}
	return NewTagsForm(n, f.logger), nil
}

func (f *WorkForm) Preface(ctx context.Context) (*PrefaceForm, error) {
	n, err := f.preface.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve preface section: %w", err)
	}
	return NewPrefaceForm(n, f.logger), nil
}

func (f *WorkForm) Associations(ctx context.Context) (*AssociationsForm, error) {
	n, err := f.associations.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve associations section: %w", err)
	}
	return NewAssociationsForm(n, f.logger), nil
}

// FillOut reconciles the form to w. Tags and preface failures abort. The
// associations section, when enabled, only logs its failures.
func (f *WorkForm) FillOut(ctx context.Context, w *fic.Work, opts FillOptions) error {
	tags, err := f.Tags(ctx)
	if err != nil {
		return err
	}
	if err := tags.FillOut(ctx, w.Tags); err != nil {
		return err
	}

	preface, err := f.Preface(ctx)
	if err != nil {
		return err
	}
	if err := preface.FillOut(ctx, w.Fic); err != nil {
		return err
	}

	if opts.Associations {
		assoc, err := f.Associations(ctx)
		if err == nil {
			err = assoc.FillOut(ctx, w)
		}
		if err != nil {
			f.logger.Warn("Associations were only partly applied.", zap.Error(err))
		}
	}

	f.logger.Info("Work form filled out.", zap.String("title", w.Fic.Title))
	return nil
}

// SetContent replaces the work text.
func (f *WorkForm) SetContent(ctx context.Context, content string) error {
	field, err := resolveWith(ctx, f.content, NewTextField)
	if err != nil {
		return err
	}
	return field.SetText(ctx, content)
}

// SaveDraft clicks "Save As Draft" and waits up to timeout for the outcome.
// It succeeds only once the browser shows a saved work; if the archive
// re-renders the form instead, the error is ErrDraftRejected carrying the
// archive's error list. A zero timeout uses the session's operation timeout.
func (f *WorkForm) SaveDraft(ctx context.Context, timeout time.Duration) error {
	before, err := f.session.CurrentURL(ctx)
	if err != nil {
		return err
	}
	button, err := f.save.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to find save button: %w", err)
	}
	if err := button.Click(ctx); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	f.session.Invalidate()

	if timeout <= 0 {
		timeout = f.session.OperationTimeout()
	}
	if timeout <= 0 {
		timeout = f.session.ElementTimeout()
	}

	var reason string
	err = wait.Until(ctx, "draft page", timeout, f.session.PollInterval(),
		func(ctx context.Context) (bool, error) {
			current, err := f.session.CurrentURL(ctx)
			if err != nil {
				return false, err
			}
			if current == before {
				return false, nil
			}
			if savedWorkPath(current) {
				return true, nil
			}
			reason, err = f.rejection(ctx)
			return reason != "", err
		})
	if err != nil {
		return err
	}
	if reason != "" {
		f.logger.Warn("Draft was not saved.", zap.String("reason", reason))
		return fmt.Errorf("%w: %s", ErrDraftRejected, reason)
	}
	return nil
}

var savedWork = regexp.MustCompile(`^/works/\d+/?$`)

// savedWorkPath reports whether location is the page of a stored work.
func savedWorkPath(location string) bool {
	u, err := url.Parse(location)
	return err == nil && savedWork.MatchString(u.Path)
}

// rejection inspects the current page for the archive's error block or a
// re-rendered form and describes what it found. It returns "" while neither
// is present.
func (f *WorkForm) rejection(ctx context.Context) (string, error) {
	blocks, err := f.session.Resolver(errorBlockSelector).AllowEmpty().ResolveAll(ctx)
	if err != nil {
		return "", err
	}
	if len(blocks) > 0 {
		markup, err := blocks[0].InnerHTML(ctx)
		if err != nil {
			return "", err
		}
		return errorText(markup), nil
	}

	shown, err := f.session.Resolver("#work-form").AllowEmpty().ResolveAll(ctx)
	if err != nil {
		return "", err
	}
	if len(shown) > 0 {
		return "the form was shown again", nil
	}
	return "", nil
}

// errorText flattens the error block to one line, one sentence per item.
func errorText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "the archive reported an error"
	}
	var items []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := strings.Join(strings.Fields(li.Text()), " "); text != "" {
			items = append(items, text)
		}
	})
	if len(items) == 0 {
		if text := strings.Join(strings.Fields(doc.Text()), " "); text != "" {
			return text
		}
		return "the archive reported an error"
	}
	return strings.Join(items, " ")
}
