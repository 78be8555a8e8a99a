package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/convert"
	"github.com/xkilldash9x/ficwright/internal/cookies"
	"github.com/xkilldash9x/ficwright/internal/fic"
	"github.com/xkilldash9x/ficwright/internal/forms"
	"github.com/xkilldash9x/ficwright/internal/observability"
	"github.com/xkilldash9x/ficwright/internal/prompt"
)

const (
	newWorkPath = "/works/new"
	demoDelay   = 500 * time.Millisecond
)

// postNewCommand fills in the new work form from a work document.
type postNewCommand struct {
	path       string
	draft      bool
	cookieFile string
	fill       forms.FillOptions
	submitWait time.Duration
	converter  convert.Converter
	prompter   prompt.Prompter
	out        io.Writer
	logger     *zap.Logger

	work *fic.Work
}

func (c *postNewCommand) Name() string { return "post-new" }

// Prepare loads the work document.
func (c *postNewCommand) Prepare(ctx context.Context) error {
	work, err := fic.Load(c.path)
	if err != nil {
		return err
	}
	c.work = work
	c.logger.Info("Loaded work document.",
		zap.String("path", work.Source),
		zap.String("title", work.Fic.Title),
		zap.Int("chapters", len(work.Chapters)),
	)
	return nil
}

func (c *postNewCommand) Execute(ctx context.Context, s *browser.Session) error {
	if c.work == nil {
		return fmt.Errorf("work document %s was not loaded", c.path)
	}
	set, err := cookies.Load(c.cookieFile)
	if err != nil {
		return fmt.Errorf("posting requires a stored login (run ficwright login): %w", err)
	}
	if err := cookies.ApplyTo(ctx, s, set); err != nil {
		return err
	}
	if err := s.Visit(ctx, newWorkPath); err != nil {
		return err
	}

	form, err := forms.ResolveWorkForm(ctx, s)
	if err != nil {
		return err
	}
	if err := form.FillOut(ctx, c.work, c.fill); err != nil {
		return err
	}

	if path := c.work.ContentPath(); path != "" && c.converter != nil {
		content, err := c.converter.File(ctx, c.work.Meta.Format, path)
		if err != nil {
			return err
		}
		if err := form.SetContent(ctx, content); err != nil {
			return fmt.Errorf("failed to set work text: %w", err)
		}
	}

	if !c.draft {
		return c.prompter.Wait("Review the form and post it, then press Enter")
	}
	if err := form.SaveDraft(ctx, c.submitWait); err != nil {
		return err
	}
	location, err := s.CurrentURL(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Draft saved: %s\n", location)
	return nil
}

// demoCommand cycles every tag widget on the new work form.
type demoCommand struct {
	cookieFile string
	delay      time.Duration
}

func (c *demoCommand) Name() string { return "demo" }

func (c *demoCommand) Execute(ctx context.Context, s *browser.Session) error {
	set, ok, err := loadStoredCookies(s.Logger(), c.cookieFile)
	if err != nil {
		return err
	}
	if ok {
		if err := cookies.ApplyTo(ctx, s, set); err != nil {
			return err
		}
	}
	if err := s.Visit(ctx, newWorkPath); err != nil {
		return err
	}
	form, err := forms.ResolveWorkForm(ctx, s)
	if err != nil {
		return err
	}
	tags, err := form.Tags(ctx)
	if err != nil {
		return err
	}
	return tags.Demonstrate(ctx, c.delay)
}

func newPostNewCmd(a *app) *cobra.Command {
	var draft bool
	cmd := &cobra.Command{
		Use:   "post-new <file>",
		Short: "Fill in the post new work form from a work document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("post_new")
			return a.run(cmd.Context(), &postNewCommand{
				path:       args[0],
				draft:      draft,
				cookieFile: a.cfg.Session.CookieFile,
				fill:       forms.FillOptions{Associations: a.cfg.Post.Associations},
				submitWait: a.cfg.Post.SubmitWait,
				converter:  convert.New(a.cfg.Convert, logger),
				prompter:   a.prompter,
				out:        cmd.OutOrStdout(),
				logger:     logger,
			})
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "save the work as a draft instead of waiting for review")
	return cmd
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Exercise the tag widgets on the new work form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), &demoCommand{
				cookieFile: a.cfg.Session.CookieFile,
				delay:      demoDelay,
			})
		},
	}
}
