package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/cookies"
	"github.com/xkilldash9x/ficwright/internal/prompt"
)

const (
	loginDropdownSelector = "#login-dropdown"
	loginFieldSelector    = "#user_session_login_small"
	logoutLinkSelector    = `a[data-method="delete"]`
)

// loadStoredCookies reads the cookie file. A missing or unreadable file is
// reported as ok == false so callers can fall back to an anonymous session.
func loadStoredCookies(logger *zap.Logger, path string) (cookies.Set, bool, error) {
	set, err := cookies.Load(path)
	switch {
	case err == nil:
		return set, true, nil
	case errors.Is(err, cookies.ErrNotFound):
		return nil, false, nil
	case errors.Is(err, cookies.ErrMalformed):
		logger.Warn("Ignoring unreadable cookie file.", zap.String("path", path), zap.Error(err))
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// loginCommand reuses stored cookies when they still work, otherwise lets the
// user log in by hand and captures the resulting cookies.
type loginCommand struct {
	cookieFile string
	prompter   prompt.Prompter
	out        io.Writer
}

func (c *loginCommand) Name() string { return "login" }

func (c *loginCommand) Execute(ctx context.Context, s *browser.Session) error {
	set, ok, err := loadStoredCookies(s.Logger(), c.cookieFile)
	if err != nil {
		return err
	}
	if ok {
		if err := cookies.ApplyTo(ctx, s, set); err != nil {
			return err
		}
		loggedIn, err := c.prompter.Confirm("Are you logged in", true)
		if err != nil {
			return err
		}
		if !loggedIn {
			fmt.Fprintf(c.out, "Deleting unusable cookie file: %s\n", c.cookieFile)
			return cookies.Remove(c.cookieFile)
		}
		return nil
	}

	dropdown, err := s.Find(ctx, loginDropdownSelector)
	if err != nil {
		return fmt.Errorf("failed to find login dropdown: %w", err)
	}
	if err := dropdown.Click(ctx); err != nil {
		return fmt.Errorf("failed to open login dropdown: %w", err)
	}
	field, err := s.Find(ctx, loginFieldSelector)
	if err != nil {
		return fmt.Errorf("failed to find login field: %w", err)
	}
	if err := field.Focus(ctx); err != nil {
		return err
	}

	if err := c.prompter.Wait("Please log in, then press Enter"); err != nil {
		return err
	}

	set, err = cookies.FromSession(ctx, s)
	if err != nil {
		return err
	}
	if err := cookies.Save(c.cookieFile, set); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cookies saved to %s\n", c.cookieFile)
	return nil
}

// logoutCommand ends the stored session on the site.
type logoutCommand struct {
	cookieFile string
	keep       bool
	out        io.Writer
}

func (c *logoutCommand) Name() string { return "logout" }

func (c *logoutCommand) Execute(ctx context.Context, s *browser.Session) error {
	set, err := cookies.Load(c.cookieFile)
	if err != nil {
		return err
	}
	if err := cookies.ApplyTo(ctx, s, set); err != nil {
		return err
	}

	link, err := s.Find(ctx, logoutLinkSelector)
	if err != nil {
		return fmt.Errorf("failed to find log out link: %w", err)
	}
	if err := link.Click(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.Invalidate()

	if c.keep {
		return nil
	}
	if err := cookies.Remove(c.cookieFile); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted cookie file: %s\n", c.cookieFile)
	return nil
}

// lookCommand opens the site, logged in when possible, and leaves the
// browser to the user.
type lookCommand struct {
	cookieFile string
	prompter   prompt.Prompter
}

func (c *lookCommand) Name() string { return "look" }

func (c *lookCommand) Execute(ctx context.Context, s *browser.Session) error {
	set, ok, err := loadStoredCookies(s.Logger(), c.cookieFile)
	if err != nil {
		return err
	}
	if ok {
		if err := cookies.ApplyTo(ctx, s, set); err != nil {
			return err
		}
	}
	return c.prompter.Wait("Waiting for user input, press Enter to close the browser")
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), &loginCommand{
				cookieFile: a.cfg.Session.CookieFile,
				prompter:   a.prompter,
				out:        cmd.OutOrStdout(),
			})
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and delete the stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), &logoutCommand{
				cookieFile: a.cfg.Session.CookieFile,
				keep:       keep,
				out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "keep the cookie file after logging out")
	return cmd
}

func newLookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "look",
		Short: "Open the site with the stored session and wait",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), &lookCommand{
				cookieFile: a.cfg.Session.CookieFile,
				prompter:   a.prompter,
			})
		},
	}
}
