// Package prompt asks the person at the terminal to confirm or to finish a
// manual step in the browser.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
)

// ErrCanceled is returned when the user interrupts a prompt or closes input.
var ErrCanceled = errors.New("prompt canceled")

// Prompter is the interactive surface the commands use.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(label string, defaultYes bool) (bool, error)
	// Wait blocks until the user presses Enter.
	Wait(label string) error
}

// Terminal prompts on the process's terminal, or on Stdin/Stdout when set.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

var _ Prompter = Terminal{}

func (t Terminal) Confirm(label string, defaultYes bool) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	if defaultYes {
		p.Default = "y"
	}
	_, err := p.Run()
	return confirmed(err)
}

func (t Terminal) Wait(label string) error {
	p := promptui.Prompt{
		Label:       label,
		Stdin:       t.Stdin,
		Stdout:      t.Stdout,
		HideEntered: true,
	}
	_, err := p.Run()
	return canceled(err)
}

// confirmed interprets the result of a confirm prompt: promptui reports a
// "no" answer as ErrAbort.
func confirmed(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, canceled(err)
	}
}

func canceled(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}
