package forms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/browser/browsertest"
	"github.com/xkilldash9x/ficwright/internal/forms"
)

type fixture struct {
	fake    *browsertest.Fake
	session *browser.Session
	form    *forms.WorkForm
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := browsertest.NewWorkForm()
	s := browsertest.NewSession(t, f)
	form, err := forms.ResolveWorkForm(context.Background(), s)
	require.NoError(t, err)
	return &fixture{fake: f, session: s, form: form}
}

func (fx *fixture) find(t *testing.T, selector string) *browser.Node {
	t.Helper()
	n, err := fx.session.Find(context.Background(), selector)
	require.NoError(t, err)
	return n
}

func (fx *fixture) autocomplete(t *testing.T, dd string) *forms.Autocomplete {
	t.Helper()
	return forms.NewAutocomplete(fx.find(t, dd+" > ul.autocomplete"))
}

// indexOf returns the position of the first event matching kind, target and
// text, or -1.
func indexOf(events []browsertest.Event, kind, target, text string) int {
	for i, e := range events {
		if e.Kind == kind && e.Target == target && e.Text == text {
			return i
		}
	}
	return -1
}

func ptr(s string) *string { return &s }
