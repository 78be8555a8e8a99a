package forms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ficwright/internal/browser/browsertest"
	"github.com/xkilldash9x/ficwright/internal/forms"
)

func TestCheckbox(t *testing.T) {
	ctx := context.Background()

	t.Run("SetIsIdempotent", func(t *testing.T) {
		fx := newFixture(t)
		box := forms.NewCheckbox(fx.find(t, "#work_category_strings_gen"))

		require.NoError(t, box.Set(ctx, true))
		assert.Equal(t, 1, fx.fake.Count("toggle"))
		assert.True(t, fx.fake.Checked("#work_category_strings_gen"))

		fx.fake.ResetEvents()
		require.NoError(t, box.Set(ctx, true))
		assert.Zero(t, fx.fake.Count("toggle"))
		assert.Zero(t, fx.fake.Count("click"))

		require.NoError(t, box.Set(ctx, false))
		assert.False(t, fx.fake.Checked("#work_category_strings_gen"))
	})

	t.Run("ValueAndState", func(t *testing.T) {
		fx := newFixture(t)
		fx.fake.SetChecked("#work_category_strings_ff", true)
		box := forms.NewCheckbox(fx.find(t, "#work_category_strings_ff"))

		value, err := box.Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, "F/F", value)

		state, err := box.State(ctx)
		require.NoError(t, err)
		assert.True(t, state)
	})

	t.Run("NotInteractableIsSkipped", func(t *testing.T) {
		f := browsertest.New(`<html><body><fieldset hidden><input type="checkbox" id="x"></fieldset></body></html>`)
		s := browsertest.NewSession(t, f)
		n, err := s.Find(ctx, "#x")
		require.NoError(t, err)

		require.NoError(t, forms.NewCheckbox(n).Set(ctx, true))
		assert.Zero(t, f.Count("toggle"))
		assert.False(t, f.Checked("#x"))
	})
}

func TestTextField(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	field := forms.NewTextField(fx.find(t, "#work_title"))

	require.NoError(t, field.SetText(ctx, "First"))
	require.NoError(t, field.SetText(ctx, "Second"))
	assert.Equal(t, "Second", fx.fake.Value("#work_title"))

	text, err := field.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second", text)

	require.NoError(t, field.Clear(ctx))
	assert.Empty(t, fx.fake.Value("#work_title"))
	assert.Equal(t, 3, fx.fake.Count("clear"))
}

func TestDropdown(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	dd := forms.NewDropdown(fx.find(t, "#work_rating_string"))

	opts, err := dd.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 5)
	assert.Equal(t, forms.Option{Value: "Not Rated", Text: "Not Rated", Selected: true}, opts[0])

	value, ok, err := dd.CurrentValue(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Not Rated", value)

	found, err := dd.SelectByValue(ctx, "Mature")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Mature", fx.fake.Selected("#work_rating_string"))

	found, err = dd.SelectByValue(ctx, "Unheard Of")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "Mature", fx.fake.Selected("#work_rating_string"))

	found, err = dd.SelectByText(ctx, "Explicit")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Explicit", fx.fake.Selected("#work_rating_string"))
}

func TestDropdown_NoSelection(t *testing.T) {
	ctx := context.Background()
	f := browsertest.New(`<html><body><select id="s"><option value="a">A</option></select></body></html>`)
	s := browsertest.NewSession(t, f)
	n, err := s.Find(ctx, "#s")
	require.NoError(t, err)

	_, ok, err := forms.NewDropdown(n).CurrentValue(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckboxGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("SetExactly", func(t *testing.T) {
		fx := newFixture(t)
		fx.fake.SetChecked("#work_category_strings_multi", true)
		group := forms.NewCheckboxGroup(fx.find(t, "dd.category > fieldset"))

		require.NoError(t, group.SetExactly(ctx, []string{"F/F", "Gen"}))

		members, err := group.States(ctx)
		require.NoError(t, err)
		var checked []string
		for _, m := range members {
			if m.Checked {
				checked = append(checked, m.Value)
			}
		}
		assert.Equal(t, []string{"F/F", "Gen"}, checked)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		fx := newFixture(t)
		group := forms.NewCheckboxGroup(fx.find(t, "dd.category > fieldset"))

		found, err := group.SetOne(ctx, "X/Y", true)
		require.NoError(t, err)
		assert.False(t, found)

		err = group.SetExactly(ctx, []string{"X/Y"})
		assert.ErrorIs(t, err, forms.ErrNoSuchOption)
	})

	t.Run("Demonstrate", func(t *testing.T) {
		fx := newFixture(t)
		fx.fake.SetChecked("#work_category_strings_mm", true)
		group := forms.NewCheckboxGroup(fx.find(t, "dd.category > fieldset"))
		before, err := group.States(ctx)
		require.NoError(t, err)

		require.NoError(t, group.Demonstrate(ctx, 0))

		after, err := group.States(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.NotZero(t, fx.fake.Count("toggle"))
	})
}
