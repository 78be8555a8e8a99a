package fic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[fic]
url = ""
co_authors = ["Jo", "Jo", "Sam"]
title = "A Quiet Harbour"
file = "chapter1.md"
start_note = "Thanks to my beta."
summary = "Two keepers, one lighthouse."

[tags]
rating = "Teen And Up Audiences"
warnings = []
fandoms = ["Alpha", "Beta", "Alpha"]
categories = ["M/M", "F/F", "M/M"]
relationships = ["A/B"]
characters = ["A", "B"]
other = ["Fluff"]

[meta]
format = "markdown"
language = "English"
gift_to = ["friend"]
total_chapters = 2

[chapters.02]
title = "Second"

[chapters.01]
title = "First"
`

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet(" Beta ", "Gamma", "", "Beta")
	assert.Equal(t, OrderedSet{"Beta", "Gamma"}, s)
	assert.True(t, s.Contains("Gamma"))
	assert.False(t, s.Contains("Alpha"))

	desired := NewOrderedSet("Alpha", "Beta")
	assert.Equal(t, OrderedSet{"Gamma"}, s.Difference(desired))
	assert.Equal(t, OrderedSet{"Alpha"}, desired.Difference(s))
	assert.Empty(t, desired.Difference(desired))

	assert.True(t, NewOrderedSet("a", "b").Equal(NewOrderedSet("b", "a")))
	assert.False(t, NewOrderedSet("a", "b").Equal(NewOrderedSet("a")))
	assert.True(t, OrderedSet(nil).Equal(OrderedSet{}))
}

func TestEffectiveWarnings(t *testing.T) {
	tests := []struct {
		name     string
		warnings []ArchiveWarning
		expected []ArchiveWarning
	}{
		{"EmptyMeansSentinel", nil, []ArchiveWarning{ChooseNotToWarn}},
		{"SentinelAlone", []ArchiveWarning{ChooseNotToWarn}, []ArchiveWarning{ChooseNotToWarn}},
		{"SpecificWarningsOnly", []ArchiveWarning{Underage, GraphicViolence}, []ArchiveWarning{GraphicViolence, Underage}},
		{"SentinelNeverMixed", []ArchiveWarning{ChooseNotToWarn, MajorCharacterDeath}, []ArchiveWarning{MajorCharacterDeath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tags{Warnings: tt.warnings}.EffectiveWarnings()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("TOML", func(t *testing.T) {
		work, err := Decode([]byte(sampleTOML), false)
		require.NoError(t, err)

		note := "Thanks to my beta."
		summary := "Two keepers, one lighthouse."
		expected := Details{
			CoAuthors: OrderedSet{"Jo", "Sam"},
			Title:     "A Quiet Harbour",
			File:      "chapter1.md",
			StartNote: &note,
			Summary:   &summary,
		}
		if diff := cmp.Diff(expected, work.Fic, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("fic details mismatch (-want +got):\n%s", diff)
		}

		assert.Equal(t, TeenAndUp, work.Tags.Rating)
		assert.Empty(t, work.Tags.Warnings)
		assert.Equal(t, OrderedSet{"Alpha", "Beta"}, work.Tags.Fandoms)
		assert.Equal(t, []Category{FF, MM}, work.Tags.Categories)
		assert.Equal(t, Markdown, work.Meta.Format)
		assert.Equal(t, []string{"01", "02"}, work.ChapterKeys())
		assert.True(t, work.Chaptered())
		assert.Nil(t, work.Remix)
		assert.Nil(t, work.Fic.EndNote, "absent note stays nil")
	})

	t.Run("YAML", func(t *testing.T) {
		doc := `
fic:
  title: Harbour
  co_authors: []
tags:
  rating: Explicit
  warnings: ["Major Character Death"]
  fandoms: [Alpha]
meta:
  format: HTML
  language: Deutsch
remix:
  url: https://archive.test/works/1
  title: Original
  author: someone
  language: English
  translated: true
`
		work, err := Decode([]byte(doc), true)
		require.NoError(t, err)
		assert.Equal(t, Explicit, work.Tags.Rating)
		assert.Equal(t, []ArchiveWarning{MajorCharacterDeath}, work.Tags.Warnings)
		assert.Equal(t, HTML, work.Meta.Format)
		require.NotNil(t, work.Remix)
		assert.True(t, work.Remix.Translated)
	})

	t.Run("UnknownKeyIsMalformed", func(t *testing.T) {
		_, err := Decode([]byte("[fic]\ntitel = \"typo\"\n"), false)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("UnknownEnumIsMalformed", func(t *testing.T) {
		_, err := Decode([]byte("[tags]\nrating = \"PG-13\"\n"), false)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("SentinelWithOtherWarningsIsMalformed", func(t *testing.T) {
		doc := "[tags]\nwarnings = [\"Choose Not To Use Archive Warnings\", \"Underage Sex\"]\n"
		_, err := Decode([]byte(doc), false)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestLoadAndSave(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("TemplateRoundTrip", func(t *testing.T) {
		for _, name := range []string{"work.toml", "work.yaml"} {
			t.Run(name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), name)
				require.NoError(t, Save(path, Template()))

				loaded, err := Load(path)
				require.NoError(t, err)
				assert.Equal(t, path, loaded.Source)

				expected := Template()
				expected.Normalize()
				loaded.Source = ""
				if diff := cmp.Diff(expected, loaded, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("template mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("ContentPathIsRelativeToDocument", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "work.toml")
		require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

		work, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "chapter1.md"), work.ContentPath())
	})
}

func TestTemplate(t *testing.T) {
	tpl := Template()
	assert.Equal(t, "Untitled", tpl.Fic.Title)
	assert.Equal(t, "untitled.md", tpl.Fic.File)
	require.NotNil(t, tpl.Fic.StartNote)
	assert.Empty(t, *tpl.Fic.StartNote)
	require.NotNil(t, tpl.Fic.Summary)
	assert.Equal(t, "Presented without summary", *tpl.Fic.Summary)
	assert.Equal(t, []string{"01", "02"}, tpl.ChapterKeys())
	assert.Equal(t, []ArchiveWarning{ChooseNotToWarn}, tpl.Tags.EffectiveWarnings())
}
