package fic

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when the document file does not exist.
	ErrNotFound = errors.New("work document not found")
	// ErrMalformed is returned when the document cannot be decoded or is inconsistent.
	ErrMalformed = errors.New("malformed work document")
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads a work document. Files ending in .yaml or .yml are decoded as
// YAML, everything else as TOML. Unknown keys are rejected.
func Load(path string) (*Work, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, expanded)
		}
		return nil, fmt.Errorf("failed to read work document: %w", err)
	}

	work, err := Decode(data, isYAML(expanded))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	work.Source = expanded
	return work, nil
}

// Decode parses a document from memory.
func Decode(data []byte, asYAML bool) (*Work, error) {
	var work Work
	if asYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&work); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	} else {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&work); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("%w: line %d column %d: %w", ErrMalformed, row, col, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	work.Normalize()
	if err := work.Validate(); err != nil {
		return nil, err
	}
	return &work, nil
}

// Encode renders w in the format Load expects for the given path.
func Encode(w *Work, path string) ([]byte, error) {
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("failed to encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes w to path, creating or truncating the file.
func Save(path string, w *Work) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	data, err := Encode(w, expanded)
	if err != nil {
		return err
	}
	if err := os.WriteFile(expanded, data, 0o644); err != nil {
		return fmt.Errorf("failed to write work document: %w", err)
	}
	return nil
}

// Template returns the skeleton written by the template command.
func Template() *Work {
	empty := ""
	summary := "Presented without summary"
	return &Work{
		Fic: Details{
			Title:     "Untitled",
			File:      "untitled.md",
			StartNote: &empty,
			EndNote:   &empty,
			Summary:   &summary,
		},
		Tags: Tags{
			Rating:   NotRated,
			Warnings: []ArchiveWarning{ChooseNotToWarn},
		},
		Meta: Meta{Format: Markdown},
		Chapters: map[string]Details{
			"01": {},
			"02": {},
		},
	}
}
