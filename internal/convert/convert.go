// Package convert turns chapter source files into the HTML the archive's
// work text field accepts.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/config"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

var (
	// ErrUnsupportedFormat is returned for source formats with no converter.
	ErrUnsupportedFormat = errors.New("unsupported source format")
	// ErrConversion is returned when the external converter fails.
	ErrConversion = errors.New("conversion failed")
)

// Replaced in tests.
var (
	execCommandContext = exec.CommandContext
	lookPath           = exec.LookPath
)

// Converter renders source text as HTML.
type Converter interface {
	ToHTML(ctx context.Context, format fic.FileFormat, src string) (string, error)
	File(ctx context.Context, format fic.FileFormat, path string) (string, error)
}

// Service converts with pandoc when it is installed and with goldmark
// otherwise, then optionally sanitizes the result.
type Service struct {
	cfg      config.ConvertConfig
	logger   *zap.Logger
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

var _ Converter = (*Service)(nil)

func New(cfg config.ConvertConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		logger: logger.Named("convert"),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	if cfg.Sanitize {
		s.policy = bluemonday.UGCPolicy()
	}
	return s
}

// ToHTML converts src written in format.
func (s *Service) ToHTML(ctx context.Context, format fic.FileFormat, src string) (string, error) {
	var (
		out string
		err error
	)
	switch format {
	case fic.Markdown:
		out, err = s.markdownToHTML(ctx, src)
	case fic.HTML:
		out = src
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}
	if s.policy != nil {
		out = s.policy.Sanitize(out)
	}
	return out, nil
}

// File reads path and converts its content.
func (s *Service) File(ctx context.Context, format fic.FileFormat, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ToHTML(ctx, format, string(data))
}

func (s *Service) markdownToHTML(ctx context.Context, src string) (string, error) {
	pandoc, err := lookPath(s.cfg.Pandoc)
	if s.cfg.Pandoc == "" || err != nil {
		s.logger.Debug("pandoc not available, using built-in markdown renderer", zap.String("pandoc", s.cfg.Pandoc))
		return s.goldmark(src)
	}

	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, pandoc, s.cfg.PandocArgs...)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("Running pandoc.", zap.String("path", pandoc), zap.Strings("args", s.cfg.PandocArgs))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: pandoc: %w: %s", ErrConversion, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (s *Service) goldmark(src string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown: %w", ErrConversion, err)
	}
	return buf.String(), nil
}
