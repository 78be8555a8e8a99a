package cmd

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/ficwright/internal/fic"
)

// The document commands never touch the browser, so they bypass the
// orchestrator and need only the file system.

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <file>",
		Short: "Write a blank work document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTemplate(cmd.OutOrStdout(), args[0])
		},
	}
}

func newDebugTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-template <file>",
		Short: "Parse a work document and print what was understood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return debugTemplate(cmd.OutOrStdout(), args[0])
		},
	}
}

func writeTemplate(out io.Writer, path string) error {
	if err := fic.Save(path, fic.Template()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Template written to %s\n", path)
	return nil
}

func debugTemplate(out io.Writer, path string) error {
	work, err := fic.Load(path)
	if err != nil {
		return err
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(work, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render work document: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
