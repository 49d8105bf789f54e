package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/padflow/version"
	"github.com/kbukum/padflow/visualize"
)

func newGraphCmd(a *app) *cobra.Command {
	var file, output, format string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render a pipeline definition as DOT or Mermaid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.build(file)
			if err != nil {
				return err
			}

			f := visualize.Format(format)
			if output == "" || output == "-" {
				if f == "" {
					f = visualize.FormatDOT
				}
				return visualize.Write(cmd.OutOrStdout(), p.Snapshot(), f)
			}
			if f == "" {
				return visualize.File(p, output)
			}
			return writeFile(output, func(w io.Writer) error {
				return visualize.Write(w, p.Snapshot(), f)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "pipeline definition (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&format, "format", "", "dot or mermaid (default from the output extension)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), version.Get().String()+"\n")
			return err
		},
	}
}
