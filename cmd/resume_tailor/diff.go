package main

import (
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/spf13/cobra"
)

func newDiffCmd(a *app) *cobra.Command {
	var (
		originalPath string
		improvedPath string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two résumé versions and classify every change by risk",
		RunE: func(_ *cobra.Command, _ []string) error {
			original, err := readResume(originalPath)
			if err != nil {
				return err
			}
			improved, err := readResume(improvedPath)
			if err != nil {
				return err
			}

			svc := pipeline.NewService(nil, nil, nil, nil, a.logger, pipeline.Options{})
			report := svc.ComputeDiff(original, improved)
			if asJSON {
				return encodeJSON(a, report)
			}
			printNotes(a, "original", original.Notes)
			printNotes(a, "improved", improved.Notes)
			observability.NewPrinter(a.out).PrintDiff(report.Entries, report.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&originalPath, "original", "", "Path to the original résumé JSON (required)")
	cmd.Flags().StringVar(&improvedPath, "improved", "", "Path to the improved résumé JSON (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("improved")
	return cmd
}
