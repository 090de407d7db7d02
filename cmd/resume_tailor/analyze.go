package main

import (
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		resumePath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find weak résumé items and the questions that would strengthen them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readResume(resumePath)
			if err != nil {
				return err
			}

			c, err := build(cmd.Context(), a.cfg, a.logger, false)
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.service.AnalyzeWeaknesses(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if asJSON {
				return encodeJSON(a, result)
			}
			observability.NewPrinter(a.out).PrintEnrichment(result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to the résumé JSON (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}
