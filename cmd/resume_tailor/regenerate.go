package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

func newRegenerateCmd(a *app) *cobra.Command {
	var (
		resumePath  string
		jobPath     string
		company     string
		role        string
		instruction string
		language    string
		analyze     bool
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rewrite résumé items for a job and show the resulting diff",
		Long: `Rewrite every experience and project item, or only the weak ones with
--analyze, apply the accepted rewrites and print the classified diff.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			raw, err := os.ReadFile(resumePath)
			if err != nil {
				return fmt.Errorf("failed to read resume: %w", err)
			}

			c, err := build(ctx, a.cfg, a.logger, false)
			if err != nil {
				return err
			}
			defer c.Close()

			stored, notes, err := c.service.CreateResume(ctx, "", raw)
			if err != nil {
				return err
			}
			printNotes(a, "resume", notes)

			req := pipeline.TailorRequest{
				ResumeID:    stored.ID,
				Analyze:     analyze,
				Instruction: instruction,
				Language:    language,
				OnProgress: func(e pipeline.ProgressEvent) {
					a.logger.Info(e.Message)
				},
			}
			if jobPath != "" {
				description, err := os.ReadFile(jobPath)
				if err != nil {
					return fmt.Errorf("failed to read job description: %w", err)
				}
				job, err := c.service.CreateJob(ctx, types.JobInput{Description: string(description), CompanyName: company, Role: role})
				if err != nil {
					return err
				}
				req.JobID = &job.ID
			}

			result, err := c.service.Tailor(ctx, req)
			if err != nil {
				return err
			}

			printer := observability.NewPrinter(a.out)
			printer.PrintKeywords(result.Keywords, result.Suggestions)
			if result.Enrichment != nil {
				printer.PrintEnrichment(result.Enrichment)
			}
			printer.PrintEnvelope(result.Envelope)
			printer.PrintDiff(result.Diff.Entries, result.Diff.Summary)

			if outPath != "" {
				if err := writeJSON(outPath, result.Improved); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Improved résumé: %s\n", outPath)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&resumePath, "resume", "r", "", "Path to the résumé JSON (required)")
	flags.StringVarP(&jobPath, "job", "j", "", "Path to a job description (text or HTML)")
	flags.StringVar(&company, "company", "", "Company name for the job")
	flags.StringVar(&role, "role", "", "Role title for the job")
	flags.StringVarP(&instruction, "instruction", "i", "", "Extra rewriting instruction")
	flags.StringVarP(&language, "language", "l", "", "Output language, overrides regeneration.output-language")
	flags.BoolVar(&analyze, "analyze", false, "Only rewrite items found weak by analysis")
	flags.StringVarP(&outPath, "out", "o", "", "Write the improved résumé JSON here")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}
