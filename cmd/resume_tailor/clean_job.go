package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/spf13/cobra"
)

func newCleanJobCmd(a *app) *cobra.Command {
	var textFile string

	cmd := &cobra.Command{
		Use:   "clean-job",
		Short: "Clean a job description (text or HTML) the way the API stores it",
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := os.ReadFile(textFile)
			if err != nil {
				return fmt.Errorf("failed to read job description: %w", err)
			}
			input, err := ingestion.ValidateJobInput(string(data), "", "")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, ingestion.CleanDescription(input.Description))
			return nil
		},
	}
	cmd.Flags().StringVarP(&textFile, "text-file", "t", "", "Path to the job description (required)")
	_ = cmd.MarkFlagRequired("text-file")
	return cmd
}
