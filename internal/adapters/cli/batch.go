package cli

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

type batchFlags struct {
	dir    string
	out    string
	format string
	fields []string
}

func (r *root) newBatchCommand() *cobra.Command {
	flags := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse every resume in a directory into one export",
		Example: `  resumectl batch --dir ./resumes
  resumectl batch --dir ./resumes --format csv --fields name,email,phone --out ./out/candidates.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, closeFn, err := r.services()
			if err != nil {
				return err
			}
			defer closeFn()
			return runBatch(cmd, services.Ingestor, r.request(flags), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.dir, "dir", "", "directory containing resumes")
	cmd.Flags().StringVar(&flags.out, "out", "", "export path (default resume_data.<format> in the working directory)")
	cmd.Flags().StringVar(&flags.format, "format", "", "export format: xlsx, csv or json (default from config)")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "export columns, comma separated (default all)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (r *root) request(flags *batchFlags) domain.BatchRequest {
	format := strings.ToLower(strings.TrimSpace(flags.format))
	if format == "" {
		format = r.cfg.ExportFormat
	}
	if format == "" {
		format = domain.FormatXLSX
	}
	out := flags.out
	if out == "" {
		out = domain.ExportBaseName + "." + format
	}
	return domain.BatchRequest{
		SourceDir:  flags.dir,
		OutputPath: out,
		Format:     format,
		Fields:     flags.fields,
	}
}

func runBatch(cmd *cobra.Command, ingestor ports.DirectoryIngestor, req domain.BatchRequest, w io.Writer) error {
	progress := ports.ProgressFunc(func(completed, total int) {
		printf(w, "progress: %d/%d documents\n", completed, total)
	})

	result, err := ingestor.Ingest(cmd.Context(), req, progress)
	if err != nil {
		return err
	}
	printReport(w, result.Report)

	out := req.OutputPath
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	printf(w, "export written to %s\n", out)
	return nil
}

func printReport(w io.Writer, report *domain.BatchReport) {
	printf(w, "batch %s: %d processed, %d failed, %d total\n",
		report.BatchID, report.Processed(), report.Failed(), report.Total)
	for _, failure := range report.Failures {
		printf(w, "  failed %s: %s: %s\n", failure.Filename, failure.Kind, failure.Message)
	}

	stats := report.Stats
	if stats.Records == 0 {
		return
	}
	printf(w, "fields found in %d records:\n", stats.Records)
	for _, row := range []struct {
		field domain.Field
		count int
	}{
		{domain.FieldName, stats.Name},
		{domain.FieldPhone, stats.Phone},
		{domain.FieldEmail, stats.Email},
		{domain.FieldLocation, stats.Location},
		{domain.FieldQualification, stats.Qualification},
		{domain.FieldSkills, stats.Skills},
		{domain.FieldYearsOfExperience, stats.YearsOfExperience},
	} {
		printf(w, "  %-20s %d\n", row.field.Header(), row.count)
	}
}
