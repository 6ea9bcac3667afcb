package cli

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/resume-extractor/internal/adapters/mcp"
)

func (r *root) newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extractor as an MCP tool server over stdio",
		Long: `mcp starts a Model Context Protocol server on stdin/stdout with two tools:

  extract_candidate  extract fields from a block of resume text
  parse_directory    parse every resume in a directory, optionally writing an export

Logs go to stderr so stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, closeFn, err := r.services()
			if err != nil {
				return err
			}
			defer closeFn()

			server := mcpadapter.New(r.version, services.Extractor, services.Ingestor, r.logger)
			return server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
