package mcpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

const defaultTextFilename = "resume.txt"

// Server exposes the extractor to MCP clients over stdio.
type Server struct {
	extractor ports.CandidateExtractor
	ingestor  ports.DirectoryIngestor
	logger    *slog.Logger
	mcp       *server.MCPServer
}

func New(version string, extractor ports.CandidateExtractor, ingestor ports.DirectoryIngestor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		extractor: extractor,
		ingestor:  ingestor,
		logger:    logger,
		mcp:       server.NewMCPServer("resume-extractor", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("extract_candidate",
		mcp.WithDescription("Extract name, contact details, location, qualification, skills and experience from resume text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Plain resume text.")),
		mcp.WithString("filename", mcp.Description("Source filename echoed into the record.")),
	), s.extractCandidate)

	s.mcp.AddTool(mcp.NewTool("parse_directory",
		mcp.WithDescription("Parse every supported resume in a directory and summarize the batch."),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Directory containing resumes.")),
		mcp.WithString("output", mcp.Description("Optional path the export is written to.")),
		mcp.WithString("format", mcp.Description("Export format."), mcp.Enum(domain.FormatXLSX, domain.FormatCSV, domain.FormatJSON)),
		mcp.WithString("fields", mcp.Description("Comma separated export columns.")),
	), s.parseDirectory)

	return s
}

// Serve blocks until ctx is done or stdin is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) extractCandidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := request.GetString("filename", defaultTextFilename)

	record, ok := s.extractor.Normalize(text, filename)
	if !ok {
		return mcp.NewToolResultError("no extractable text"), nil
	}
	return jsonResult(record)
}

type batchSummary struct {
	BatchID   string                   `json:"batch_id"`
	Total     int                      `json:"total"`
	Processed int                      `json:"processed"`
	Failed    int                      `json:"failed"`
	Failures  []domain.DocumentFailure `json:"failures"`
	Stats     domain.ProcessingStats   `json:"stats"`
	Format    string                   `json:"format"`
	Output    string                   `json:"output,omitempty"`
	Records   []domain.CandidateRecord `json:"records"`
}

func (s *Server) parseDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := domain.BatchRequest{
		SourceDir:  dir,
		OutputPath: request.GetString("output", ""),
		Format:     request.GetString("format", ""),
		Fields:     splitFields(request.GetString("fields", "")),
	}

	result, err := s.ingestor.Ingest(ctx, req, nil)
	if err != nil {
		s.logger.Warn("mcp_parse_directory_failed", "directory", dir, "error", err)
		return mcp.NewToolResultErrorFromErr("parse directory failed", err), nil
	}

	report := result.Report
	return jsonResult(batchSummary{
		BatchID:   report.BatchID,
		Total:     report.Total,
		Processed: report.Processed(),
		Failed:    report.Failed(),
		Failures:  report.Failures,
		Stats:     report.Stats,
		Format:    result.Format,
		Output:    req.OutputPath,
		Records:   report.Records,
	})
}

func splitFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(payload)), nil
}
