package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-extractor/internal/config"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
	"github.com/kirillkom/resume-extractor/internal/observability/logging"
)

const serviceName = "resumectl"

// Services is what the commands need from the wired application.
type Services struct {
	Extractor ports.CandidateExtractor
	Ingestor  ports.DirectoryIngestor
	Supported func(filename string) bool
}

// Builder wires Services for a loaded configuration. The returned func
// releases them.
type Builder func(cfg config.Config, logger *slog.Logger) (Services, func(), error)

type root struct {
	version string
	build   Builder

	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand builds resumectl with its batch, watch, mcp and version subcommands.
func NewRootCommand(version string, build Builder) *cobra.Command {
	r := &root{version: version, build: build}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Extract candidate fields from resumes",
		Long: `resumectl parses directories of resumes (PDF, HTML, plain text) into a
spreadsheet with one row per candidate: name, phone, email, location,
qualification, skills and years of experience.`,
		SilenceUsage:      true,
		PersistentPreRunE: r.loadConfig,
	}
	cmd.PersistentFlags().StringVar(&r.configPath, "config", "", "config file (YAML or TOML); defaults to $CONFIG_FILE")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&r.logFormat, "log-format", logging.FormatText, "log format on stderr (text, json)")

	cmd.AddCommand(
		r.newBatchCommand(),
		r.newWatchCommand(),
		r.newMCPCommand(),
		r.newVersionCommand(),
	)
	return cmd
}

func (r *root) loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if r.configPath != "" {
		r.cfg, err = config.LoadFile(r.configPath)
	} else {
		r.cfg, err = config.FromEnvOrFile()
	}
	if err != nil {
		return err
	}
	if r.logLevel != "" {
		r.cfg.LogLevel = r.logLevel
	}
	r.logger = logging.New(cmd.ErrOrStderr(), serviceName, r.cfg.LogLevel, r.logFormat)
	return nil
}

func (r *root) services() (Services, func(), error) {
	if r.build == nil {
		return Services{}, nil, fmt.Errorf("resumectl: no service builder configured")
	}
	services, closeFn, err := r.build(r.cfg, r.logger)
	if err != nil {
		return Services{}, nil, fmt.Errorf("init services: %w", err)
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return services, closeFn, nil
}

func (r *root) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version %s\n", serviceName, r.version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
