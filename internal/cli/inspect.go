package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/apimport/internal/spec"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inspectRunner = runInspect

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the import descriptor and operations of an OpenAPI/Swagger document",
		Example: strings.TrimSpace(`  apimport inspect --input openapi.json
  apimport inspect --input https://example.com/swagger.json --include-tags pets --methods get`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.requireInput("inspect"); err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return inspectRunner(cmd.Context(), cfg, cmd.OutOrStdout(), log)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.Bool("validate", false, "Run full OpenAPI validation before reporting")
	flags.Bool("allow-file-refs", false, "Follow file $refs during validation of remote documents")
	flags.StringSlice("include-tags", nil, "Only list operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Hide operations with these tags")
	flags.StringSlice("methods", nil, "Only list operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only list operations whose path matches these regular expressions")

	return cmd
}

type inspectReport struct {
	Descriptor *spec.ImportDescriptor `yaml:"descriptor"`
	Operations []spec.Operation       `yaml:"operations"`
}

func runInspect(ctx context.Context, cfg *Config, out io.Writer, log *slog.Logger) error {
	desc, err := loadDocument(ctx, cfg, log)
	if err != nil {
		return err
	}

	ops := spec.Operations(desc.Source,
		spec.WithIncludeTags(cfg.IncludeTags),
		spec.WithExcludeTags(cfg.ExcludeTags),
		spec.WithMethods(cfg.Methods),
		spec.WithPathPatterns(cfg.Paths),
	)
	log.Debug("operations listed", "count", len(ops))

	b, err := yaml.Marshal(inspectReport{Descriptor: desc, Operations: ops})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = out.Write(b)
	return err
}
