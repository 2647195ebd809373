package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/apimport/internal/arm"
	"github.com/spf13/cobra"
)

var payloadRunner = runPayload

func newPayloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Render the ARM request body that imports a document as an API",
		Example: strings.TrimSpace(`  apimport payload --input openapi.json --api-path orders
  apimport payload --input openapi.yaml --api-path orders --yaml --display-name "Orders API"`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.requireInput("payload"); err != nil {
				return err
			}
			if cfg.APIPath == "" {
				return newUsageError("payload: --api-path is required (set via flag or config file)")
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return payloadRunner(cmd.Context(), cfg, cmd.OutOrStdout(), log)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("api-path", "", "API URL suffix inside the API Management service")
	flags.String("display-name", "", "API display name (defaults to info.title)")
	flags.String("service-url", "", "Backend service URL recorded on the API")
	flags.Bool("yaml", false, "Submit 3.x documents as YAML")
	flags.Bool("validate", false, "Run full OpenAPI validation before rendering")
	flags.Bool("allow-file-refs", false, "Follow file $refs during validation of remote documents")

	return cmd
}

func runPayload(ctx context.Context, cfg *Config, out io.Writer, log *slog.Logger) error {
	desc, err := loadDocument(ctx, cfg, log)
	if err != nil {
		return err
	}

	body, err := arm.NewAPIImport(desc, arm.ImportOptions{
		Path:        cfg.APIPath,
		DisplayName: cfg.DisplayName,
		ServiceURL:  cfg.ServiceURL,
		AsYAML:      cfg.YAML,
	})
	if err != nil {
		return newUsageError(err.Error())
	}
	log.Debug("import payload built", "format", body.Properties.Format, "path", body.Properties.Path)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}
