package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var rewriteRunner = runRewrite

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Point a document at a new backend and/or gateway base path",
		Long: "Rewrite the backend (host/basePath or servers) and the gateway base path of an OpenAPI/Swagger " +
			"document and write the resulting JSON document.",
		Example: strings.TrimSpace(`  apimport rewrite --input swagger.json --backend https://api.internal/v2 --out swagger.rewritten.json
  apimport rewrite --input openapi.yaml --proxy-host contoso.azure-api.net --base-path /orders`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.requireInput("rewrite"); err != nil {
				return err
			}
			if cfg.Backend == "" && cfg.BasePath == "" && cfg.ProxyHost == "" {
				return newUsageError("rewrite: nothing to do (set --backend, --base-path or --proxy-host)")
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return rewriteRunner(cmd.Context(), cfg, cmd.OutOrStdout(), log)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("backend", "", "Backend URL the document should declare")
	flags.String("base-path", "", "Base path to expose the API under")
	flags.String("proxy-host", "", "Gateway host (or full URL) placed in 3.x server URLs")
	flags.String("out", "", "Write the document here instead of stdout")
	flags.Bool("validate", false, "Run full OpenAPI validation before rewriting")
	flags.Bool("allow-file-refs", false, "Follow file $refs during validation of remote documents")

	return cmd
}

func runRewrite(ctx context.Context, cfg *Config, out io.Writer, log *slog.Logger) error {
	desc, err := loadDocument(ctx, cfg, log)
	if err != nil {
		return err
	}

	if cfg.Backend != "" {
		if err := desc.UpdateBackend(cfg.Backend); err != nil {
			return specUsageError(err)
		}
		log.Debug("backend updated", "backend", cfg.Backend, "host", desc.Host, "basePath", desc.BasePath)
	}

	if cfg.BasePath != "" || cfg.ProxyHost != "" {
		basePath := cfg.BasePath
		if basePath == "" {
			// Only the host moves; keep the current path.
			basePath = desc.BasePath
		}
		proxyHost := cfg.ProxyHost
		if proxyHost == "" && !desc.IsV2() {
			// Keep the current host when only the path moves.
			proxyHost = desc.Host
			log.Warn("no --proxy-host given, keeping document host", "host", proxyHost)
		}
		if cfg.ProxyHost != "" && desc.IsV2() {
			log.Warn("--proxy-host does not apply to Swagger 2.0 documents, host left unchanged", "host", desc.Host)
		}
		desc.UpdateBasePath(basePath, proxyHost)
		log.Debug("base path updated", "basePath", basePath, "proxyHost", proxyHost)
	}

	b, err := json.MarshalIndent(desc.Source, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	b = append(b, '\n')

	if cfg.Out == "" {
		_, err = out.Write(b)
		return err
	}
	if err := writeFileAtomic(cfg.Out, b); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	fmt.Fprintf(out, "Wrote rewritten document to %s\n", cfg.Out)
	return nil
}
