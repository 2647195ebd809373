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

var routesRunner = runRoutes

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes TEMPLATE...",
		Short: "Convert ASP.NET route templates into API Management operation contracts",
		Example: strings.TrimSpace(`  apimport routes "orders/{id:int}" "files/{*path}"
  apimport routes --method post "orders/{id:guid}/items/{index:int=0?}"`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return newUsageError(fmt.Sprintf("routes: at least one route template is required\n\n%s", cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return routesRunner(cmd.Context(), cfg, args, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().String("method", "GET", "HTTP method of the generated operations")

	return cmd
}

func runRoutes(ctx context.Context, cfg *Config, templates []string, out io.Writer, log *slog.Logger) error {
	_ = ctx

	contracts := make([]arm.OperationContract, 0, len(templates))
	for _, route := range templates {
		oc := arm.NewOperationContract(cfg.Method, "", route)
		log.Debug("route converted",
			"route", route,
			"urlTemplate", oc.Properties.URLTemplate,
			"parameters", len(oc.Properties.TemplateParameters))
		contracts = append(contracts, oc)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contracts); err != nil {
		return fmt.Errorf("encode operations: %w", err)
	}
	return nil
}
