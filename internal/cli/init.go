package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample apimport configuration file",
		Long:  "Scaffold a commented apimport configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", "apimport.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, out io.Writer) error {
	_ = ctx

	target := strings.TrimSpace(cfg.OutputPath)
	if target == "" {
		target = "apimport.yaml"
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := writeFileAtomic(absPath, []byte(content)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# apimport configuration (YAML)
# All fields are optional. Command-line flags override config values.
# The file can also be selected with the APIMPORT_CONFIG environment variable.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.json

# Run full OpenAPI validation after loading.
# validate: false

# Follow file $refs while validating a document fetched over http(s).
# allowFileRefs: false

# (rewrite) backend URL the document should declare.
# backend: https://orders.internal.contoso.com/api

# (rewrite) gateway base path and host for the rewritten document.
# basePath: /orders
# proxyHost: contoso.azure-api.net

# (rewrite) output file (stdout when omitted).
# out: ./openapi.rewritten.json

# (payload) API URL suffix, display name, backend service URL, YAML submission.
# apiPath: orders
# displayName: Orders API
# serviceUrl: https://orders.internal.contoso.com/api
# yaml: false

# (inspect) operation filters (comma-separated or list).
# includeTags: [public]
# excludeTags: [internal]
# methods: [get, post]
# paths: ["^/orders"]

# (routes) HTTP method of generated operations.
# method: GET

# Enable verbose logging.
# verbose: false
`
