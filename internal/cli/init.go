package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2hooks/internal/sink"
)

const defaultConfigName = "swagger2hooks.yaml"

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
		Short: "Scaffold a sample swagger2hooks configuration file",
		Long:  "Scaffold a commented swagger2hooks configuration file that documents available options.",
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
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force, Verbose: verbose})
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")
	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	fs := &sink.FilesystemSink{Root: filepath.Dir(absPath), Mode: 0o644, Overwrite: cfg.Force}
	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := fs.WriteFile(ctx, filepath.Base(absPath), []byte(content)); err != nil {
		if errors.Is(err, sink.ErrExists) {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2hooks configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path to the Swagger/OpenAPI document (JSON, or YAML by .yaml/.yml extension).
# input: ./openapi.json

# Output directory. Defaults to src/api.
# out: ./src/api

# Write each tag into its own folder. With folderStructure: distributed every
# tag gets four files: service, presentation, domains/I<Tag>Service and
# domains/models/<Tag>.
# createFolders: false
# folderStructure: distributed

# Only generate these tags (comma-separated or list).
# includeTags: [Widgets]

# Skip these tags (comma-separated or list).
# excludeTags: [internal]

# Endpoint key strategy: collapse (every {param} is _ID) or numbered (_ID, _ID2).
# endpointKeys: collapse

# Tags generated in parallel. 0 or 1 runs sequentially.
# concurrency: 0

# Modules imported by the generated code.
# httpClientImport: "@/lib/httpClient"
# requestHelperImport: "@/lib/handleRequest"
# queryImport: "@tanstack/react-query"

# Preview planned outputs without writing files.
# dryRun: false

# Write into a non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`
