package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2hooks/internal/compose"
	"github.com/mark3labs/swagger2hooks/internal/pipeline"
	"github.com/mark3labs/swagger2hooks/internal/plan"
	genspec "github.com/mark3labs/swagger2hooks/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input string `flag:"input" validate:"required"`
	Out   string `flag:"out" validate:"required"`

	// CreateFolders and FolderStructure select the layout: only
	// "distributed" with CreateFolders writes four files per tag.
	CreateFolders   bool   `flag:"create-folders"`
	FolderStructure string `flag:"folder-structure"`

	IncludeTags  []string `flag:"include-tags"`
	ExcludeTags  []string `flag:"exclude-tags"`
	EndpointKeys string   `flag:"endpoint-keys" validate:"oneof=collapse numbered"`
	Concurrency  int      `flag:"concurrency" validate:"gte=0,lte=64"`

	HTTPClientImport    string `flag:"http-client-import"`
	RequestHelperImport string `flag:"request-helper-import"`
	QueryImport         string `flag:"query-import"`

	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

// Layout is the output layout the config selects.
func (c *GenerateConfig) Layout() compose.Layout {
	return compose.LayoutFor(c.CreateFolders, c.FolderStructure)
}

func defaultGenerateConfig() GenerateConfig {
	im := compose.DefaultImports()
	return GenerateConfig{
		Out:                 "src/api",
		EndpointKeys:        "collapse",
		HTTPClientImport:    im.HTTPClient,
		RequestHelperImport: im.RequestHelper,
		QueryImport:         im.Query,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript services and hooks from an OpenAPI/Swagger document",
		Long: "Generate, per tag, an endpoint map, interfaces, a service class and query/mutation hooks. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2hooks generate --input openapi.json --out ./src/api
  swagger2hooks generate --input openapi.yaml --create-folders --folder-structure distributed
  swagger2hooks --config swagger2hooks.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the Swagger/OpenAPI document (JSON or YAML)")
	flags.String("out", "", "Output directory; defaults to src/api")
	flags.Bool("create-folders", false, "Write each tag into its own folder")
	flags.String("folder-structure", "", "Folder layout when --create-folders is set (distributed)")
	flags.StringSlice("include-tags", nil, "Only generate these tags")
	flags.StringSlice("exclude-tags", nil, "Skip these tags")
	flags.String("endpoint-keys", "", "Endpoint key strategy (collapse|numbered); defaults to collapse")
	flags.Int("concurrency", 0, "Tags generated in parallel; 0 or 1 is sequential")
	flags.String("http-client-import", "", "Module the generated services import httpClient from")
	flags.String("request-helper-import", "", "Module the generated services import handleRequest from")
	flags.String("query-import", "", "Module the generated hooks import useQuery/useMutation from")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Write into a non-empty output directory")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":                 &cfg.Input,
		"out":                   &cfg.Out,
		"folder-structure":      &cfg.FolderStructure,
		"endpoint-keys":         &cfg.EndpointKeys,
		"http-client-import":    &cfg.HTTPClientImport,
		"request-helper-import": &cfg.RequestHelperImport,
		"query-import":          &cfg.QueryImport,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"create-folders": &cfg.CreateFolders,
		"dry-run":        &cfg.DryRun,
		"force":          &cfg.Force,
		"verbose":        &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("concurrency") {
		value, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.FolderStructure = strings.ToLower(strings.TrimSpace(c.FolderStructure))
	c.EndpointKeys = strings.ToLower(strings.TrimSpace(c.EndpointKeys))
	if c.EndpointKeys == "" {
		c.EndpointKeys = "collapse"
	}
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if err := validateStruct("generate", c); err != nil {
		return err
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(os.Stderr, cfg.Verbose)

	keys, err := plan.KeyerByName(cfg.EndpointKeys)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	res, err := pipeline.Run(ctx, pipeline.Options{
		Input:       cfg.Input,
		OutDir:      cfg.Out,
		Layout:      cfg.Layout(),
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		Keys:        keys,
		Concurrency: cfg.Concurrency,
		Imports: compose.Imports{
			HTTPClient:    cfg.HTTPClientImport,
			RequestHelper: cfg.RequestHelperImport,
			Query:         cfg.QueryImport,
		},
		DryRun: cfg.DryRun,
		Force:  cfg.Force,
		Logger: logger,
	})
	if err != nil {
		return mapRunError(err, absOut)
	}

	if cfg.DryRun {
		printPlan(absOut, res.Files)
	} else {
		fmt.Fprintf(os.Stdout, "Generated %d files for %d of %d tags in %s\n", res.FilesGenerated, res.TagsProcessed, len(res.Tags), absOut)
	}
	for _, te := range res.Errors {
		fmt.Fprintf(os.Stderr, "tag %s failed: %s\n", te.Tag, te.Message)
	}
	for _, we := range res.WriteErrors {
		fmt.Fprintf(os.Stderr, "%v\n", we)
	}

	// Partial output is a success; nothing at all is not.
	if !cfg.DryRun && res.Failed() && res.FilesGenerated == 0 {
		return fmt.Errorf("generate: no files were written (%d tag errors, %d write errors)", len(res.Errors), len(res.WriteErrors))
	}
	return nil
}

// mapRunError turns structured pipeline errors into friendly messages.
func mapRunError(err error, outDir string) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		return wrapUsageError(msg, err)
	}
	if errors.Is(err, pipeline.ErrOutputNotEmpty) {
		return wrapUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or use --force when appropriate.", outDir, err), err)
	}
	return err
}

func printPlan(outDir string, files []pipeline.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(files))
	for _, f := range files {
		fmt.Fprintf(os.Stdout, "- %s\n", f.Path)
	}
}
