// Package pipeline runs a whole generation: load the document, select tags,
// then plan, generate, compose and write each tag on its own. A failing tag
// is recorded and never stops the others.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/swagger2hooks/internal/compose"
	"github.com/mark3labs/swagger2hooks/internal/emitter"
	"github.com/mark3labs/swagger2hooks/internal/plan"
	"github.com/mark3labs/swagger2hooks/internal/schema"
	"github.com/mark3labs/swagger2hooks/internal/sink"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// ErrOutputNotEmpty is returned when the output directory already holds
// files and Force is not set.
var ErrOutputNotEmpty = errors.New("output directory is not empty")

// Options controls a run.
type Options struct {
	Input  string // path of the OpenAPI/Swagger document
	OutDir string // required unless Sink is set
	Layout compose.Layout

	IncludeTags []string
	ExcludeTags []string

	Keys       plan.EndpointKeyer         // defaults to collapsed _ID keys
	Pagination plan.PaginationClassifier // defaults to schema.IsPaginated
	Imports    compose.Imports

	// Concurrency bounds how many tags are generated at once. Zero or one
	// runs the tags sequentially.
	Concurrency int

	DryRun bool // compose files but do not write them
	Force  bool // allow writing into a non-empty OutDir

	Logger *slog.Logger
	// Sink receives the files. Defaults to a filesystem sink at OutDir.
	Sink sink.OutputSink
}

// PlannedFile is one composed file.
type PlannedFile struct {
	Tag     string
	Path    string
	Size    int
	Written bool
}

// TagError records a tag whose sections could not be generated.
type TagError struct {
	Tag     string
	Message string
}

func (e TagError) Error() string { return fmt.Sprintf("tag %s: %s", e.Tag, e.Message) }

// WriteError records a file the sink failed to write.
type WriteError struct {
	Tag   string
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s (tag %s): %v", e.Path, e.Tag, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// Result summarizes a run. A run with failed tags still succeeds as long as
// the document loaded.
type Result struct {
	Title string
	// Tags are the tags selected for generation, sorted.
	Tags []string
	// TagsProcessed counts the tags whose sections were generated.
	TagsProcessed  int
	FilesGenerated int
	Files          []PlannedFile
	Errors         []TagError
	WriteErrors    []*WriteError
}

// Failed reports whether any tag or file failed.
func (r *Result) Failed() bool { return len(r.Errors) > 0 || len(r.WriteErrors) > 0 }

// Run generates every selected tag of the document at opts.Input. Only a
// document that cannot be read or decoded, an invalid output target or a
// cancelled context is returned as an error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	doc, err := spec.Load(ctx, opts.Input, spec.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	out := opts.Sink
	if out == nil {
		if strings.TrimSpace(opts.OutDir) == "" {
			return nil, errors.New("pipeline: OutDir is required")
		}
		if !opts.DryRun {
			if err := checkOutDir(opts.OutDir, opts.Force); err != nil {
				return nil, err
			}
		}
		out = sink.NewFilesystemSink(opts.OutDir)
	}
	return generate(ctx, doc, out, opts, logger)
}

// checkOutDir refuses a non-empty existing directory unless force is set.
func checkOutDir(dir string, force bool) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	st, err := os.Stat(abs)
	if err != nil || !st.IsDir() || force {
		return nil
	}
	if entries, rerr := os.ReadDir(abs); rerr == nil && len(entries) > 0 {
		return fmt.Errorf("%w: %q (use --force to overwrite)", ErrOutputNotEmpty, abs)
	}
	return nil
}

// tagOutcome is the result of one tag, stored by tag index so that the
// aggregate is independent of scheduling.
type tagOutcome struct {
	files     []PlannedFile
	err       *TagError
	writeErrs []*WriteError
}

func generate(ctx context.Context, doc *spec.Document, out sink.OutputSink, opts Options, logger *slog.Logger) (*Result, error) {
	reg := schema.BuildRegistry(doc)
	tags := spec.FilterTags(doc.ExtractTags(), opts.IncludeTags, opts.ExcludeTags)
	res := &Result{Title: doc.Title, Tags: tags}
	if len(tags) == 0 {
		logger.Warn("no tags selected", "location", doc.Location)
		return res, nil
	}

	st := plan.Strategies{Keys: opts.Keys, Pagination: opts.Pagination, Logger: logger}
	outcomes := make([]tagOutcome, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	owners := make(map[string]string, len(tags))
	for i, tag := range tags {
		// Tags that sanitize to one file name would overwrite each other.
		file := strings.ToLower(plan.FileName(tag))
		if first, dup := owners[file]; dup {
			logger.Warn("tag output name collides, skipping", "tag", tag, "file", plan.FileName(tag), "owner", first)
			outcomes[i] = tagOutcome{err: &TagError{Tag: tag, Message: fmt.Sprintf("output name %q is already produced by tag %q", plan.FileName(tag), first)}}
			continue
		}
		owners[file] = tag
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = runTag(gctx, doc, reg, tag, out, st, opts, logger.With("tag", tag))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.err != nil {
			res.Errors = append(res.Errors, *o.err)
			continue
		}
		res.TagsProcessed++
		res.Files = append(res.Files, o.files...)
		res.WriteErrors = append(res.WriteErrors, o.writeErrs...)
		for _, f := range o.files {
			if f.Written {
				res.FilesGenerated++
			}
		}
	}
	return res, nil
}

// runTag generates and writes one tag. Panics are recovered into a TagError.
func runTag(ctx context.Context, doc *spec.Document, reg *schema.Registry, tag string, out sink.OutputSink, st plan.Strategies, opts Options, logger *slog.Logger) (o tagOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tag generation panicked", "panic", r)
			o = tagOutcome{err: &TagError{Tag: tag, Message: fmt.Sprint(r)}}
		}
	}()

	files, err := composeTag(doc, reg, tag, st, opts, logger)
	if err != nil {
		logger.Warn("tag generation failed", "error", err)
		return tagOutcome{err: &TagError{Tag: tag, Message: err.Error()}}
	}

	for _, f := range files {
		pf := PlannedFile{Tag: tag, Path: f.Path, Size: len(f.Content)}
		if !opts.DryRun {
			if werr := out.WriteFile(ctx, f.Path, f.Content); werr != nil {
				logger.Warn("write failed", "path", f.Path, "error", werr)
				o.writeErrs = append(o.writeErrs, &WriteError{Tag: tag, Path: f.Path, Cause: werr})
			} else {
				pf.Written = true
			}
		}
		o.files = append(o.files, pf)
	}
	logger.Info("tag generated", "files", len(files), "dry_run", opts.DryRun)
	return o
}

func composeTag(doc *spec.Document, reg *schema.Registry, tag string, st plan.Strategies, opts Options, logger *slog.Logger) ([]compose.File, error) {
	ops := doc.CollectOperations(tag)
	plans, err := plan.Build(tag, ops, reg, st)
	if err != nil {
		return nil, err
	}
	needed := plan.NeededSchemas(plans, reg, logger)
	names := plan.NamesFor(tag)
	sections, err := emitter.Generate(names, plans, reg, needed, logger)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return compose.Compose(opts.Layout, names, sections, opts.Imports), nil
}

// TagSummary is one tag of a document with its operation count.
type TagSummary struct {
	Tag        string
	Operations int
}

// ListTags loads the document at input and returns its tags, sorted.
func ListTags(ctx context.Context, input string, logger *slog.Logger) ([]TagSummary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	doc, err := spec.Load(ctx, input, spec.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tags := doc.ExtractTags()
	out := make([]TagSummary, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagSummary{Tag: t, Operations: len(doc.CollectOperations(t))})
	}
	return out, nil
}
