// Package pipeline runs the generator and derives the endpoint, format and
// packet files from its output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/limbus/typegen/cmd/typegen/internal/config"
	"github.com/limbus/typegen/cmd/typegen/internal/generator"
	"github.com/limbus/typegen/cmd/typegen/internal/schema"
	"github.com/limbus/typegen/cmd/typegen/internal/transform"
	"github.com/limbus/typegen/cmd/typegen/internal/ui"
)

// ErrStale is returned by Check when a generated file on disk differs from
// a fresh run.
var ErrStale = errors.New("generated files are out of date")

// Generator produces the raw type definitions.
type Generator interface {
	CheckAvailable() error
	Generate(ctx context.Context) error
}

// Artifact is one file written by a run.
type Artifact struct {
	Name    string // file name inside the output directory
	Path    string
	Content string
}

// Result describes a completed run.
type Result struct {
	Artifacts  []Artifact
	Aliases    int
	Skipped    []string
	Collisions map[string][]string
}

// Paths returns the path of every artifact, in write order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		paths[i] = a.Path
	}
	return paths
}

// Pipeline holds everything needed to regenerate the type files.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	out        io.Writer
	normalizer *transform.Normalizer

	newGenerator func(generator.Config, *slog.Logger) Generator
}

// New creates a pipeline. Progress lines go to out.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		out:        out,
		normalizer: transform.NewNormalizer(cfg.Rules),
		newGenerator: func(c generator.Config, l *slog.Logger) Generator {
			return generator.NewRunner(c, l)
		},
	}
}

// Run regenerates every artifact in the configured output directory.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	return p.run(ctx, p.cfg.OutDir)
}

// Check regenerates into a temporary directory and compares the result
// with the files in the output directory, printing a unified diff for
// each difference. It never modifies the output directory.
func (p *Pipeline) Check(ctx context.Context) (*Result, error) {
	tmp, err := os.MkdirTemp("", "typegen-check-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	res, err := p.run(ctx, tmp)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]string, len(res.Artifacts))
	for _, a := range res.Artifacts {
		fresh[a.Name] = a.Content
	}

	// Every configured file is compared so that a leftover from an earlier
	// run whose section has since disappeared is reported too.
	names := p.fileNames()
	stale := 0
	for _, name := range names {
		current := p.cfg.Path(name)
		existing, err := os.ReadFile(current)
		exists := err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", current, err)
		}

		want, produced := fresh[name]
		switch {
		case !produced && !exists:
			continue
		case !produced:
			stale++
			ui.Warn(p.out, "%s is no longer generated", current)
			fmt.Fprint(p.out, udiff.Unified(current, current+" (removed)", string(existing), ""))
		case !exists || string(existing) != want:
			stale++
			fmt.Fprint(p.out, udiff.Unified(current, current+" (regenerated)", string(existing), want))
		}
	}

	if stale > 0 {
		return res, fmt.Errorf("%w: %d of %d files differ, run `typegen gen`", ErrStale, stale, len(names))
	}
	ui.Success(p.out, "All %d generated files are up to date", len(res.Artifacts))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, outDir string) (*Result, error) {
	generated := filepath.Join(outDir, p.cfg.Files.Generated)
	gen := p.newGenerator(generator.Config{
		Runner:    p.cfg.Runner,
		Generator: p.cfg.Generator,
		Schema:    p.cfg.Schema,
		Output:    generated,
		Flags:     p.cfg.Flags,
		Timeout:   p.cfg.Timeout,
	}, p.logger)

	ui.Step(p.out, "Checking for %s", p.cfg.Runner)
	if err := gen.CheckAvailable(); err != nil {
		return nil, err
	}

	ui.Step(p.out, "Generating %s from %s", p.cfg.Files.Generated, p.cfg.Schema)
	if err := gen.Generate(ctx); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(generated)
	if err != nil {
		return nil, fmt.Errorf("failed to read generator output: %w", err)
	}

	ui.Step(p.out, "Deriving endpoint, format and packet types")
	res := p.Process(string(raw), outDir)

	for _, a := range res.Artifacts {
		if err := os.WriteFile(a.Path, []byte(a.Content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", a.Path, err)
		}
		p.logger.Debug("Wrote artifact", "path", a.Path, "bytes", len(a.Content))
	}

	p.report(res)
	p.lintSchema()
	return res, nil
}

// Process applies the normalizer, extractors and packet deriver to the
// generator output. It touches no files; artifact paths are rooted at
// outDir.
func (p *Pipeline) Process(raw, outDir string) *Result {
	importFrom := "./" + p.cfg.Files.Generated

	text := p.normalizer.Normalize(raw)

	var extracted []Artifact
	formats := transform.ExtractFormats(text, importFrom)
	if formats.Found {
		text = formats.Rest
		extracted = append(extracted, p.artifact(outDir, p.cfg.Files.Formats, formats.Content))
	} else {
		p.logger.Debug("Format block not found, skipping", "file", p.cfg.Files.Formats)
	}

	endpoints := transform.ExtractEndpoints(text)
	if endpoints.Found {
		text = endpoints.Rest
		extracted = append(extracted, p.artifact(outDir, p.cfg.Files.Endpoints, endpoints.Content))
	} else {
		p.logger.Debug("Endpoint enum not found, skipping", "file", p.cfg.Files.Endpoints)
	}

	packets := transform.DerivePackets(text)

	res := &Result{
		Aliases:    packets.Len(),
		Skipped:    packets.Skipped(),
		Collisions: packets.Collisions(),
	}
	res.Artifacts = append(res.Artifacts, p.artifact(outDir, p.cfg.Files.Generated, text))
	res.Artifacts = append(res.Artifacts, extracted...)
	res.Artifacts = append(res.Artifacts, p.artifact(outDir, p.cfg.Files.Packets, packets.Render(importFrom)))
	return res
}

// fileNames lists every artifact name in write order.
func (p *Pipeline) fileNames() []string {
	f := p.cfg.Files
	return []string{f.Generated, f.Formats, f.Endpoints, f.Packets}
}

func (p *Pipeline) artifact(outDir, name, content string) Artifact {
	return Artifact{Name: name, Path: filepath.Join(outDir, name), Content: content}
}

func (p *Pipeline) report(res *Result) {
	bases := make([]string, 0, len(res.Collisions))
	for base := range res.Collisions {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		p.logger.Warn("Alias collision, later routes dropped", "alias", base, "dropped", strings.Join(res.Collisions[base], ", "))
	}
	ui.Warn(p.out, "Skipped: %v", res.Skipped)
	ui.Success(p.out, "Generated %d packet alias pairs", res.Aliases)
}

// lintSchema cross-checks derived aliases against the input document. The
// generator accepts documents kin-openapi cannot load, so load failures are
// only logged.
func (p *Pipeline) lintSchema() {
	routes, err := schema.Load(p.cfg.Schema)
	if err != nil {
		p.logger.Debug("Schema cross-check skipped", "error", err)
		return
	}
	for _, issue := range schema.Check(routes) {
		if issue.Kind == schema.IssueNoPost {
			p.logger.Warn("Packet alias has no post operation", "route", issue.Path, "detail", issue.Detail)
		}
	}
}
