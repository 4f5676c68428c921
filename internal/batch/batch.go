// Package batch renders every PlantUML source under a directory tree,
// including diagrams embedded in Markdown documents, to image files.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/corbenferris/figjam-plantuml/internal/markdown"
	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/progress"
	"github.com/corbenferris/figjam-plantuml/internal/walker"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Renderer fetches a rendered diagram. *render.Client implements it.
type Renderer interface {
	Render(ctx context.Context, text string, format plantuml.Format) (url, body string, err error)
}

// Options controls a batch run.
type Options struct {
	Root        string
	Patterns    []string // include globs relative to Root; empty includes everything
	Exclude     []string
	OutDir      string // empty writes each image next to its source
	Format      plantuml.Format
	Concurrency int
	Client      Renderer
	Reporter    progress.Reporter
	Logger      *slog.Logger
}

// Output is one rendered image.
type Output struct {
	Source string // relative source path, with #N for the Nth diagram of a document
	Path   string // written file
	URL    string
}

// Failure is a diagram that could not be rendered or written.
type Failure struct {
	Source string
	Err    error
}

func (f Failure) Error() string { return f.Source + ": " + f.Err.Error() }

// Result summarises a batch run. Failures do not stop the run.
type Result struct {
	Outputs  []Output
	Failures []Failure
}

type job struct {
	source string
	text   string
	out    string
}

// Run renders every matching diagram under opts.Root. The returned error
// covers only traversal problems and cancellation; per-diagram problems are
// collected in Result.Failures.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("batch: no renderer configured")
	}
	if opts.Format == "" {
		opts.Format = plantuml.FormatSVG
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	files, err := walker.Walk(walker.Options{
		Root:    opts.Root,
		Include: opts.Patterns,
		Exclude: opts.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	result := &Result{}
	jobs := planJobs(files, opts, result)
	opts.Logger.Debug("batch planned", "files", len(files), "diagrams", len(jobs))

	var (
		mu   sync.Mutex
		done int
	)
	opts.Reporter.Start(len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Concurrency, max(len(jobs), 1)))

	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := renderJob(gctx, opts, j)

			mu.Lock()
			defer mu.Unlock()
			done++
			opts.Reporter.Update(done, j.source)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				opts.Logger.Warn("diagram failed", "source", j.source, "error", err)
				result.Failures = append(result.Failures, Failure{Source: j.source, Err: err})
				return nil
			}
			result.Outputs = append(result.Outputs, out)
			return nil
		})
	}

	err = g.Wait()
	opts.Reporter.Finish()
	if err != nil {
		return result, fmt.Errorf("batch: %w", err)
	}

	sort.Slice(result.Outputs, func(i, k int) bool { return result.Outputs[i].Source < result.Outputs[k].Source })
	sort.Slice(result.Failures, func(i, k int) bool { return result.Failures[i].Source < result.Failures[k].Source })
	return result, nil
}

// planJobs turns walked files into render jobs. Unreadable files become
// failures straight away.
func planJobs(files []walker.File, opts Options, result *Result) []job {
	var jobs []job
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Source: f.RelPath, Err: err})
			continue
		}

		base := strings.TrimSuffix(f.RelPath, path.Ext(f.RelPath))
		switch f.Kind {
		case walker.KindDiagram:
			jobs = append(jobs, job{
				source: f.RelPath,
				text:   string(data),
				out:    outputPath(opts, f.Path, base+"."+string(opts.Format)),
			})
		case walker.KindMarkdown:
			for i, text := range markdown.Extract(data) {
				n := i + 1
				jobs = append(jobs, job{
					source: fmt.Sprintf("%s#%d", f.RelPath, n),
					text:   text,
					out:    outputPath(opts, f.Path, fmt.Sprintf("%s.%d.%s", base, n, opts.Format)),
				})
			}
		}
	}
	return jobs
}

// outputPath places rel under OutDir, or beside the source file when no
// OutDir is set.
func outputPath(opts Options, sourcePath, rel string) string {
	if opts.OutDir == "" {
		return filepath.Join(filepath.Dir(sourcePath), path.Base(rel))
	}
	return filepath.Join(opts.OutDir, filepath.FromSlash(rel))
}

func renderJob(ctx context.Context, opts Options, j job) (Output, error) {
	url, body, err := opts.Client.Render(ctx, j.text, opts.Format)
	if err != nil {
		return Output{}, err
	}
	if err := os.MkdirAll(filepath.Dir(j.out), 0o755); err != nil {
		return Output{}, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(j.out, []byte(body), 0o644); err != nil {
		return Output{}, fmt.Errorf("writing %s: %w", j.out, err)
	}
	return Output{Source: j.source, Path: j.out, URL: url}, nil
}
