package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"ncmplay/internal/config"
	"ncmplay/internal/library"
	"ncmplay/internal/logging"
	"ncmplay/internal/ncm"
	"ncmplay/internal/resolver"
	"ncmplay/internal/tagstore"
)

const (
	componentName  = "pipeline"
	lockFileName   = ".ncmplay.lock"
	defaultWorkers = 2
)

// Resolver fills in missing tags. *resolver.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, q resolver.Query) tagstore.Tags
}

// Result is the outcome for one submitted container.
type Result struct {
	Source    string
	RequestID string
	// Track is set whenever a playable file was produced, including when
	// tag writing failed.
	Track   *library.Track
	Skipped bool
	Err     error
}

// Options configures a Coordinator.
type Options struct {
	OutputDir     string
	Workers       int
	UnknownArtist string
	Resolver      Resolver
	Logger        *slog.Logger
	// Known reports whether an output name already belongs to the library.
	// It is only called from Submit, so it may read owner-held state.
	Known func(name string) bool
	// Progress receives per-file decode progress.
	Progress func(source string, done, total int64)
}

// Coordinator runs conversion units concurrently and reports results over a
// channel. It holds an exclusive lock on the output directory until Close.
type Coordinator struct {
	opts   Options
	logger *slog.Logger
	sem    *semaphore.Weighted
	lock   *flock.Flock

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewFromConfig builds Options from cfg.
func NewFromConfig(cfg *config.Config, res Resolver, logger *slog.Logger) (*Coordinator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	return New(Options{
		OutputDir:     cfg.Paths.OutputDir,
		Workers:       cfg.Pipeline.Workers,
		UnknownArtist: cfg.UnknownArtistLabel(),
		Resolver:      res,
		Logger:        logger,
	})
}

// New creates the output directory, takes its lock and returns a ready
// Coordinator. It fails when another process holds the lock.
func New(opts Options) (*Coordinator, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("output directory is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.UnknownArtist == "" {
		opts.UnknownArtist = config.UnknownArtistForLocale("")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	lockPath := filepath.Join(opts.OutputDir, lockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another ncmplay process is converting into %s", opts.OutputDir)
	}

	return &Coordinator{
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, componentName),
		sem:      semaphore.NewWeighted(int64(opts.Workers)),
		lock:     lock,
		inFlight: make(map[string]struct{}),
	}, nil
}

// Close releases the output directory lock.
func (c *Coordinator) Close() error {
	if c == nil || c.lock == nil {
		return nil
	}
	return c.lock.Unlock()
}

// OutputNames lists the file names a container may decode to.
func OutputNames(source string) []string {
	stem := ncm.OutputStem(source)
	return []string{stem + ".mp3", stem + ".flac"}
}

// Submit schedules every path and returns a channel that yields one Result
// per path and is closed once all of them are done. Paths whose output name
// is already known or in flight are reported as skipped without work.
func (c *Coordinator) Submit(ctx context.Context, paths []string) <-chan Result {
	type job struct {
		source  string
		names   []string
		skipped bool
	}
	jobs := make([]job, 0, len(paths))
	for _, source := range paths {
		names := OutputNames(source)
		if c.duplicate(names) {
			c.logger.Info("skipping duplicate",
				logging.String(logging.FieldEventType, "duplicate_skipped"),
				logging.String("source_file", source),
			)
			jobs = append(jobs, job{source: source, skipped: true})
			continue
		}
		c.markInFlight(names)
		jobs = append(jobs, job{source: source, names: names})
	}

	results := make(chan Result)
	go func() {
		defer close(results)
		var wg sync.WaitGroup
		for _, j := range jobs {
			if j.skipped {
				results <- Result{Source: j.source, Skipped: true}
				continue
			}
			if err := c.sem.Acquire(ctx, 1); err != nil {
				c.clearInFlight(j.names)
				results <- Result{Source: j.source, Err: err}
				continue
			}
			wg.Go(func() {
				defer c.sem.Release(1)
				res := c.process(ctx, j.source)
				c.clearInFlight(j.names)
				results <- res
			})
		}
		wg.Wait()
	}()
	return results
}

func (c *Coordinator) duplicate(names []string) bool {
	for _, name := range names {
		if c.opts.Known != nil && c.opts.Known(name) {
			return true
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for active := range c.inFlight {
		for _, name := range names {
			if strings.Contains(active, name) {
				return true
			}
		}
	}
	return false
}

func (c *Coordinator) markInFlight(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		c.inFlight[name] = struct{}{}
	}
}

func (c *Coordinator) clearInFlight(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		delete(c.inFlight, name)
	}
}
