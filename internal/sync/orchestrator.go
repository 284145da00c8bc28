package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/quantmind-br/docsync-go/internal/manifest"
	"github.com/quantmind-br/docsync-go/internal/snapshot"
	"github.com/quantmind-br/docsync-go/internal/utils"
)

// EntryResolver resolves a sitemap into page entries.
type EntryResolver interface {
	Resolve(ctx context.Context, sitemapURL string) ([]domain.SitemapEntry, error)
}

// DocumentFetcher fetches one text document.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (string, error)
}

// Options controls a sync run.
type Options struct {
	// Force refetches every entry regardless of manifest state.
	Force bool

	// RequestDelay is the courtesy delay between downloads. Reused
	// entries are not delayed.
	RequestDelay time.Duration

	// SanityDropRatio aborts the run when the resolved entry count falls
	// more than this fraction below the previous run's count.
	SanityDropRatio float64

	// MaxFailRatio aborts the run when more than this fraction of
	// entries fail to fetch.
	MaxFailRatio float64
}

// DefaultOptions returns the default sync options.
func DefaultOptions() Options {
	return Options{
		RequestDelay:    100 * time.Millisecond,
		SanityDropRatio: 0.20,
		MaxFailRatio:    0.15,
	}
}

// Result summarizes a completed sync run.
type Result struct {
	Entries    int
	Success    int
	Failed     int
	Downloaded int
	Reused     int
}

// Orchestrator drives one site sync from sitemap to committed snapshot.
type Orchestrator struct {
	resolver EntryResolver
	fetcher  DocumentFetcher
	logger   *utils.Logger
	opts     Options
}

// NewOrchestrator creates a sync orchestrator.
func NewOrchestrator(resolver EntryResolver, fetcher DocumentFetcher, logger *utils.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	if opts.SanityDropRatio <= 0 {
		opts.SanityDropRatio = 0.20
	}
	if opts.MaxFailRatio <= 0 {
		opts.MaxFailRatio = 0.15
	}
	return &Orchestrator{
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger.WithComponent("sync"),
		opts:     opts,
	}
}

// Run syncs one site. The live mirror is replaced atomically on success
// and left untouched on any failure.
func (o *Orchestrator) Run(ctx context.Context, policy domain.Policy) (*Result, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	indexFile := policy.IndexFile
	if indexFile == "" {
		indexFile = "index.md"
	}
	manifestFile := policy.ManifestFile
	if manifestFile == "" {
		manifestFile = ".manifest.json"
	}

	logger := o.logger.WithSite(policy.Name)

	oldMan, err := manifest.Load(filepath.Join(policy.OutputDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("load previous manifest: %w", err)
	}

	entries, err := o.resolver.Resolve(ctx, policy.SitemapURL)
	if err != nil {
		return nil, fmt.Errorf("resolve sitemap: %w", err)
	}
	if policy.FilterEntries != nil {
		entries = policy.FilterEntries(entries)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: site %s", ErrNoEntries, policy.Name)
	}

	if last := oldMan.Meta.LastURLCount; last > 0 {
		floor := int(float64(last) * (1 - o.opts.SanityDropRatio))
		if len(entries) < floor {
			return nil, fmt.Errorf("%w: %d entries, previous run had %d",
				ErrSanityCheckFailed, len(entries), last)
		}
	}

	logger.Info().
		Int("entries", len(entries)).
		Bool("force", o.opts.Force).
		Msg("starting sync")

	builder := snapshot.New(policy.OutputDir, o.logger)
	scratch, err := builder.Prepare()
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			builder.Cleanup()
		}
	}()

	limiter := newLimiter(o.opts.RequestDelay)
	now := time.Now().UTC().Format(time.RFC3339)
	newMan := manifest.New()

	result := &Result{Entries: len(entries)}
	var docs []domain.DocInfo

	bar := utils.NewProgressBar(len(entries), utils.DescSyncing)
	for _, entry := range entries {
		_ = bar.Add(1)

		relPath, err := policy.URLToRelPath(entry.URL)
		if err != nil {
			logger.Warn().Str("url", entry.URL).Err(err).Msg("cannot map URL")
			result.Failed++
			continue
		}
		destPath := filepath.Join(scratch, relPath)

		if o.canReuse(entry, oldMan, policy.OutputDir, relPath) {
			old, _ := oldMan.Get(entry.URL)
			if err := utils.CopyFile(filepath.Join(policy.OutputDir, relPath), destPath); err == nil {
				newEntry := manifest.Entry{
					URL:          entry.URL,
					LastMod:      entry.LastMod,
					LocalPath:    relPath,
					Title:        old.Title,
					Description:  old.Description,
					LastSyncTime: old.LastSyncTime,
				}
				if err := newMan.Set(newEntry); err != nil {
					return nil, err
				}
				docs = append(docs, domain.DocInfo{
					URL:         entry.URL,
					Title:       old.Title,
					Description: old.Description,
					LocalPath:   relPath,
				})
				result.Reused++
				result.Success++
				continue
			}
			logger.Debug().Str("url", entry.URL).Msg("reuse copy failed, refetching")
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		content, err := o.fetcher.FetchDocument(ctx, docURL(entry.URL))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn().Str("url", entry.URL).Err(err).Msg("fetch failed")
			result.Failed++
			continue
		}

		title, description := ExtractTitleDescription(content)
		if policy.PostprocessContent != nil {
			content = policy.PostprocessContent(content, relPath)
		}

		if err := utils.EnsureDir(destPath); err != nil {
			return nil, fmt.Errorf("create dir for %s: %w", relPath, err)
		}
		if err := os.WriteFile(destPath, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", relPath, err)
		}

		if err := newMan.Set(manifest.Entry{
			URL:          entry.URL,
			LastMod:      entry.LastMod,
			LocalPath:    relPath,
			Title:        title,
			Description:  description,
			LastSyncTime: now,
		}); err != nil {
			return nil, err
		}
		docs = append(docs, domain.DocInfo{
			URL:         entry.URL,
			Title:       title,
			Description: description,
			LocalPath:   relPath,
		})
		result.Downloaded++
		result.Success++
	}
	_ = bar.Finish()

	if float64(result.Failed) > float64(len(entries))*o.opts.MaxFailRatio {
		return nil, fmt.Errorf("%w: %d of %d entries failed",
			ErrTooManyFailures, result.Failed, len(entries))
	}
	if result.Success == 0 {
		return nil, fmt.Errorf("%w: site %s", ErrNoSuccess, policy.Name)
	}

	if policy.CleanEmptyDirs {
		if err := utils.CleanEmptyDirs(scratch); err != nil {
			return nil, fmt.Errorf("clean empty dirs: %w", err)
		}
	}

	index := policy.GenerateIndex(docs)
	if err := os.WriteFile(filepath.Join(scratch, indexFile), []byte(index), 0644); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	newMan.Meta = manifest.Meta{
		LastSyncTime: now,
		LastURLCount: len(entries),
	}
	if err := newMan.Save(filepath.Join(scratch, manifestFile)); err != nil {
		return nil, err
	}

	required := append([]string{indexFile}, policy.RequiredFiles...)
	for _, name := range required {
		if !utils.Exists(filepath.Join(scratch, name)) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequired, name)
		}
	}

	if err := builder.Commit(); err != nil {
		return nil, err
	}
	committed = true

	logger.Info().
		Int("success", result.Success).
		Int("downloaded", result.Downloaded).
		Int("reused", result.Reused).
		Int("failed", result.Failed).
		Msg("sync committed")

	return result, nil
}

// canReuse reports whether the live copy of an entry can be carried over
// unchanged. Anything uncertain triggers a refetch.
func (o *Orchestrator) canReuse(entry domain.SitemapEntry, oldMan *manifest.Manifest, liveDir, relPath string) bool {
	if o.opts.Force {
		return false
	}
	old, ok := oldMan.Get(entry.URL)
	if !ok {
		return false
	}
	if entry.LastMod == "" || old.LastMod == "" {
		return false
	}
	if entry.LastMod != old.LastMod {
		return false
	}
	return utils.Exists(filepath.Join(liveDir, relPath))
}

// docURL appends the markdown extension doc endpoints serve.
func docURL(url string) string {
	if strings.HasSuffix(url, ".md") {
		return url
	}
	return url + ".md"
}

// newLimiter builds the courtesy rate limiter.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
