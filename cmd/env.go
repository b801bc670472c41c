package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/cloud"
	"github.com/eastboundjoe/aviation-study-guide/internal/config"
	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/learner"
	"github.com/eastboundjoe/aviation-study-guide/internal/llm"
	"github.com/eastboundjoe/aviation-study-guide/internal/logging"
	"github.com/eastboundjoe/aviation-study-guide/internal/persist"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
	"github.com/eastboundjoe/aviation-study-guide/internal/store"
)

// runtime is what the study commands open: configuration, logger, the
// device store and, when configured, the row store.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	remote  *cloud.DB
	local   *persist.LocalBackend
	adapter *persist.Adapter
	catalog *content.Catalog
}

// openRuntime loads configuration and opens storage. Console log lines go
// to console; the dashboard passes io.Discard so they don't tear the screen.
func openRuntime(cmd *cobra.Command, console io.Writer) (*runtime, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Out: console})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt := &runtime{cfg: cfg, logger: logger, store: st}

	catalog, err := content.Default()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}
	rt.catalog = catalog

	// A nil *cloud.DB must not become a non-nil RowStore.
	var rows persist.RowStore
	if cfg.RemoteEnabled() {
		db, err := cloud.Open(cmd.Context(), cfg.RemoteDriver, cfg.RemoteDSN)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("open row store: %w", err)
		}
		rt.remote = db
		rows = db
	}
	rt.local = persist.NewLocalBackend(st.KV(), logger)
	rt.adapter = persist.NewAdapter(rt.local, rows, logger)

	logger.Debug("storage ready",
		zap.String("db", dbPath),
		zap.Bool("remote", rt.remote != nil))
	return rt, nil
}

func (rt *runtime) registry() *learner.Registry {
	return learner.NewRegistry(rt.adapter, rt.logger, progress.WithLogger(rt.logger))
}

// grader returns a recall grader backed by the configured model, or a
// keyword-only grader when no provider is configured.
func (rt *runtime) grader(ctx context.Context) *recall.Grader {
	cfg, ok := llm.Resolve()
	if !ok {
		rt.logger.Info("no LLM provider configured; recall is graded by keyword")
		return recall.NewGrader(nil, recall.DefaultConfig(), rt.logger)
	}
	provider, err := llm.NewProvider(ctx, cfg, rt.store.EventRepo(), rt.logger)
	if err != nil {
		rt.logger.Warn("LLM provider unavailable; recall is graded by keyword", zap.Error(err))
		return recall.NewGrader(nil, recall.DefaultConfig(), rt.logger)
	}
	return recall.NewGrader(provider, recall.DefaultConfig(), rt.logger)
}

func (rt *runtime) Close() {
	if rt.remote != nil {
		rt.remote.Close()
	}
	rt.store.Close()
	_ = rt.logger.Sync()
}

// loadLearner opens the runtime and loads the --as learner. The returned
// cleanup drains pending saves before closing storage.
func loadLearner(cmd *cobra.Command, console io.Writer) (*runtime, *learner.Learner, func(), error) {
	rt, err := openRuntime(cmd, console)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := rt.registry()
	l, err := reg.Get(cmd.Context(), identityFlag(cmd))
	if err != nil {
		reg.Close()
		rt.Close()
		return nil, nil, nil, fmt.Errorf("load progress: %w", err)
	}
	return rt, l, func() {
		reg.Close()
		rt.Close()
	}, nil
}

// parseChapter resolves a book title and chapter number against the catalog.
func parseChapter(catalog *content.Catalog, book, chapter string) (content.Book, content.Chapter, error) {
	var n int
	if _, err := fmt.Sscanf(chapter, "%d", &n); err != nil {
		return content.Book{}, content.Chapter{}, fmt.Errorf("invalid chapter %q: %w", chapter, err)
	}
	b, ok := findBook(catalog, book)
	if !ok {
		return content.Book{}, content.Chapter{}, fmt.Errorf("unknown book %q", book)
	}
	ch, ok := catalog.Chapter(progress.Key{Book: b.Title, Chapter: n})
	if !ok {
		return content.Book{}, content.Chapter{}, fmt.Errorf("%s has no chapter %d", b.Title, n)
	}
	return b, ch, nil
}

// findBook matches a title exactly, then case-insensitively against titles
// and filenames.
func findBook(catalog *content.Catalog, name string) (content.Book, bool) {
	if b, ok := catalog.Book(name); ok {
		return b, true
	}
	for _, b := range catalog.Books() {
		if strings.EqualFold(b.Title, name) || strings.EqualFold(b.Filename, name) {
			return b, true
		}
	}
	return content.Book{}, false
}
