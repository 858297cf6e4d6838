package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/autismart/autismart/internal/activity"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/insights"
	"github.com/autismart/autismart/internal/llm"
	"github.com/autismart/autismart/internal/screens"
	"github.com/autismart/autismart/internal/selfupdate"
	"github.com/autismart/autismart/internal/store"
)

// deps is what commands share once the database is open.
type deps struct {
	store    *store.Store
	catalog  *catalog.Catalog
	sink     activity.Sink
	metrics  *activity.Metrics
	insights *insights.Service
	closers  []func()
}

// openDeps opens the store, loads the catalog and builds the activity
// sink. Insights are built only when withInsights is set.
func openDeps(ctx context.Context, withInsights bool) (*deps, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	d := &deps{store: st}
	d.closers = append(d.closers, func() { _ = st.Close() })

	d.catalog, err = catalog.Resolve(cfg.Catalog.Dir, cfg.Catalog.Pattern)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	d.buildSink()
	if withInsights {
		d.buildInsights(ctx)
	}
	return d, nil
}

// buildSink fans activities out to the database, metrics and, when
// configured, the message broker. Broker failures only disable publishing.
func (d *deps) buildSink() {
	d.metrics = activity.NewMetrics()
	sinks := activity.MultiSink{d.store.ActivityRepo(), d.metrics}

	if cfg.AMQP.URL != "" {
		pub, err := activity.DialPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Warn("activity publishing disabled", zap.Error(err))
		} else {
			sinks = append(sinks, pub)
			d.closers = append(d.closers, func() { _ = pub.Close() })
		}
	}

	if cfg.Metrics.File != "" {
		d.closers = append(d.closers, func() {
			if err := d.metrics.WriteTextfile(cfg.Metrics.File); err != nil {
				logger.Warn("metrics textfile", zap.Error(err))
			}
		})
	}
	d.sink = sinks
}

// buildInsights wires the configured LLM provider, falling back to
// provider discovery from API key env vars. Without a provider the service
// produces offline guidance.
func (d *deps) buildInsights(ctx context.Context) {
	llmCfg := cfg.LLM
	if err := llmCfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			logger.Info("no LLM provider configured, using offline guidance", zap.Error(err))
			d.insights = insights.NewService(nil, nil, insights.DefaultConfig(), logger)
			return
		}
		discovered.Retry = llmCfg.Retry
		discovered.RateLimit = llmCfg.RateLimit
		discovered.Timeout = llmCfg.Timeout
		llmCfg = discovered
	}

	var provider llm.Provider
	p, err := llm.NewProvider(ctx, llmCfg, d.store.EventRepo(), logger)
	if err != nil {
		logger.Warn("LLM provider unavailable, using offline guidance", zap.Error(err))
	} else {
		provider = p
	}

	var cache insights.Cache = insights.NewMemoryCache()
	if cfg.Redis.URL != "" {
		rc, err := insights.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("redis insight cache unavailable", zap.Error(err))
		} else {
			cache = rc
			d.closers = append(d.closers, func() { _ = rc.Close() })
		}
	}

	d.insights = insights.NewService(provider, cache, insights.DefaultConfig(), logger)
}

// Close releases everything in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// env builds the screen environment.
func (d *deps) env() *screens.Env {
	return &screens.Env{
		Catalog:       d.catalog,
		Children:      d.store.ChildRepo(),
		Activities:    d.store.ActivityRepo(),
		Events:        d.store.EventRepo(),
		Snapshots:     d.store.SnapshotRepo(),
		Sink:          d.sink,
		Insights:      d.insights,
		Logger:        logger,
		LatestVersion: latestVersion,
	}
}

// findChild looks a child up by name.
func (d *deps) findChild(ctx context.Context, name string) (*store.Child, error) {
	c, err := d.store.ChildRepo().FindByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no child named %q; add one with: autismart child add %q", name, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find child: %w", err)
	}
	return c, nil
}

// latestVersion reports a newer release, or "" when up to date.
func latestVersion(ctx context.Context) (string, error) {
	checker := selfupdate.NewChecker(
		selfupdate.WithRepo(cfg.Update.Repo),
		selfupdate.WithTimeout(5*time.Second),
	)
	res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
	if err != nil {
		return "", err
	}
	if !res.UpdateAvailable {
		return "", nil
	}
	return res.LatestVersion, nil
}
