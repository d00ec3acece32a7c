package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

const reportCachePrefix = "report:"

var tracer = otel.Tracer("zone-expense/reports")

// Options tune caching and slow-report logging. The zero value disables both.
type Options struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	SlowMs       int64
}

// Reporter runs the aggregate reports against db. rdb may be nil.
type Reporter struct {
	db     *gorm.DB
	rdb    *config.Redis
	logger *logrus.Logger
	opts   Options
}

func NewReporter(db *gorm.DB, rdb *config.Redis, logger *logrus.Logger, opts Options) *Reporter {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 120 * time.Second
	}
	return &Reporter{db: db, rdb: rdb, logger: logger, opts: opts}
}

func cacheKey(kind string, q Query) string {
	return fmt.Sprintf("%s%s:%d:%d:%s", reportCachePrefix, kind, q.Page, q.PageSize, q.Search)
}

// cached serves key from Redis when enabled and fills it from build otherwise.
// Cache errors are logged and never fail the report.
func cached[T any](ctx context.Context, r *Reporter, key string, build func(context.Context) (*T, error)) (*T, error) {
	if r.opts.CacheEnabled {
		var hit T
		ok, err := r.rdb.GetObject(ctx, key, &hit)
		if err != nil {
			config.LogError(r.logger, "reports", "cached", "cache get", key, err)
		} else if ok {
			return &hit, nil
		}
	}

	started := time.Now()
	result, err := build(ctx)
	if err != nil {
		return nil, err
	}
	r.logSlowReport(ctx, key, started)

	if r.opts.CacheEnabled {
		if err := r.rdb.SetObject(ctx, key, result, r.opts.CacheTTL); err != nil {
			config.LogError(r.logger, "reports", "cached", "cache set", key, err)
		}
	}
	return result, nil
}

// Invalidate drops every cached report. Called after writes that change totals.
func (r *Reporter) Invalidate(ctx context.Context) {
	if !r.opts.CacheEnabled {
		return
	}
	if err := r.rdb.RemoveByPrefix(ctx, reportCachePrefix); err != nil {
		config.LogError(r.logger, "reports", "Invalidate", "remove cached reports", nil, err)
	}
}

func (r *Reporter) logSlowReport(ctx context.Context, name string, started time.Time) {
	if r.opts.SlowMs <= 0 || r.logger == nil {
		return
	}
	d := time.Since(started)
	if d.Milliseconds() < r.opts.SlowMs {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	r.logger.WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
	}).Warn("slow_report")
}
