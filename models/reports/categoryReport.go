package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CategoryReportRow struct {
	CategoryId      string          `json:"category_id"`
	Name            string          `json:"name"`
	Total           decimal.Decimal `json:"total"`
	LastExpenseDate *time.Time      `json:"last_expense_date"`
}

type CategoryReport struct {
	Data                 []CategoryReportRow `json:"data"`
	TotalPlatformExpense decimal.Decimal     `json:"totalPlatformExpense"`
	TotalPages           int                 `json:"totalPages"`
}

func (r *Reporter) CategoryReport(ctx context.Context, q Query) (*CategoryReport, error) {
	ctx, span := tracer.Start(ctx, "reports.CategoryReport", trace.WithAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("page_size", q.PageSize),
	))
	defer span.End()

	return cached(ctx, r, cacheKey("categories", q), func(ctx context.Context) (*CategoryReport, error) {
		rows, err := r.categoryRows(ctx, q.Search)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		page, totalPages := Paginate(rows, q.Page, q.PageSize)
		return &CategoryReport{
			Data:                 page,
			TotalPlatformExpense: sumTotals(rows, func(r CategoryReportRow) decimal.Decimal { return r.Total }),
			TotalPages:           totalPages,
		}, nil
	})
}

func (r *Reporter) categoryRows(ctx context.Context, search string) ([]CategoryReportRow, error) {
	base := make([]baseEntity, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("id, name, created_at").
		Scopes(searchScope("name", search)).
		Order("created_at ASC").Order("id ASC").
		Scan(&base).Error
	if err != nil {
		return nil, err
	}
	aggregates, err := aggregateExpensesBy(ctx, r.db, "category_id")
	if err != nil {
		return nil, err
	}
	return MergeByKey(base, aggregates, entityKey, aggregateKey, func(c baseEntity, a expenseAggregate) CategoryReportRow {
		return CategoryReportRow{
			CategoryId:      c.ID,
			Name:            c.Name,
			Total:           a.Total,
			LastExpenseDate: a.LastDate.Ptr(),
		}
	}), nil
}
