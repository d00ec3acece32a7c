package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ZoneReportRow struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	ExpenseCount  int64           `json:"expense_count"`
}

type ZoneReport struct {
	Data          []ZoneReportRow `json:"data"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalPages    int             `json:"totalPages"`
}

func (r *Reporter) ZoneReport(ctx context.Context, q Query) (*ZoneReport, error) {
	ctx, span := tracer.Start(ctx, "reports.ZoneReport", trace.WithAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("page_size", q.PageSize),
	))
	defer span.End()

	return cached(ctx, r, cacheKey("zones", q), func(ctx context.Context) (*ZoneReport, error) {
		rows, err := r.zoneRows(ctx, q.Search)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		page, totalPages := Paginate(rows, q.Page, q.PageSize)
		return &ZoneReport{
			Data:          page,
			TotalExpenses: sumTotals(rows, func(r ZoneReportRow) decimal.Decimal { return r.TotalExpenses }),
			TotalPages:    totalPages,
		}, nil
	})
}

func (r *Reporter) zoneRows(ctx context.Context, search string) ([]ZoneReportRow, error) {
	base := make([]baseEntity, 0)
	err := r.db.WithContext(ctx).
		Table("zones").
		Select("zones.id, zones.name, zones.created_at, users.name AS creator_name, users.email AS creator_email").
		Joins("LEFT JOIN users ON users.id = zones.created_by").
		Scopes(searchScope("zones.name", search)).
		Order("zones.created_at ASC").Order("zones.id ASC").
		Scan(&base).Error
	if err != nil {
		return nil, err
	}
	aggregates, err := aggregateExpensesBy(ctx, r.db, "zone_id")
	if err != nil {
		return nil, err
	}
	return MergeByKey(base, aggregates, entityKey, aggregateKey, func(z baseEntity, a expenseAggregate) ZoneReportRow {
		createdBy := models.UnknownCreator
		switch {
		case z.CreatorName != "":
			createdBy = z.CreatorName
		case z.CreatorEmail != "":
			createdBy = z.CreatorEmail
		}
		return ZoneReportRow{
			ID:            z.ID,
			Name:          z.Name,
			CreatedAt:     z.CreatedAt,
			CreatedBy:     createdBy,
			TotalExpenses: a.Total,
			ExpenseCount:  a.Count,
		}
	}), nil
}
