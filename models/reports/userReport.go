package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type UserReportRow struct {
	UserId          string          `json:"userId"`
	UserName        string          `json:"userName"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	LastExpenseDate *time.Time      `json:"lastExpenseDate"`
}

type UserReport struct {
	Data                 []UserReportRow `json:"data"`
	TotalPlatformExpense decimal.Decimal `json:"totalPlatformExpense"`
	TotalPages           int             `json:"totalPages"`
}

// UserReport lists every user matching the search with their spend and last
// expense date.
func (r *Reporter) UserReport(ctx context.Context, q Query) (*UserReport, error) {
	ctx, span := tracer.Start(ctx, "reports.UserReport", trace.WithAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("page_size", q.PageSize),
	))
	defer span.End()

	return cached(ctx, r, cacheKey("users", q), func(ctx context.Context) (*UserReport, error) {
		rows, err := r.userRows(ctx, q.Search)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		page, totalPages := Paginate(rows, q.Page, q.PageSize)
		return &UserReport{
			Data:                 page,
			TotalPlatformExpense: sumTotals(rows, func(r UserReportRow) decimal.Decimal { return r.TotalAmount }),
			TotalPages:           totalPages,
		}, nil
	})
}

func (r *Reporter) userRows(ctx context.Context, search string) ([]UserReportRow, error) {
	base := make([]baseEntity, 0)
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, name, email, created_at").
		Scopes(searchScope("name", search)).
		Order("created_at ASC").Order("id ASC").
		Scan(&base).Error
	if err != nil {
		return nil, err
	}
	aggregates, err := aggregateExpensesBy(ctx, r.db, "user_id")
	if err != nil {
		return nil, err
	}
	return MergeByKey(base, aggregates, entityKey, aggregateKey, func(u baseEntity, a expenseAggregate) UserReportRow {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		return UserReportRow{
			UserId:          u.ID,
			UserName:        name,
			TotalAmount:     a.Total,
			LastExpenseDate: a.LastDate.Ptr(),
		}
	}), nil
}
