package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// expenseAggregate is one group of expenses keyed by a foreign key column.
// The zero value stands for an entity without expenses.
type expenseAggregate struct {
	GroupId  string
	Total    decimal.Decimal
	LastDate models.NullTime
	Count    int64
}

var groupColumns = map[string]bool{
	"user_id":     true,
	"category_id": true,
	"zone_id":     true,
}

func aggregateExpensesBy(ctx context.Context, db *gorm.DB, column string) ([]expenseAggregate, error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("cannot group expenses by %q", column)
	}
	rows := make([]expenseAggregate, 0)
	err := db.WithContext(ctx).
		Model(&models.Expense{}).
		Select(column + " AS group_id, COALESCE(SUM(amount), 0) AS total, MAX(expense_date) AS last_date, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func aggregateKey(a expenseAggregate) string { return a.GroupId }

// baseEntity is the common shape of the entity listing a report starts from.
type baseEntity struct {
	ID           string
	Name         string
	Email        string
	CreatedAt    time.Time
	CreatorName  string
	CreatorEmail string
}

func entityKey(e baseEntity) string { return e.ID }

// searchScope filters on the lower-cased expression containing term literally.
func searchScope(expr string, term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where("LOWER("+expr+") LIKE ? ESCAPE '!'", utils.ContainsPattern(term))
	}
}

// sumTotals is the grand total over the merged, not yet paginated, rows.
func sumTotals[R any](rows []R, total func(R) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(total(r))
	}
	return sum
}
