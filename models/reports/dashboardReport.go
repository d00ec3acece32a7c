package reports

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ZoneTotal struct {
	ZoneId string          `json:"zoneId"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryTotal struct {
	CategoryId string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

// DashboardSummary holds platform totals. The grouped totals only contain
// zones and categories that have expenses.
type DashboardSummary struct {
	TotalUsers         int64           `json:"totalUsers"`
	TotalZones         int64           `json:"totalZones"`
	TotalCategories    int64           `json:"totalCategories"`
	TotalExpenses      int64           `json:"totalExpenses"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	ZoneWiseTotals     []ZoneTotal     `json:"zoneWiseTotals"`
	CategoryWiseTotals []CategoryTotal `json:"categoryWiseTotals"`
}

type CategoryValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type UserDashboard struct {
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	Zones        []string        `json:"zones"`
	CategoryData []CategoryValue `json:"categoryData"`
	LastExpense  *models.Expense `json:"lastExpense"`
}

func (r *Reporter) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "reports.Dashboard")
	defer span.End()

	db := r.db.WithContext(ctx)
	summary := DashboardSummary{
		ZoneWiseTotals:     make([]ZoneTotal, 0),
		CategoryWiseTotals: make([]CategoryTotal, 0),
	}
	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.User{}, &summary.TotalUsers},
		{&models.Zone{}, &summary.TotalZones},
		{&models.Category{}, &summary.TotalCategories},
		{&models.Expense{}, &summary.TotalExpenses},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if err := db.Model(&models.Expense{}).Select("COALESCE(SUM(amount), 0)").Row().Scan(&summary.TotalAmount); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := groupedTotals(db, "zone_id", &summary.ZoneWiseTotals); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := groupedTotals(db, "category_id", &summary.CategoryWiseTotals); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &summary, nil
}

func groupedTotals[T any](db *gorm.DB, column string, dest *[]T) error {
	if !groupColumns[column] {
		return fmt.Errorf("cannot group expenses by %q", column)
	}
	return db.Model(&models.Expense{}).
		Select(column + ", SUM(amount) AS amount").
		Group(column).
		Order(column).
		Scan(dest).Error
}

// UserDashboard summarises one user's own spending.
func (r *Reporter) UserDashboard(ctx context.Context, userId string) (*UserDashboard, error) {
	ctx, span := tracer.Start(ctx, "reports.UserDashboard")
	defer span.End()

	db := r.db.WithContext(ctx)
	dash := UserDashboard{
		Zones:        make([]string, 0),
		CategoryData: make([]CategoryValue, 0),
	}

	err := db.Model(&models.Expense{}).
		Where("user_id = ?", userId).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&dash.TotalSpent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	err = db.Table("user_zones").
		Joins("JOIN zones ON zones.id = user_zones.zone_id").
		Where("user_zones.user_id = ?", userId).
		Order("zones.name").
		Pluck("zones.name", &dash.Zones).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	err = db.Table("expenses").
		Select("categories.name AS name, SUM(expenses.amount) AS value").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userId).
		Group("categories.id, categories.name").
		Order("categories.name").
		Scan(&dash.CategoryData).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var last models.Expense
	err = db.Preload("Category").Preload("Zone").
		Where("user_id = ?", userId).
		Order("created_at DESC").Order("id DESC").
		Limit(1).Find(&last).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if last.ID != "" {
		dash.LastExpense = &last
	}
	return &dash, nil
}
