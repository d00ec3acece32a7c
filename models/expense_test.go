package models_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/testutil"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type expenseFixture struct {
	db       *gorm.DB
	owner    *models.User
	stranger *models.User
	admin    *models.User
	zone     *models.Zone
	category *models.Category
	expense  *models.Expense
}

func newExpenseFixture(t *testing.T) expenseFixture {
	db := testutil.NewDB(t)
	f := expenseFixture{db: db}
	f.owner = testutil.MustUser(t, db, "Owner", "owner@example.com", models.RoleUser)
	f.stranger = testutil.MustUser(t, db, "Stranger", "stranger@example.com", models.RoleUser)
	f.admin = testutil.MustUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	f.zone = testutil.MustZone(t, db, "North", nil)
	f.category = testutil.MustCategory(t, db, "Food")
	f.expense = testutil.MustExpense(t, db, f.owner, f.category, f.zone, "12.50", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	return f
}

func principalOf(u *models.User) models.Principal {
	return models.Principal{ID: u.ID, Role: u.Role}
}

func TestCreateExpense(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := models.CreateExpense(ctx, f.db, f.owner.ID, models.NewExpense{
		Amount:      decimal.RequireFromString("99.99"),
		Description: " lunch ",
		ExpenseDate: &models.InputTime{Time: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)},
		CategoryId:  f.category.ID,
		ZoneId:      f.zone.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "lunch", expense.Description)
	require.Equal(t, f.owner.ID, expense.UserId)

	before := time.Now().UTC().Add(-time.Minute)
	undated, err := models.CreateExpense(ctx, f.db, f.owner.ID, models.NewExpense{
		Amount:     decimal.NewFromInt(1),
		CategoryId: f.category.ID,
		ZoneId:     f.zone.ID,
	})
	require.NoError(t, err)
	require.True(t, undated.ExpenseDate.After(before))
}

func TestCreateExpense_Validation(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input models.NewExpense
		kind  utils.ErrorKind
	}{
		{"zero amount", models.NewExpense{Amount: decimal.Zero, CategoryId: f.category.ID, ZoneId: f.zone.ID}, utils.KindValidation},
		{"negative amount", models.NewExpense{Amount: decimal.NewFromInt(-5), CategoryId: f.category.ID, ZoneId: f.zone.ID}, utils.KindValidation},
		{"missing zone", models.NewExpense{Amount: decimal.NewFromInt(5), CategoryId: f.category.ID}, utils.KindValidation},
		{"unknown category", models.NewExpense{Amount: decimal.NewFromInt(5), CategoryId: "nope", ZoneId: f.zone.ID}, utils.KindNotFound},
		{"unknown zone", models.NewExpense{Amount: decimal.NewFromInt(5), CategoryId: f.category.ID, ZoneId: "nope"}, utils.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := models.CreateExpense(ctx, f.db, f.owner.ID, tc.input)
			require.Error(t, err)
			require.Equal(t, tc.kind, utils.KindOf(err))
		})
	}
}

func TestUpdateExpense_OwnerOnly(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	amount := decimal.RequireFromString("30")
	input := models.UpdateExpenseInput{Amount: &amount}

	_, err := models.UpdateExpense(ctx, f.db, principalOf(f.stranger), f.expense.ID, input)
	require.True(t, utils.IsForbidden(err))

	_, err = models.UpdateExpense(ctx, f.db, principalOf(f.owner), "missing", input)
	require.True(t, utils.IsNotFound(err))

	updated, err := models.UpdateExpense(ctx, f.db, principalOf(f.owner), f.expense.ID, input)
	require.NoError(t, err)
	require.True(t, amount.Equal(updated.Amount))

	stored, err := models.GetExpense(ctx, f.db, f.expense.ID)
	require.NoError(t, err)
	require.True(t, amount.Equal(stored.Amount))
}

func TestUpdateExpense_UnchangedValuesStillSucceed(t *testing.T) {
	f := newExpenseFixture(t)
	description := f.expense.Description

	_, err := models.UpdateExpense(context.Background(), f.db, principalOf(f.owner), f.expense.ID, models.UpdateExpenseInput{Description: &description})
	require.NoError(t, err)
}

func TestUpdateExpense_BlankDateKeepsStoredDate(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	var blank models.InputTime
	require.NoError(t, json.Unmarshal([]byte(`""`), &blank))
	description := "late fee"
	updated, err := models.UpdateExpense(ctx, f.db, principalOf(f.owner), f.expense.ID, models.UpdateExpenseInput{
		ExpenseDate: &blank,
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, "late fee", updated.Description)
	require.True(t, f.expense.ExpenseDate.Equal(updated.ExpenseDate), updated.ExpenseDate)

	_, err = models.UpdateExpense(ctx, f.db, principalOf(f.owner), f.expense.ID, models.UpdateExpenseInput{ExpenseDate: &blank})
	require.NoError(t, err)
	stored, err := models.GetExpense(ctx, f.db, f.expense.ID)
	require.NoError(t, err)
	require.True(t, f.expense.ExpenseDate.Equal(stored.ExpenseDate), stored.ExpenseDate)
}

func TestUpdateExpense_RejectsUnknownZone(t *testing.T) {
	f := newExpenseFixture(t)
	zone := "missing"

	_, err := models.UpdateExpense(context.Background(), f.db, principalOf(f.owner), f.expense.ID, models.UpdateExpenseInput{ZoneId: &zone})
	require.True(t, utils.IsNotFound(err))
}

func TestDeleteExpense(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	require.True(t, utils.IsForbidden(models.DeleteExpense(ctx, f.db, principalOf(f.stranger), f.expense.ID)))
	require.NoError(t, models.DeleteExpense(ctx, f.db, principalOf(f.owner), f.expense.ID))
	require.True(t, utils.IsNotFound(models.DeleteExpense(ctx, f.db, principalOf(f.owner), f.expense.ID)))

	other := testutil.MustExpense(t, f.db, f.stranger, f.category, f.zone, "1", time.Now())
	require.NoError(t, models.DeleteExpense(ctx, f.db, principalOf(f.admin), other.ID))
}

func TestSetReceiptUrl_ReturnsPrevious(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	previous, err := models.SetReceiptUrl(ctx, f.db, principalOf(f.owner), f.expense.ID, "https://files/a.png")
	require.NoError(t, err)
	require.Empty(t, previous)

	previous, err = models.SetReceiptUrl(ctx, f.db, principalOf(f.admin), f.expense.ID, "https://files/b.png")
	require.NoError(t, err)
	require.Equal(t, "https://files/a.png", previous)

	_, err = models.SetReceiptUrl(ctx, f.db, principalOf(f.stranger), f.expense.ID, "https://files/c.png")
	require.True(t, utils.IsForbidden(err))
}

func TestListMyExpenses_FiltersAndOrders(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	south := testutil.MustZone(t, f.db, "South", nil)
	newest := testutil.MustExpense(t, f.db, f.owner, f.category, south, "3", time.Now())
	testutil.MustExpense(t, f.db, f.stranger, f.category, south, "4", time.Now())

	all, err := models.ListMyExpenses(ctx, f.db, f.owner.ID, models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newest.ID, all[0].ID)
	require.Equal(t, "South", all[0].Zone.Name)
	require.Equal(t, "Food", all[0].Category.Name)

	filtered, err := models.ListMyExpenses(ctx, f.db, f.owner.ID, models.ExpenseFilter{ZoneId: f.zone.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, f.expense.ID, filtered[0].ID)
}
