package reports_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/models/reports"
	"github.com/mmdatafocus/zone_expense_backend/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func newReporter(db *gorm.DB) *reports.Reporter {
	return reports.NewReporter(db, nil, config.NewLogger("error"), reports.Options{})
}

func TestCategoryReport_SearchKeepsCategoriesWithoutExpenses(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	zone := testutil.MustZone(t, db, "North", nil)
	travel := testutil.MustCategory(t, db, "Travel")
	food := testutil.MustCategory(t, db, "Food")
	gear := testutil.MustCategory(t, db, "TravelGear")
	testutil.MustExpense(t, db, user, travel, zone, "100", day(1))
	testutil.MustExpense(t, db, user, travel, zone, "20", day(4))
	testutil.MustExpense(t, db, user, food, zone, "40", day(2))

	report, err := newReporter(db).CategoryReport(ctx, reports.ParseQuery("1", "", "Travel", reports.DefaultReportSize))
	require.NoError(t, err)

	require.Len(t, report.Data, 2)
	require.Equal(t, "Travel", report.Data[0].Name)
	requireDecimal(t, "120", report.Data[0].Total)
	require.NotNil(t, report.Data[0].LastExpenseDate)
	require.True(t, day(4).Equal(*report.Data[0].LastExpenseDate))

	require.Equal(t, gear.ID, report.Data[1].CategoryId)
	requireDecimal(t, "0", report.Data[1].Total)
	require.Nil(t, report.Data[1].LastExpenseDate)

	requireDecimal(t, "120", report.TotalPlatformExpense)
	require.Equal(t, 1, report.TotalPages)
}

func TestCategoryReport_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.MustCategory(t, db, "100% Pure")
	testutil.MustCategory(t, db, "1000 Things")
	testutil.MustCategory(t, db, "snake_case")
	testutil.MustCategory(t, db, "snakeXcase")

	r := newReporter(db)
	report, err := r.CategoryReport(context.Background(), reports.ParseQuery("", "", "0%", reports.DefaultReportSize))
	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	require.Equal(t, "100% Pure", report.Data[0].Name)

	report, err = r.CategoryReport(context.Background(), reports.ParseQuery("", "", "e_c", reports.DefaultReportSize))
	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	require.Equal(t, "snake_case", report.Data[0].Name)
}

func TestUserReport_PaginatesAfterMergingAndTotalsAllPages(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	zone := testutil.MustZone(t, db, "North", nil)
	category := testutil.MustCategory(t, db, "Food")
	alice := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	testutil.MustUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	nameless := testutil.MustUser(t, db, "", "carol@example.com", models.RoleUser)
	testutil.MustExpense(t, db, alice, category, zone, "10.50", day(1))
	testutil.MustExpense(t, db, alice, category, zone, "4.50", day(7))
	testutil.MustExpense(t, db, nameless, category, zone, "30", day(3))

	r := newReporter(db)
	first, err := r.UserReport(ctx, reports.Query{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, first.TotalPages)
	requireDecimal(t, "45", first.TotalPlatformExpense)
	require.Len(t, first.Data, 2)
	require.Equal(t, "Alice", first.Data[0].UserName)
	requireDecimal(t, "15", first.Data[0].TotalAmount)
	require.True(t, day(7).Equal(*first.Data[0].LastExpenseDate))
	require.Equal(t, "Bob", first.Data[1].UserName)
	requireDecimal(t, "0", first.Data[1].TotalAmount)
	require.Nil(t, first.Data[1].LastExpenseDate)

	second, err := r.UserReport(ctx, reports.Query{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second.Data, 1)
	require.Equal(t, "carol@example.com", second.Data[0].UserName)
	requireDecimal(t, "45", second.TotalPlatformExpense)

	beyond, err := r.UserReport(ctx, reports.Query{Page: 5, PageSize: 2})
	require.NoError(t, err)
	require.NotNil(t, beyond.Data)
	require.Empty(t, beyond.Data)
	require.Equal(t, 2, beyond.TotalPages)
}

func TestUserReport_SearchMatchesNameOnly(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.MustUser(t, db, "", "dave@example.com", models.RoleUser)
	testutil.MustUser(t, db, "Erin", "erin.dave@example.com", models.RoleUser)
	testutil.MustUser(t, db, "Dave Singh", "ds@example.com", models.RoleUser)

	report, err := newReporter(db).UserReport(context.Background(), reports.Query{Page: 1, PageSize: 5, Search: "DAVE"})
	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	require.Equal(t, "Dave Singh", report.Data[0].UserName)
	require.Equal(t, 1, report.TotalPages)

	all, err := newReporter(db).UserReport(context.Background(), reports.Query{Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, all.Data, 3)
	require.Equal(t, "dave@example.com", all.Data[0].UserName)
}

func TestZoneReport_CreatorFallbackAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.MustUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	nameless := testutil.MustUser(t, db, "", "ops@example.com", models.RoleAdmin)
	north := testutil.MustZone(t, db, "North", admin)
	south := testutil.MustZone(t, db, "South", nameless)
	testutil.MustZone(t, db, "West", nil)
	category := testutil.MustCategory(t, db, "Food")
	testutil.MustExpense(t, db, admin, category, north, "5", day(1))
	testutil.MustExpense(t, db, admin, category, north, "7", day(2))
	testutil.MustExpense(t, db, admin, category, south, "3", day(3))

	report, err := newReporter(db).ZoneReport(context.Background(), reports.Query{Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, report.Data, 3)

	require.Equal(t, "North", report.Data[0].Name)
	require.Equal(t, "Root", report.Data[0].CreatedBy)
	requireDecimal(t, "12", report.Data[0].TotalExpenses)
	require.EqualValues(t, 2, report.Data[0].ExpenseCount)

	require.Equal(t, "ops@example.com", report.Data[1].CreatedBy)
	require.EqualValues(t, 1, report.Data[1].ExpenseCount)

	require.Equal(t, "West", report.Data[2].Name)
	require.Equal(t, "—", report.Data[2].CreatedBy)
	requireDecimal(t, "0", report.Data[2].TotalExpenses)
	require.EqualValues(t, 0, report.Data[2].ExpenseCount)

	requireDecimal(t, "15", report.TotalExpenses)
	require.Equal(t, 1, report.TotalPages)
}

func TestDashboard_OnlyGroupsExistingExpenses(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	north := testutil.MustZone(t, db, "North", nil)
	testutil.MustZone(t, db, "Empty", nil)
	food := testutil.MustCategory(t, db, "Food")
	testutil.MustCategory(t, db, "Unused")
	testutil.MustExpense(t, db, user, food, north, "25", day(1))
	testutil.MustExpense(t, db, user, food, north, "5", day(2))

	summary, err := newReporter(db).Dashboard(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, summary.TotalUsers)
	require.EqualValues(t, 2, summary.TotalZones)
	require.EqualValues(t, 2, summary.TotalCategories)
	require.EqualValues(t, 2, summary.TotalExpenses)
	requireDecimal(t, "30", summary.TotalAmount)

	require.Len(t, summary.ZoneWiseTotals, 1)
	require.Equal(t, north.ID, summary.ZoneWiseTotals[0].ZoneId)
	requireDecimal(t, "30", summary.ZoneWiseTotals[0].Amount)
	require.Len(t, summary.CategoryWiseTotals, 1)
	require.Equal(t, food.ID, summary.CategoryWiseTotals[0].CategoryId)
}

func TestDashboard_EmptyDatabase(t *testing.T) {
	summary, err := newReporter(testutil.NewDB(t)).Dashboard(context.Background())
	require.NoError(t, err)
	requireDecimal(t, "0", summary.TotalAmount)
	require.NotNil(t, summary.ZoneWiseTotals)
	require.Empty(t, summary.ZoneWiseTotals)
	require.Empty(t, summary.CategoryWiseTotals)
}

func TestUserDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := testutil.MustUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	north := testutil.MustZone(t, db, "North", nil)
	south := testutil.MustZone(t, db, "South", nil)
	testutil.MustAssign(t, db, alice, south)
	testutil.MustAssign(t, db, alice, north)
	food := testutil.MustCategory(t, db, "Food")
	travel := testutil.MustCategory(t, db, "Travel")
	testutil.MustExpense(t, db, alice, travel, north, "50", day(1))
	testutil.MustExpense(t, db, alice, food, north, "10", day(2))
	last := testutil.MustExpense(t, db, alice, food, south, "5", day(3))
	testutil.MustExpense(t, db, bob, food, north, "1000", day(3))

	dash, err := newReporter(db).UserDashboard(context.Background(), alice.ID)
	require.NoError(t, err)
	requireDecimal(t, "65", dash.TotalSpent)
	require.Equal(t, []string{"North", "South"}, dash.Zones)
	require.Len(t, dash.CategoryData, 2)
	require.Equal(t, "Food", dash.CategoryData[0].Name)
	requireDecimal(t, "15", dash.CategoryData[0].Value)
	require.Equal(t, "Travel", dash.CategoryData[1].Name)
	require.NotNil(t, dash.LastExpense)
	require.Equal(t, last.ID, dash.LastExpense.ID)
	require.Equal(t, "South", dash.LastExpense.Zone.Name)

	empty, err := newReporter(db).UserDashboard(context.Background(), "missing")
	require.NoError(t, err)
	requireDecimal(t, "0", empty.TotalSpent)
	require.Nil(t, empty.LastExpense)
	require.Empty(t, empty.Zones)
}

func TestExportExcel_WritesAllMatchingRows(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	zone := testutil.MustZone(t, db, "North", nil)
	travel := testutil.MustCategory(t, db, "Travel")
	testutil.MustCategory(t, db, "Food")
	testutil.MustCategory(t, db, "TravelGear")
	testutil.MustExpense(t, db, user, travel, zone, "120", day(9))

	var buf bytes.Buffer
	require.NoError(t, newReporter(db).ExportExcel(context.Background(), "categories", "travel", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Category", "Total", "Last Expense Date"}, rows[0])
	require.Equal(t, []string{"Travel", "120", "2025-03-09"}, rows[1])
	require.Equal(t, "TravelGear", rows[2][0])
}

func TestExportExcel_UnknownKind(t *testing.T) {
	var buf bytes.Buffer
	err := newReporter(testutil.NewDB(t)).ExportExcel(context.Background(), "invoices", "", &buf)
	require.Error(t, err)
	require.Zero(t, buf.Len())
}
