package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/testutil"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/stretchr/testify/require"
)

func TestCreateZone_AllowsDuplicateName(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := testutil.MustUser(t, db, "Root", "root@example.com", models.RoleAdmin)

	zone, err := models.CreateZone(ctx, db, admin.ID, models.NewZone{Name: "  North "})
	require.NoError(t, err)
	require.Equal(t, "North", zone.Name)
	require.NotNil(t, zone.CreatedBy)
	require.Equal(t, admin.ID, *zone.CreatedBy)

	again, err := models.CreateZone(ctx, db, admin.ID, models.NewZone{Name: "North"})
	require.NoError(t, err)
	require.NotEqual(t, zone.ID, again.ID)

	_, err = models.CreateZone(ctx, db, admin.ID, models.NewZone{Name: "  "})
	require.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestListZones_ScopedByRole(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	south := testutil.MustZone(t, db, "South", nil)
	testutil.MustZone(t, db, "North", nil)
	testutil.MustAssign(t, db, user, south)

	all, err := models.ListZones(ctx, db, models.Principal{ID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "North", all[0].Name)

	mine, err := models.ListZones(ctx, db, models.Principal{ID: user.ID, Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, south.ID, mine[0].ID)
}

func TestUpdateZone(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	north := testutil.MustZone(t, db, "North", nil)
	testutil.MustZone(t, db, "South", nil)

	name := "Far North"
	zone, err := models.UpdateZone(ctx, db, north.ID, models.UpdateZoneInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Far North", zone.Name)

	shared := "South"
	zone, err = models.UpdateZone(ctx, db, north.ID, models.UpdateZoneInput{Name: &shared})
	require.NoError(t, err)
	require.Equal(t, "South", zone.Name)

	_, err = models.UpdateZone(ctx, db, "missing", models.UpdateZoneInput{Name: &name})
	require.True(t, utils.IsNotFound(err))
}

func TestDeleteZone_CascadesAssignmentsAndExpenses(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.MustUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	north := testutil.MustZone(t, db, "North", nil)
	south := testutil.MustZone(t, db, "South", nil)
	food := testutil.MustCategory(t, db, "Food")
	testutil.MustAssign(t, db, user, north)
	testutil.MustAssign(t, db, user, south)
	testutil.MustExpense(t, db, user, food, north, "10", time.Now())
	kept := testutil.MustExpense(t, db, user, food, south, "20", time.Now())

	require.NoError(t, models.DeleteZone(ctx, db, north.ID))

	_, err := models.GetZone(ctx, db, north.ID)
	require.True(t, utils.IsNotFound(err))

	var expenses []models.Expense
	require.NoError(t, db.Find(&expenses).Error)
	require.Len(t, expenses, 1)
	require.Equal(t, kept.ID, expenses[0].ID)

	ids, err := models.ListUserZoneIds(ctx, db, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{south.ID}, ids)

	require.True(t, utils.IsNotFound(models.DeleteZone(ctx, db, north.ID)))
}
