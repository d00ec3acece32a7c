package testutil

import (
	"testing"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture user.
const Password = "secret123"

var passwordHash string

func hashedPassword(t testing.TB) string {
	if passwordHash == "" {
		h, err := utils.HashPassword(Password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		passwordHash = h
	}
	return passwordHash
}

// MustUser inserts a user. Successive fixtures get increasing created_at values.
func MustUser(t testing.TB, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()
	u := models.User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword(t),
		Role:      role,
		CreatedAt: nextTime(),
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &u
}

func MustZone(t testing.TB, db *gorm.DB, name string, createdBy *models.User) *models.Zone {
	t.Helper()
	z := models.Zone{Name: name, CreatedAt: nextTime()}
	if createdBy != nil {
		z.CreatedBy = &createdBy.ID
	}
	if err := db.Create(&z).Error; err != nil {
		t.Fatalf("create zone %s: %v", name, err)
	}
	return &z
}

func MustCategory(t testing.TB, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := models.Category{Name: name, CreatedAt: nextTime()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return &c
}

func MustExpense(t testing.TB, db *gorm.DB, user *models.User, category *models.Category, zone *models.Zone, amount string, date time.Time) *models.Expense {
	t.Helper()
	e := models.Expense{
		Amount:      decimal.RequireFromString(amount),
		ExpenseDate: date.UTC(),
		UserId:      user.ID,
		CategoryId:  category.ID,
		ZoneId:      zone.ID,
		CreatedAt:   nextTime(),
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return &e
}

func MustAssign(t testing.TB, db *gorm.DB, user *models.User, zone *models.Zone) {
	t.Helper()
	if err := db.Create(&models.UserZone{UserId: user.ID, ZoneId: zone.ID}).Error; err != nil {
		t.Fatalf("assign zone: %v", err)
	}
}

var clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func nextTime() time.Time {
	clock = clock.Add(time.Second)
	return clock
}
