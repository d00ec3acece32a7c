package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Expense struct {
	ID          string          `gorm:"type:char(36);primary_key" json:"id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expenseDate"`
	UserId      string          `gorm:"type:char(36);not null;index" json:"userId"`
	CategoryId  string          `gorm:"type:char(36);not null;index" json:"categoryId"`
	ZoneId      string          `gorm:"type:char(36);not null;index" json:"zoneId"`
	ReceiptUrl  string          `gorm:"size:512" json:"receiptUrl"`
	User        *User           `gorm:"foreignKey:UserId;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	Category    *Category       `gorm:"foreignKey:CategoryId;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Zone        *Zone           `gorm:"foreignKey:ZoneId;constraint:OnDelete:RESTRICT" json:"zone,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	newID(&e.ID)
	return nil
}

type NewExpense struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	ExpenseDate *InputTime      `json:"expenseDate"`
	CategoryId  string          `json:"categoryId" binding:"required"`
	ZoneId      string          `json:"zoneId" binding:"required"`
}

// UpdateExpenseInput changes only the supplied fields.
type UpdateExpenseInput struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	ExpenseDate *InputTime       `json:"expenseDate"`
	CategoryId  *string          `json:"categoryId"`
	ZoneId      *string          `json:"zoneId"`
}

type ExpenseFilter struct {
	ZoneId     string `form:"zoneId"`
	CategoryId string `form:"categoryId"`
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return utils.ValidationError("Amount must be greater than zero")
	}
	return nil
}

func validateExpenseRefs(ctx context.Context, db *gorm.DB, categoryId, zoneId string) error {
	if categoryId != "" {
		ok, err := utils.ResourceExists[Category](ctx, db, categoryId)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NotFoundError("Category not found")
		}
	}
	if zoneId != "" {
		ok, err := utils.ResourceExists[Zone](ctx, db, zoneId)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NotFoundError("Zone not found")
		}
	}
	return nil
}

func CreateExpense(ctx context.Context, db *gorm.DB, userId string, input NewExpense) (*Expense, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.CategoryId == "" || input.ZoneId == "" {
		return nil, utils.ValidationError("categoryId and zoneId are required")
	}
	if err := validateExpenseRefs(ctx, db, input.CategoryId, input.ZoneId); err != nil {
		return nil, err
	}

	expenseDate := time.Now().UTC()
	if input.ExpenseDate != nil && !input.ExpenseDate.IsZero() {
		expenseDate = input.ExpenseDate.Time
	}
	expense := Expense{
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		ExpenseDate: expenseDate,
		UserId:      userId,
		CategoryId:  input.CategoryId,
		ZoneId:      input.ZoneId,
	}
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		if utils.IsForeignKeyViolation(err) {
			return nil, utils.NotFoundError("Category or zone not found")
		}
		return nil, err
	}
	return &expense, nil
}

func GetExpense(ctx context.Context, db *gorm.DB, id string) (*Expense, error) {
	var expense Expense
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&expense).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, utils.NotFoundError("Expense not found")
		}
		return nil, err
	}
	return &expense, nil
}

// ListMyExpenses returns the user's expenses newest first with category and zone.
func ListMyExpenses(ctx context.Context, db *gorm.DB, userId string, filter ExpenseFilter) ([]Expense, error) {
	expenses := make([]Expense, 0)
	query := db.WithContext(ctx).
		Preload("Category").
		Preload("Zone").
		Where("user_id = ?", userId)
	if filter.ZoneId != "" {
		query = query.Where("zone_id = ?", filter.ZoneId)
	}
	if filter.CategoryId != "" {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	err := query.Order("created_at DESC").Order("id").Find(&expenses).Error
	return expenses, err
}

// UpdateExpense applies the patch with a single statement scoped to the owner,
// so a concurrent ownership change cannot slip between check and write.
func UpdateExpense(ctx context.Context, db *gorm.DB, p Principal, id string, input UpdateExpenseInput) (*Expense, error) {
	updates := map[string]interface{}{}
	if input.Amount != nil {
		if err := validateAmount(*input.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *input.Amount
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	// A blank date leaves the stored one untouched.
	if input.ExpenseDate != nil && !input.ExpenseDate.IsZero() {
		updates["expense_date"] = input.ExpenseDate.Time
	}
	if input.CategoryId != nil {
		updates["category_id"] = *input.CategoryId
	}
	if input.ZoneId != nil {
		updates["zone_id"] = *input.ZoneId
	}
	if err := validateExpenseRefs(ctx, db, utils.DereferencePtr(input.CategoryId), utils.DereferencePtr(input.ZoneId)); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return OwnedExpense(ctx, db, p, id)
	}

	result := db.WithContext(ctx).Model(&Expense{}).Where("id = ? AND user_id = ?", id, p.ID).Updates(updates)
	if result.Error != nil {
		if utils.IsForeignKeyViolation(result.Error) {
			return nil, utils.NotFoundError("Category or zone not found")
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, missingOrForbidden(ctx, db, id)
	}
	return GetExpense(ctx, db, id)
}

// DeleteExpense is scoped to the owner; admins may delete any expense.
func DeleteExpense(ctx context.Context, db *gorm.DB, p Principal, id string) error {
	query := db.WithContext(ctx).Where("id = ?", id)
	if !p.IsAdmin() {
		query = query.Where("user_id = ?", p.ID)
	}
	result := query.Delete(&Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missingOrForbidden(ctx, db, id)
	}
	return nil
}

// SetReceiptUrl stores url on an expense owned by p (or any expense for admins)
// and returns the URL it replaced.
func SetReceiptUrl(ctx context.Context, db *gorm.DB, p Principal, id string, url string) (string, error) {
	expense, err := OwnedExpense(ctx, db, p, id)
	if err != nil {
		return "", err
	}
	query := db.WithContext(ctx).Model(&Expense{}).Where("id = ?", id)
	if !p.IsAdmin() {
		query = query.Where("user_id = ?", p.ID)
	}
	result := query.Update("receipt_url", url)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", missingOrForbidden(ctx, db, id)
	}
	return expense.ReceiptUrl, nil
}

// OwnedExpense loads an expense p may modify.
func OwnedExpense(ctx context.Context, db *gorm.DB, p Principal, id string) (*Expense, error) {
	expense, err := GetExpense(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if expense.UserId != p.ID && !p.IsAdmin() {
		return nil, utils.ForbiddenError("Not allowed to modify this expense")
	}
	return expense, nil
}

// missingOrForbidden explains why an owner-scoped write touched no rows.
func missingOrForbidden(ctx context.Context, db *gorm.DB, id string) error {
	ok, err := utils.ResourceExists[Expense](ctx, db, id)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFoundError("Expense not found")
	}
	return utils.ForbiddenError("Not allowed to modify this expense")
}
