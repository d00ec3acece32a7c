package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnknownCreator is shown when a record has no named creator.
const UnknownCreator = "—"

type Category struct {
	ID          string    `gorm:"type:char(36);primary_key" json:"id"`
	Name        string    `gorm:"size:191;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   *string   `gorm:"type:char(36);index" json:"createdBy"`
	Creator     *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

type NewCategory struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CategorySummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

func CreateCategory(ctx context.Context, db *gorm.DB, creatorId string, input NewCategory) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, utils.ValidationError("Category name is required")
	}
	if err := utils.ValidateUnique[Category](ctx, db, "name", name, "", "Category already exists"); err != nil {
		return nil, err
	}
	category := Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   utils.NilIfEmpty(creatorId),
	}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.ConflictError("Category already exists", err)
		}
		return nil, err
	}
	return &category, nil
}

func GetCategory(ctx context.Context, db *gorm.DB, id string) (*Category, error) {
	var category Category
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&category).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, utils.NotFoundError("Category not found")
		}
		return nil, err
	}
	return &category, nil
}

func ListCategories(ctx context.Context, db *gorm.DB) ([]Category, error) {
	categories := make([]Category, 0)
	err := db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&categories).Error
	return categories, err
}

func UpdateCategory(ctx context.Context, db *gorm.DB, id string, input UpdateCategoryInput) (*Category, error) {
	category, err := GetCategory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, utils.ValidationError("Category name is required")
		}
		if err := utils.ValidateUnique[Category](ctx, db, "name", name, id, "Category already exists"); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if len(updates) == 0 {
		return category, nil
	}
	if err := db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.ConflictError("Category already exists", err)
		}
		return nil, err
	}
	return GetCategory(ctx, db, id)
}

// DeleteCategory refuses categories that still have expenses.
func DeleteCategory(ctx context.Context, db *gorm.DB, id string) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		if utils.IsForeignKeyViolation(result.Error) {
			return utils.ConflictError("Category has expenses and cannot be deleted", result.Error)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.NotFoundError("Category not found")
	}
	return nil
}

// ListCategorySummaries returns every category with its creator and expense total.
func ListCategorySummaries(ctx context.Context, db *gorm.DB) ([]CategorySummary, error) {
	rows := make([]CategorySummary, 0)
	err := db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.name,
			COALESCE(NULLIF(u.name, ''), ?) AS created_by,
			c.created_at,
			COALESCE(t.total, 0) AS total_expense
		FROM categories AS c
		LEFT JOIN users AS u ON u.id = c.created_by
		LEFT JOIN (
			SELECT category_id, SUM(amount) AS total
			FROM expenses
			GROUP BY category_id
		) AS t ON t.category_id = c.id
		ORDER BY c.created_at DESC, c.id
	`, UnknownCreator).Scan(&rows).Error
	return rows, err
}
