package utils

import (
	"context"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterValidators installs the custom binding tags used by request structs.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "admin" || s == "user"
	}); err != nil {
		return err
	}
	// decimal.Decimal is a struct; compare it as a number for gt/gte style tags.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return nil
}

// ResourceExists reports whether a row of T with the given id exists.
func ResourceExists[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	count, err := ResourceCountWhere[T](ctx, db, "id = ?", id)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ValidateUnique fails with a conflict when column already holds value on
// another row. exceptId may be empty.
func ValidateUnique[T any](ctx context.Context, db *gorm.DB, column string, value interface{}, exceptId string, message string) error {
	var count int64
	var err error
	if exceptId == "" {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return ConflictError(message, nil)
	}
	return nil
}

func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
