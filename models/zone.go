package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/utils"
	"gorm.io/gorm"
)

type Zone struct {
	ID        string    `gorm:"type:char(36);primary_key" json:"id"`
	Name      string    `gorm:"size:191;not null;index" json:"name"`
	CreatedBy *string   `gorm:"type:char(36);index" json:"createdBy"`
	Creator   *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (z *Zone) BeforeCreate(tx *gorm.DB) error {
	newID(&z.ID)
	return nil
}

type NewZone struct {
	Name string `json:"name" binding:"required"`
}

type UpdateZoneInput struct {
	Name *string `json:"name"`
}

// CreateZone does not enforce unique names; zones are told apart by id.
func CreateZone(ctx context.Context, db *gorm.DB, creatorId string, input NewZone) (*Zone, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, utils.ValidationError("Zone name is required")
	}
	zone := Zone{Name: name, CreatedBy: utils.NilIfEmpty(creatorId)}
	if err := db.WithContext(ctx).Create(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func GetZone(ctx context.Context, db *gorm.DB, id string) (*Zone, error) {
	var zone Zone
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&zone).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, utils.NotFoundError("Zone not found")
		}
		return nil, err
	}
	return &zone, nil
}

// ListZones returns every zone for admins and only the assigned zones otherwise.
func ListZones(ctx context.Context, db *gorm.DB, p Principal) ([]Zone, error) {
	zones := make([]Zone, 0)
	query := db.WithContext(ctx).Model(&Zone{})
	if !p.IsAdmin() {
		query = query.Where("id IN (?)", db.Model(&UserZone{}).Select("zone_id").Where("user_id = ?", p.ID))
	}
	err := query.Order("name").Order("id").Find(&zones).Error
	return zones, err
}

func UpdateZone(ctx context.Context, db *gorm.DB, id string, input UpdateZoneInput) (*Zone, error) {
	zone, err := GetZone(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if input.Name == nil {
		return zone, nil
	}
	name := strings.TrimSpace(*input.Name)
	if name == "" {
		return nil, utils.ValidationError("Zone name is required")
	}
	if err := db.WithContext(ctx).Model(zone).Update("name", name).Error; err != nil {
		return nil, err
	}
	zone.Name = name
	return zone, nil
}

// DeleteZone removes the zone's assignments, then its expenses, then the zone,
// all in one transaction.
func DeleteZone(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var zone Zone
		if err := tx.Where("id = ?", id).Take(&zone).Error; err != nil {
			if utils.IsRecordNotFound(err) {
				return utils.NotFoundError("Zone not found")
			}
			return err
		}
		if err := tx.Where("zone_id = ?", id).Delete(&UserZone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("zone_id = ?", id).Delete(&Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(&zone).Error
	})
}
