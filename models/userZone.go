package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const toggleLockTTL = 5 * time.Second

type UserZone struct {
	UserId    string    `gorm:"type:char(36);primaryKey;autoIncrement:false" json:"userId"`
	ZoneId    string    `gorm:"type:char(36);primaryKey;autoIncrement:false;index" json:"zoneId"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	Zone      *Zone     `gorm:"foreignKey:ZoneId;constraint:OnDelete:RESTRICT" json:"zone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

type ToggleZoneInput struct {
	UserId string `json:"userId" binding:"required"`
	ZoneId string `json:"zoneId" binding:"required"`
}

type ToggleResult string

const (
	ZoneAssigned ToggleResult = "Zone assigned to user"
	ZoneRemoved  ToggleResult = "Zone removed from user"
)

// ToggleUserZone removes the (user, zone) assignment when present and creates
// it otherwise. The read and the write share a transaction; when Redis is
// configured a per-pair lock also serialises concurrent toggles, and the
// composite primary key rejects a duplicate insert either way.
func ToggleUserZone(ctx context.Context, db *gorm.DB, rdb *config.Redis, logger *logrus.Logger, input ToggleZoneInput) (ToggleResult, error) {
	if input.UserId == "" || input.ZoneId == "" {
		return "", utils.ValidationError("userId and zoneId are required")
	}

	lock, err := rdb.Obtain(ctx, fmt.Sprintf("lock:userzone:%s:%s", input.UserId, input.ZoneId), toggleLockTTL)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"field":   "ToggleUserZone",
			"user_id": input.UserId,
			"zone_id": input.ZoneId,
		}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
	}
	if lock != nil {
		defer func() {
			if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
				logger.WithFields(logrus.Fields{"field": "ToggleUserZone"}).Warn("failed to release redis lock: " + releaseErr.Error())
			}
		}()
	}

	var result ToggleResult
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ok, err := utils.ResourceExists[User](ctx, tx, input.UserId); err != nil {
			return err
		} else if !ok {
			return utils.NotFoundError("User not found")
		}
		if ok, err := utils.ResourceExists[Zone](ctx, tx, input.ZoneId); err != nil {
			return err
		} else if !ok {
			return utils.NotFoundError("Zone not found")
		}

		del := tx.Where("user_id = ? AND zone_id = ?", input.UserId, input.ZoneId).Delete(&UserZone{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			result = ZoneRemoved
			return nil
		}
		if err := tx.Create(&UserZone{UserId: input.UserId, ZoneId: input.ZoneId}).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.ConflictError("Zone assignment changed concurrently, retry", err)
			}
			return err
		}
		result = ZoneAssigned
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// ListMyZones returns the caller's assignments with the zone loaded.
func ListMyZones(ctx context.Context, db *gorm.DB, userId string) ([]UserZone, error) {
	rows := make([]UserZone, 0)
	err := db.WithContext(ctx).
		Preload("Zone").
		Where("user_id = ?", userId).
		Order("created_at").
		Find(&rows).Error
	return rows, err
}

func ListUserZoneIds(ctx context.Context, db *gorm.DB, userId string) ([]string, error) {
	if _, err := GetUser(ctx, db, userId); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err := db.WithContext(ctx).Model(&UserZone{}).Where("user_id = ?", userId).Order("zone_id").Pluck("zone_id", &ids).Error
	return ids, err
}
