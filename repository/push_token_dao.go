package repository

import (
	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushTokenDAO struct {
	db *gorm.DB
}

func NewPushTokenDAO(db *gorm.DB) *PushTokenDAO {
	return &PushTokenDAO{db: db}
}

// Upsert 以 (user_id, token) 为键，冲突时更新 device_type / updated_at
func (dao *PushTokenDAO) Upsert(t *models.PushToken) error {
	return dao.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"device_type", "updated_at"}),
	}).Create(t).Error
}

func (dao *PushTokenDAO) Delete(userID uint64, token string) (int64, error) {
	res := dao.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.PushToken{})
	return res.RowsAffected, res.Error
}

func (dao *PushTokenDAO) ListByUsers(userIDs []uint64) ([]models.PushToken, error) {
	var list []models.PushToken
	if len(userIDs) == 0 {
		return list, nil
	}
	err := dao.db.Where("user_id IN ?", userIDs).Order("user_id ASC").Order("id ASC").Find(&list).Error
	return list, err
}
