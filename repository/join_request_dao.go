package repository

import (
	"time"

	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
)

// JoinRequestDAO 入组申请
type JoinRequestDAO struct {
	db *gorm.DB
}

func NewJoinRequestDAO(db *gorm.DB) *JoinRequestDAO {
	return &JoinRequestDAO{db: db}
}

func (dao *JoinRequestDAO) WithDB(db *gorm.DB) *JoinRequestDAO {
	if db == nil {
		return dao
	}
	return &JoinRequestDAO{db: db}
}

func (dao *JoinRequestDAO) Create(r *models.GroupJoinRequest) error {
	return dao.db.Create(r).Error
}

func (dao *JoinRequestDAO) FindByID(id uint64) (*models.GroupJoinRequest, error) {
	var r models.GroupJoinRequest
	if err := dao.db.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// HasPending 是否存在未处理的申请
func (dao *JoinRequestDAO) HasPending(groupID, userID uint64) (bool, error) {
	var count int64
	err := dao.db.Model(&models.GroupJoinRequest{}).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, models.JoinStatusPending).
		Count(&count).Error
	return count > 0, err
}

// Transition 条件更新：仅 pending 状态可被处理。返回受影响行数。
func (dao *JoinRequestDAO) Transition(id uint64, status string, now time.Time) (int64, error) {
	res := dao.db.Model(&models.GroupJoinRequest{}).
		Where("id = ? AND status = ?", id, models.JoinStatusPending).
		Updates(map[string]any{
			"status":       status,
			"processed_at": now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

func (dao *JoinRequestDAO) ListPending(groupID uint64) ([]models.GroupJoinRequest, error) {
	var list []models.GroupJoinRequest
	err := dao.db.Model(&models.GroupJoinRequest{}).
		Preload("User").
		Where("group_id = ? AND status = ?", groupID, models.JoinStatusPending).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
