package repository

import (
	"time"

	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
)

// MeetingDAO 封装 Meeting 相关的数据库操作
//
// 约定：
// - 只做“数据访问”（CRUD/查询封装），不做业务编排（权限、通知等）。
// - 事务边界应由 service 控制；如需在事务中执行，请使用 WithDB(tx)。
type MeetingDAO struct {
	db *gorm.DB
}

func NewMeetingDAO(db *gorm.DB) *MeetingDAO {
	return &MeetingDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *MeetingDAO) WithDB(db *gorm.DB) *MeetingDAO {
	if db == nil {
		return dao
	}
	return &MeetingDAO{db: db}
}

func (dao *MeetingDAO) Create(m *models.Meeting) error {
	return dao.db.Create(m).Error
}

func (dao *MeetingDAO) FindByID(id uint64) (*models.Meeting, error) {
	var m models.Meeting
	if err := dao.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByRange 日历区间查询：from <= meeting_time < to。to 为零值时不设上限。
func (dao *MeetingDAO) ListByRange(groupID uint64, from, to time.Time) ([]models.Meeting, error) {
	q := dao.db.Model(&models.Meeting{}).
		Preload("Host").
		Where("group_id = ?", groupID)
	if !from.IsZero() {
		q = q.Where("meeting_time >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("meeting_time < ?", to)
	}
	var list []models.Meeting
	err := q.Order("meeting_time ASC").Find(&list).Error
	return list, err
}

// ListUnhosted 待认领的聚会（host_id IS NULL）
func (dao *MeetingDAO) ListUnhosted(groupID uint64, from time.Time) ([]models.Meeting, error) {
	var list []models.Meeting
	err := dao.db.Model(&models.Meeting{}).
		Where("group_id = ? AND host_id IS NULL AND meeting_time >= ?", groupID, from).
		Order("meeting_time ASC").
		Find(&list).Error
	return list, err
}

// SetHost 写入做东人；location 为 nil 时不修改地点。
// 不做 host_id IS NULL 条件判断，后写覆盖先写。
func (dao *MeetingDAO) SetHost(id, hostID uint64, location *string, now time.Time) error {
	updates := map[string]any{"host_id": hostID, "updated_at": now}
	if location != nil {
		updates["location"] = *location
	}
	return dao.db.Model(&models.Meeting{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (dao *MeetingDAO) UpdateFields(id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dao.db.Model(&models.Meeting{}).Where("id = ?", id).Updates(updates).Error
}

func (dao *MeetingDAO) Delete(id uint64) error {
	return dao.db.Where("id = ?", id).Delete(&models.Meeting{}).Error
}
