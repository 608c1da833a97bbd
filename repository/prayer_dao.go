package repository

import (
	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
)

type PrayerDAO struct {
	db *gorm.DB
}

func NewPrayerDAO(db *gorm.DB) *PrayerDAO {
	return &PrayerDAO{db: db}
}

func (dao *PrayerDAO) WithDB(db *gorm.DB) *PrayerDAO {
	if db == nil {
		return dao
	}
	return &PrayerDAO{db: db}
}

func (dao *PrayerDAO) Create(p *models.PrayerRequest) error {
	return dao.db.Create(p).Error
}

func (dao *PrayerDAO) FindByID(id uint64) (*models.PrayerRequest, error) {
	var p models.PrayerRequest
	if err := dao.db.Preload("User").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListVisible 查看者可见的代祷：公开 + 所在小组 + 自己的私密。
// groupID 非空时只看该小组范围内的（group 可见性）。
func (dao *PrayerDAO) ListVisible(viewerID uint64, viewerGroups []uint64, groupID *uint64, limit, offset int) ([]models.PrayerRequest, error) {
	q := dao.db.Model(&models.PrayerRequest{}).Preload("User")
	if groupID != nil {
		q = q.Where("visibility = ? AND group_id = ?", models.VisibilityGroup, *groupID)
	} else {
		cond := dao.db.Where("visibility = ?", models.VisibilityPublic).
			Or("user_id = ?", viewerID)
		if len(viewerGroups) > 0 {
			cond = cond.Or("visibility = ? AND group_id IN ?", models.VisibilityGroup, viewerGroups)
		}
		q = q.Where(cond)
	}
	var list []models.PrayerRequest
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (dao *PrayerDAO) UpdateFields(id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dao.db.Model(&models.PrayerRequest{}).Where("id = ?", id).Updates(updates).Error
}

func (dao *PrayerDAO) Delete(id uint64) error {
	return dao.db.Where("id = ?", id).Delete(&models.PrayerRequest{}).Error
}
