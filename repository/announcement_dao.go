package repository

import (
	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnnouncementDAO 公告与已读记录
type AnnouncementDAO struct {
	db *gorm.DB
}

func NewAnnouncementDAO(db *gorm.DB) *AnnouncementDAO {
	return &AnnouncementDAO{db: db}
}

func (dao *AnnouncementDAO) WithDB(db *gorm.DB) *AnnouncementDAO {
	if db == nil {
		return dao
	}
	return &AnnouncementDAO{db: db}
}

func (dao *AnnouncementDAO) Create(a *models.Announcement) error {
	return dao.db.Create(a).Error
}

func (dao *AnnouncementDAO) FindByID(id uint64) (*models.Announcement, error) {
	var a models.Announcement
	if err := dao.db.Preload("Author").Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List 按创建时间倒序；typ 为空不过滤
func (dao *AnnouncementDAO) List(typ string, limit, offset int) ([]models.Announcement, error) {
	q := dao.db.Model(&models.Announcement{}).Preload("Author")
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	var list []models.Announcement
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// Delete 删除公告及其已读记录和评论，同一事务
func (dao *AnnouncementDAO) Delete(id uint64) error {
	return dao.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("announcement_id = ?", id).Delete(&models.AnnouncementRead{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_type = ? AND parent_id = ?", models.ParentAnnouncement, id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Announcement{}).Error
	})
}

// InsertRead 写入已读记录，已存在时忽略。返回是否新插入。
func (dao *AnnouncementDAO) InsertRead(r *models.AnnouncementRead) (bool, error) {
	res := dao.db.Clauses(clause.OnConflict{DoNothing: true}).Create(r)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (dao *AnnouncementDAO) IncrReadCount(id uint64) error {
	return dao.db.Model(&models.Announcement{}).
		Where("id = ?", id).
		UpdateColumn("read_count", gorm.Expr("read_count + ?", 1)).Error
}

// ReadSet 返回 ids 中 userID 已读的集合
func (dao *AnnouncementDAO) ReadSet(userID uint64, ids []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool)
	if userID == 0 || len(ids) == 0 {
		return set, nil
	}
	var readIDs []uint64
	err := dao.db.Model(&models.AnnouncementRead{}).
		Where("user_id = ? AND announcement_id IN ?", userID, ids).
		Pluck("announcement_id", &readIDs).Error
	if err != nil {
		return nil, err
	}
	for _, id := range readIDs {
		set[id] = true
	}
	return set, nil
}
