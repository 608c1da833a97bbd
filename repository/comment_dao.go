package repository

import (
	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
)

type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{db: db}
}

func (dao *CommentDAO) WithDB(db *gorm.DB) *CommentDAO {
	if db == nil {
		return dao
	}
	return &CommentDAO{db: db}
}

func (dao *CommentDAO) Create(c *models.Comment) error {
	return dao.db.Create(c).Error
}

func (dao *CommentDAO) FindByID(id uint64) (*models.Comment, error) {
	var c models.Comment
	if err := dao.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByParent 按时间正序
func (dao *CommentDAO) ListByParent(parentType string, parentID uint64, limit, offset int) ([]models.Comment, error) {
	var list []models.Comment
	err := dao.db.Model(&models.Comment{}).
		Preload("User").
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (dao *CommentDAO) Delete(id uint64) error {
	return dao.db.Where("id = ?", id).Delete(&models.Comment{}).Error
}
