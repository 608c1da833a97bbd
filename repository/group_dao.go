package repository

import (
	"github.com/cydxin/mokjang-sdk/models"
	"gorm.io/gorm"
)

// GroupDAO 封装 Group / GroupMember 的数据库操作
type GroupDAO struct {
	db *gorm.DB
}

func NewGroupDAO(db *gorm.DB) *GroupDAO {
	return &GroupDAO{db: db}
}

func (dao *GroupDAO) WithDB(db *gorm.DB) *GroupDAO {
	if db == nil {
		return dao
	}
	return &GroupDAO{db: db}
}

func (dao *GroupDAO) Create(g *models.Group) error {
	return dao.db.Create(g).Error
}

func (dao *GroupDAO) FindByID(id uint64) (*models.Group, error) {
	var g models.Group
	if err := dao.db.Preload("Leader").Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (dao *GroupDAO) FindByAccount(account string) (*models.Group, error) {
	var g models.Group
	if err := dao.db.Where("group_account = ?", account).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// List 按地区过滤（region 为空不过滤）
func (dao *GroupDAO) List(region string, limit, offset int) ([]models.Group, error) {
	q := dao.db.Model(&models.Group{}).Preload("Leader")
	if region != "" {
		q = q.Where("region = ?", region)
	}
	var list []models.Group
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (dao *GroupDAO) ListByIDs(ids []uint64) ([]models.Group, error) {
	var list []models.Group
	if len(ids) == 0 {
		return list, nil
	}
	err := dao.db.Preload("Leader").Where("id IN ?", ids).Order("name ASC").Find(&list).Error
	return list, err
}

func (dao *GroupDAO) UpdateFields(id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dao.db.Model(&models.Group{}).Where("id = ?", id).Updates(updates).Error
}

func (dao *GroupDAO) AddMember(m *models.GroupMember) error {
	return dao.db.Create(m).Error
}

func (dao *GroupDAO) RemoveMember(groupID, userID uint64) error {
	return dao.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

// IsMember 是否为小组成员
func (dao *GroupDAO) IsMember(groupID, userID uint64) (bool, error) {
	var count int64
	err := dao.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberIDs 小组全部成员 user_id
func (dao *GroupDAO) MemberIDs(groupID uint64) ([]uint64, error) {
	var ids []uint64
	err := dao.db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// GroupIDsOfUser 用户加入的全部小组
func (dao *GroupDAO) GroupIDsOfUser(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := dao.db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (dao *GroupDAO) ListMembers(groupID uint64) ([]models.GroupMember, error) {
	var list []models.GroupMember
	err := dao.db.Model(&models.GroupMember{}).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("role DESC").Order("joined_at ASC").
		Find(&list).Error
	return list, err
}
