package service

import (
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/rs/zerolog/log"
)

// CommentService 公告/代祷评论
type CommentService struct {
	*Service
	comments      *repository.CommentDAO
	announcements *repository.AnnouncementDAO
	prayers       *repository.PrayerDAO
	prayerSvc     *PrayerService
}

func NewCommentService(s *Service, prayerSvc *PrayerService) *CommentService {
	log.Debug().Msg("NewCommentService")
	return &CommentService{
		Service:       s,
		comments:      repository.NewCommentDAO(s.DB),
		announcements: repository.NewAnnouncementDAO(s.DB),
		prayers:       repository.NewPrayerDAO(s.DB),
		prayerSvc:     prayerSvc,
	}
}

type CommentDTO struct {
	ID         uint64      `json:"id"`
	ParentType string      `json:"parent_type"`
	ParentID   uint64      `json:"parent_id"`
	UserID     uint64      `json:"user_id"`
	Content    string      `json:"content"`
	Author     *ProfileDTO `json:"author,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toCommentDTO(c *models.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		ParentType: c.ParentType,
		ParentID:   c.ParentID,
		UserID:     c.UserID,
		Content:    c.Content,
		Author:     toProfile(&c.User),
		CreatedAt:  c.CreatedAt,
	}
}

// parentOwner 校验挂载对象存在且查看者可见，返回其作者 id 与跳转 url
func (s *CommentService) parentOwner(viewerID uint64, parentType string, parentID uint64) (uint64, string, error) {
	switch parentType {
	case models.ParentAnnouncement:
		a, err := s.announcements.FindByID(parentID)
		if err != nil {
			return 0, "", notFound(err, "announcement")
		}
		return a.AuthorID, cons.AnnouncementURL(a.ID), nil
	case models.ParentPrayer:
		p, err := s.prayers.FindByID(parentID)
		if err != nil {
			return 0, "", notFound(err, "prayer request")
		}
		ok, err := s.prayerSvc.CanView(viewerID, p)
		if err != nil {
			return 0, "", err
		}
		if !ok {
			return 0, "", ErrPermissionDenied
		}
		return p.UserID, cons.PrayerURL(p.ID), nil
	}
	return 0, "", invalidArgument("unknown parent type")
}

// AddComment 发表评论并通知被评论内容的作者
func (s *CommentService) AddComment(actorID uint64, parentType string, parentID uint64, content string) (*CommentDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidArgument("content is required")
	}
	ownerID, url, err := s.parentOwner(actorID, parentType, parentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.Comment{
		ParentType: parentType,
		ParentID:   parentID,
		UserID:     actorID,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.Create(c); err != nil {
		return nil, err
	}

	s.Notify.notifyBestEffort(0, actorID, cons.EventCommentAdded, map[string]any{
		"comment_id":    c.ID,
		"parent_type":   parentType,
		"parent_id":     parentID,
		cons.PayloadURL: url,
	}, []uint64{ownerID})

	dto := toCommentDTO(c)
	return &dto, nil
}

// ListComments 评论列表（时间正序）
func (s *CommentService) ListComments(viewerID uint64, parentType string, parentID uint64, limit, offset int) ([]CommentDTO, error) {
	if _, _, err := s.parentOwner(viewerID, parentType, parentID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	list, err := s.comments.ListByParent(parentType, parentID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]CommentDTO, len(list))
	for i := range list {
		out[i] = toCommentDTO(&list[i])
	}
	return out, nil
}

// DeleteComment 仅作者可删除
func (s *CommentService) DeleteComment(actorID, id uint64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	c, err := s.comments.FindByID(id)
	if err != nil {
		return notFound(err, "comment")
	}
	if c.UserID != actorID {
		return ErrPermissionDenied
	}
	return s.comments.Delete(c.ID)
}
