package service

import (
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/rs/zerolog/log"
)

type AnnouncementService struct {
	*Service
	announcements *repository.AnnouncementDAO
	users         *models.UserDAO
}

func NewAnnouncementService(s *Service) *AnnouncementService {
	log.Debug().Msg("NewAnnouncementService")
	return &AnnouncementService{
		Service:       s,
		announcements: repository.NewAnnouncementDAO(s.DB),
		users:         models.NewUserDAO(s.DB),
	}
}

type CreateAnnouncementReq struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=news meeting retreat picnic"`
}

// AnnouncementDTO 公告返回结构，IsRead 针对当前查看者
type AnnouncementDTO struct {
	ID        uint64      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Type      string      `json:"type"`
	AuthorID  uint64      `json:"author_id"`
	Author    *ProfileDTO `json:"author,omitempty"`
	ReadCount uint64      `json:"read_count"`
	IsRead    bool        `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
}

func toAnnouncementDTO(a *models.Announcement, isRead bool) AnnouncementDTO {
	return AnnouncementDTO{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Type:      a.Type,
		AuthorID:  a.AuthorID,
		Author:    toProfile(&a.Author),
		ReadCount: a.ReadCount,
		IsRead:    isRead,
		CreatedAt: a.CreatedAt,
	}
}

// CreateAnnouncement 发布公告并广播（社区级事件 group_id=0）
func (s *AnnouncementService) CreateAnnouncement(actorID uint64, req CreateAnnouncementReq) (*AnnouncementDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Type == "" {
		req.Type = models.AnnouncementNews
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !models.ValidAnnouncementType(req.Type) {
		return nil, invalidArgument("unknown announcement type")
	}

	now := time.Now()
	a := &models.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		AuthorID:  actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.announcements.Create(a); err != nil {
		return nil, err
	}

	if s.Notify != nil {
		audience, err := s.users.AllIDs()
		if err != nil {
			log.Warn().Err(err).Msg("load announcement audience failed")
		}
		s.Notify.notifyBestEffort(0, actorID, cons.EventAnnouncementPublished, map[string]any{
			"announcement_id": a.ID,
			"title":           a.Title,
			"type":            a.Type,
			cons.PayloadURL:   cons.AnnouncementURL(a.ID),
		}, audience)
	}

	dto := toAnnouncementDTO(a, false)
	return &dto, nil
}

// ListAnnouncements 公告列表（created_at 倒序），附带作者信息与查看者已读状态
func (s *AnnouncementService) ListAnnouncements(viewerID uint64, typ string, limit, offset int) ([]AnnouncementDTO, error) {
	if typ != "" && !models.ValidAnnouncementType(typ) {
		return nil, invalidArgument("unknown announcement type")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	list, err := s.announcements.List(typ, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	read, err := s.announcements.ReadSet(viewerID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]AnnouncementDTO, len(list))
	for i := range list {
		out[i] = toAnnouncementDTO(&list[i], read[list[i].ID])
	}
	return out, nil
}

func (s *AnnouncementService) GetAnnouncement(viewerID, id uint64) (*AnnouncementDTO, error) {
	a, err := s.announcements.FindByID(id)
	if err != nil {
		return nil, notFound(err, "announcement")
	}
	read, err := s.announcements.ReadSet(viewerID, []uint64{a.ID})
	if err != nil {
		return nil, err
	}
	dto := toAnnouncementDTO(a, read[a.ID])
	return &dto, nil
}

// MarkRead 标记已读，幂等：只有首次写入已读记录时 read_count+1
func (s *AnnouncementService) MarkRead(viewerID, id uint64) error {
	if err := requireActor(viewerID); err != nil {
		return err
	}
	if _, err := s.announcements.FindByID(id); err != nil {
		return notFound(err, "announcement")
	}
	inserted, err := s.announcements.InsertRead(&models.AnnouncementRead{
		AnnouncementID: id,
		UserID:         viewerID,
		ReadAt:         time.Now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	return s.announcements.IncrReadCount(id)
}

// DeleteAnnouncement 仅作者可删除
func (s *AnnouncementService) DeleteAnnouncement(actorID, id uint64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	a, err := s.announcements.FindByID(id)
	if err != nil {
		return notFound(err, "announcement")
	}
	if a.AuthorID != actorID {
		return ErrPermissionDenied
	}
	return s.announcements.Delete(a.ID)
}
