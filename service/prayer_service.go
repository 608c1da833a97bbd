package service

import (
	"slices"
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/rs/zerolog/log"
)

type PrayerService struct {
	*Service
	prayers *repository.PrayerDAO
	groups  *repository.GroupDAO
}

func NewPrayerService(s *Service) *PrayerService {
	log.Debug().Msg("NewPrayerService")
	return &PrayerService{
		Service: s,
		prayers: repository.NewPrayerDAO(s.DB),
		groups:  repository.NewGroupDAO(s.DB),
	}
}

type CreatePrayerReq struct {
	Content    string  `json:"content" validate:"required"`
	Visibility string  `json:"visibility" validate:"omitempty,oneof=public group private"`
	GroupID    *uint64 `json:"group_id"`
}

type PrayerDTO struct {
	ID         uint64      `json:"id"`
	UserID     uint64      `json:"user_id"`
	Content    string      `json:"content"`
	Visibility string      `json:"visibility"`
	GroupID    *uint64     `json:"group_id,omitempty"`
	IsAnswered bool        `json:"is_answered"`
	AnsweredAt *time.Time  `json:"answered_at,omitempty"`
	Author     *ProfileDTO `json:"author,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toPrayerDTO(p *models.PrayerRequest) PrayerDTO {
	return PrayerDTO{
		ID:         p.ID,
		UserID:     p.UserID,
		Content:    p.Content,
		Visibility: p.Visibility,
		GroupID:    p.GroupID,
		IsAnswered: p.IsAnswered,
		AnsweredAt: p.AnsweredAt,
		Author:     toProfile(&p.User),
		CreatedAt:  p.CreatedAt,
	}
}

// CreatePrayer 新建代祷；group 可见性必须指定自己所在的小组
func (s *PrayerService) CreatePrayer(actorID uint64, req CreatePrayerReq) (*PrayerDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !models.ValidVisibility(req.Visibility) {
		return nil, invalidArgument("unknown visibility")
	}

	var groupID *uint64
	if req.Visibility == models.VisibilityGroup {
		if req.GroupID == nil || *req.GroupID == 0 {
			return nil, invalidArgument("group_id is required for group visibility")
		}
		ok, err := s.groups.IsMember(*req.GroupID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPermissionDenied
		}
		gid := *req.GroupID
		groupID = &gid
	}

	now := time.Now()
	p := &models.PrayerRequest{
		UserID:     actorID,
		Content:    req.Content,
		Visibility: req.Visibility,
		GroupID:    groupID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.prayers.Create(p); err != nil {
		return nil, err
	}
	dto := toPrayerDTO(p)
	return &dto, nil
}

// ListPrayers 代祷列表（created_at 倒序）
func (s *PrayerService) ListPrayers(viewerID uint64, groupID *uint64, limit, offset int) ([]PrayerDTO, error) {
	if err := requireActor(viewerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	myGroups, err := s.groups.GroupIDsOfUser(viewerID)
	if err != nil {
		return nil, err
	}
	if groupID != nil && !slices.Contains(myGroups, *groupID) {
		return nil, ErrPermissionDenied
	}
	list, err := s.prayers.ListVisible(viewerID, myGroups, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]PrayerDTO, len(list))
	for i := range list {
		out[i] = toPrayerDTO(&list[i])
	}
	return out, nil
}

// CanView 查看者能否看到这条代祷
func (s *PrayerService) CanView(viewerID uint64, p *models.PrayerRequest) (bool, error) {
	switch p.Visibility {
	case models.VisibilityPublic:
		return true, nil
	case models.VisibilityPrivate:
		return p.UserID == viewerID, nil
	case models.VisibilityGroup:
		if p.UserID == viewerID {
			return true, nil
		}
		if p.GroupID == nil {
			return false, nil
		}
		return s.groups.IsMember(*p.GroupID, viewerID)
	}
	return false, nil
}

// SetAnswered 标记/取消“蒙应允”（仅本人）
func (s *PrayerService) SetAnswered(actorID, id uint64, answered bool) (*PrayerDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	p, err := s.prayers.FindByID(id)
	if err != nil {
		return nil, notFound(err, "prayer request")
	}
	if p.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	if p.IsAnswered == answered {
		dto := toPrayerDTO(p)
		return &dto, nil
	}

	now := time.Now()
	updates := map[string]any{"is_answered": answered, "updated_at": now}
	if answered {
		updates["answered_at"] = now
		p.AnsweredAt = &now
	} else {
		updates["answered_at"] = nil
		p.AnsweredAt = nil
	}
	if err := s.prayers.UpdateFields(p.ID, updates); err != nil {
		return nil, err
	}
	p.IsAnswered = answered

	if answered && p.Visibility == models.VisibilityGroup && p.GroupID != nil {
		members, _ := s.groups.MemberIDs(*p.GroupID)
		s.Notify.notifyBestEffort(*p.GroupID, actorID, cons.EventPrayerAnswered, map[string]any{
			"prayer_id":     p.ID,
			cons.PayloadURL: cons.PrayerURL(p.ID),
		}, members)
	}

	dto := toPrayerDTO(p)
	return &dto, nil
}

// DeletePrayer 仅本人
func (s *PrayerService) DeletePrayer(actorID, id uint64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	p, err := s.prayers.FindByID(id)
	if err != nil {
		return notFound(err, "prayer request")
	}
	if p.UserID != actorID {
		return ErrPermissionDenied
	}
	return s.prayers.Delete(p.ID)
}
