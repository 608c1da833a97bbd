package service

import (
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/rs/zerolog/log"
)

type MeetingService struct {
	*Service
	meetings *repository.MeetingDAO
	groups   *repository.GroupDAO
}

func NewMeetingService(s *Service) *MeetingService {
	log.Debug().Msg("NewMeetingService")
	return &MeetingService{
		Service:  s,
		meetings: repository.NewMeetingDAO(s.DB),
		groups:   repository.NewGroupDAO(s.DB),
	}
}

type CreateMeetingReq struct {
	GroupID         uint64    `json:"group_id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=200"`
	MeetingTime     time.Time `json:"meeting_time" validate:"required"`
	Type            string    `json:"type" validate:"omitempty,oneof=mokjang general"`
	IsVolunteerOpen bool      `json:"is_volunteer_open"`
	Location        string    `json:"location" validate:"max=255"`
	Memo            string    `json:"memo"`
}

type UpdateMeetingReq struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	MeetingTime *time.Time `json:"meeting_time"`
	Memo        *string    `json:"memo"`
}

// MeetingDTO 聚会返回结构
type MeetingDTO struct {
	ID          uint64      `json:"id"`
	GroupID     uint64      `json:"group_id"`
	Title       string      `json:"title"`
	MeetingTime time.Time   `json:"meeting_time"`
	Type        string      `json:"type"`
	HostID      *uint64     `json:"host_id"`
	Location    *string     `json:"location"`
	Memo        *string     `json:"memo,omitempty"`
	CreatedBy   uint64      `json:"created_by"`
	Host        *ProfileDTO `json:"host,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toMeetingDTO(m *models.Meeting) MeetingDTO {
	return MeetingDTO{
		ID:          m.ID,
		GroupID:     m.GroupID,
		Title:       m.Title,
		MeetingTime: m.MeetingTime,
		Type:        m.Type,
		HostID:      m.HostID,
		Location:    m.Location,
		Memo:        m.Memo,
		CreatedBy:   m.CreatedBy,
		Host:        toProfile(m.Host),
		CreatedAt:   m.CreatedAt,
	}
}

// CreateMeeting 新建聚会
//   - IsVolunteerOpen=true：host 与 location 均留空，等待成员认领
//   - IsVolunteerOpen=false：location 必填，插入后再单独写入 host=组长
//
// 第二步写入失败时聚会记录保留（无 host），不回滚。
func (s *MeetingService) CreateMeeting(actorID uint64, req CreateMeetingReq) (*MeetingDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = models.MeetingTypeMokjang
	}
	if !req.IsVolunteerOpen && req.Location == "" {
		return nil, invalidArgument("location is required when the meeting is not open for volunteers")
	}

	g, err := s.groups.FindByID(req.GroupID)
	if err != nil {
		return nil, notFound(err, "group")
	}
	ok, err := s.groups.IsMember(g.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}

	now := time.Now()
	m := &models.Meeting{
		GroupID:     g.ID,
		Title:       req.Title,
		MeetingTime: req.MeetingTime,
		Type:        req.Type,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if memo := strings.TrimSpace(req.Memo); memo != "" {
		m.Memo = &memo
	}
	if !req.IsVolunteerOpen {
		loc := req.Location
		m.Location = &loc
	}
	if err := s.meetings.Create(m); err != nil {
		return nil, err
	}

	if !req.IsVolunteerOpen {
		if err := s.meetings.SetHost(m.ID, g.LeaderID, nil, now); err != nil {
			log.Error().Err(err).Uint64("meeting_id", m.ID).Msg("meeting created but host assignment failed")
			return nil, err
		}
		leaderID := g.LeaderID
		m.HostID = &leaderID
		m.Host = &g.Leader
	}

	members, _ := s.groups.MemberIDs(g.ID)
	s.Notify.notifyBestEffort(g.ID, actorID, cons.EventMeetingCreated, map[string]any{
		"meeting_id":     m.ID,
		"title":          m.Title,
		cons.PayloadURL:  cons.MeetingURL(g.ID, m.ID),
		"volunteer_open": req.IsVolunteerOpen,
	}, members)

	dto := toMeetingDTO(m)
	return &dto, nil
}

// Volunteer 认领做东：写入 host 与 location。
// 已有人做东时直接覆盖（后写者生效），没有“取消认领”。
func (s *MeetingService) Volunteer(actorID, meetingID uint64, location string) (*MeetingDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, invalidArgument("location is required")
	}
	if len(location) > 255 {
		return nil, invalidArgument("location too long")
	}
	m, err := s.meetings.FindByID(meetingID)
	if err != nil {
		return nil, notFound(err, "meeting")
	}
	ok, err := s.groups.IsMember(m.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}

	now := time.Now()
	if err := s.meetings.SetHost(m.ID, actorID, &location, now); err != nil {
		return nil, err
	}
	m.HostID = &actorID
	m.Location = &location
	m.UpdatedAt = now

	members, _ := s.groups.MemberIDs(m.GroupID)
	s.Notify.notifyBestEffort(m.GroupID, actorID, cons.EventMeetingHostVolunteer, map[string]any{
		"meeting_id":    m.ID,
		"location":      location,
		cons.PayloadURL: cons.MeetingURL(m.GroupID, m.ID),
	}, members)

	dto := toMeetingDTO(m)
	return &dto, nil
}

// ListMeetings 日历视图：from <= meeting_time < to，按时间升序。
// 仅小组成员可查看。
func (s *MeetingService) ListMeetings(viewerID, groupID uint64, from, to time.Time) ([]MeetingDTO, error) {
	if err := requireActor(viewerID); err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return []MeetingDTO{}, nil
	}
	ok, err := s.groups.IsMember(groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	list, err := s.meetings.ListByRange(groupID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]MeetingDTO, len(list))
	for i := range list {
		out[i] = toMeetingDTO(&list[i])
	}
	return out, nil
}

// ListUnhosted 待认领聚会
func (s *MeetingService) ListUnhosted(viewerID, groupID uint64, from time.Time) ([]MeetingDTO, error) {
	if err := requireActor(viewerID); err != nil {
		return nil, err
	}
	ok, err := s.groups.IsMember(groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}
	list, err := s.meetings.ListUnhosted(groupID, from)
	if err != nil {
		return nil, err
	}
	out := make([]MeetingDTO, len(list))
	for i := range list {
		out[i] = toMeetingDTO(&list[i])
	}
	return out, nil
}

// UpdateMeeting 组长或做东人可修改标题、时间、备注
func (s *MeetingService) UpdateMeeting(actorID, meetingID uint64, req UpdateMeetingReq) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	m, err := s.meetings.FindByID(meetingID)
	if err != nil {
		return notFound(err, "meeting")
	}
	g, err := s.groups.FindByID(m.GroupID)
	if err != nil {
		return notFound(err, "group")
	}
	isHost := m.HostID != nil && *m.HostID == actorID
	if g.LeaderID != actorID && !isHost {
		return ErrPermissionDenied
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return invalidArgument("title cannot be empty")
		}
		updates["title"] = title
	}
	if req.MeetingTime != nil {
		if req.MeetingTime.IsZero() {
			return invalidArgument("meeting_time cannot be empty")
		}
		updates["meeting_time"] = *req.MeetingTime
	}
	if req.Memo != nil {
		memo := strings.TrimSpace(*req.Memo)
		if memo == "" {
			updates["memo"] = nil
		} else {
			updates["memo"] = memo
		}
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	if err := s.meetings.UpdateFields(m.ID, updates); err != nil {
		return err
	}

	members, _ := s.groups.MemberIDs(m.GroupID)
	s.Notify.notifyBestEffort(m.GroupID, actorID, cons.EventMeetingUpdated, map[string]any{
		"meeting_id":    m.ID,
		cons.PayloadURL: cons.MeetingURL(m.GroupID, m.ID),
	}, members)
	return nil
}

// DeleteMeeting 删除聚会（仅组长）
func (s *MeetingService) DeleteMeeting(actorID, meetingID uint64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	m, err := s.meetings.FindByID(meetingID)
	if err != nil {
		return notFound(err, "meeting")
	}
	g, err := s.groups.FindByID(m.GroupID)
	if err != nil {
		return notFound(err, "group")
	}
	if g.LeaderID != actorID {
		return ErrPermissionDenied
	}
	return s.meetings.Delete(m.ID)
}
