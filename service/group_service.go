package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type GroupService struct {
	*Service
	groups   *repository.GroupDAO
	requests *repository.JoinRequestDAO
}

func NewGroupService(s *Service) *GroupService {
	log.Debug().Msg("NewGroupService")
	return &GroupService{
		Service:  s,
		groups:   repository.NewGroupDAO(s.DB),
		requests: repository.NewJoinRequestDAO(s.DB),
	}
}

type CreateGroupReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	MeetingTime string `json:"meeting_time" validate:"max=100"`
	Region      string `json:"region" validate:"max=100"`
}

type UpdateGroupReq struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	MeetingTime *string `json:"meeting_time" validate:"omitempty,max=100"`
	Region      *string `json:"region" validate:"omitempty,max=100"`
}

// GroupDTO 小组返回结构
type GroupDTO struct {
	ID           uint64      `json:"id"`
	GroupAccount string      `json:"group_account"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	MeetingTime  string      `json:"meeting_time"`
	Region       string      `json:"region"`
	LeaderID     uint64      `json:"leader_id"`
	Leader       *ProfileDTO `json:"leader,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

type MemberDTO struct {
	UserID   uint64      `json:"user_id"`
	Role     uint8       `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	Profile  *ProfileDTO `json:"profile,omitempty"`
}

type JoinRequestDTO struct {
	ID          uint64      `json:"id"`
	UserID      uint64      `json:"user_id"`
	GroupID     uint64      `json:"group_id"`
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	CreatedAt   time.Time   `json:"created_at"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
	Requester   *ProfileDTO `json:"requester,omitempty"`
}

func toGroupDTO(g *models.Group) GroupDTO {
	return GroupDTO{
		ID:           g.ID,
		GroupAccount: g.GroupAccount,
		Name:         g.Name,
		Description:  g.Description,
		MeetingTime:  g.MeetingTime,
		Region:       g.Region,
		LeaderID:     g.LeaderID,
		Leader:       toProfile(&g.Leader),
		CreatedAt:    g.CreatedAt,
	}
}

func toJoinRequestDTO(r *models.GroupJoinRequest) JoinRequestDTO {
	return JoinRequestDTO{
		ID:          r.ID,
		UserID:      r.UserID,
		GroupID:     r.GroupID,
		Status:      r.Status,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt,
		ProcessedAt: r.ProcessedAt,
		Requester:   toProfile(&r.User),
	}
}

// CreateGroup 创建小组，创建者即组长。
// 小组与组长成员关系是两次独立写入：第二步失败时小组已存在，不做补偿。
func (s *GroupService) CreateGroup(actorID uint64, req CreateGroupReq) (*GroupDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	g := &models.Group{
		GroupAccount: fmt.Sprintf("mj_%s", uuid.New().String()[:8]),
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		MeetingTime:  strings.TrimSpace(req.MeetingTime),
		Region:       strings.TrimSpace(req.Region),
		LeaderID:     actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.groups.Create(g); err != nil {
		return nil, err
	}

	leader := &models.GroupMember{
		GroupID:   g.ID,
		UserID:    actorID,
		Role:      models.RoleLeader,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.groups.AddMember(leader); err != nil {
		log.Error().Err(err).Uint64("group_id", g.ID).Msg("group created but leader membership failed")
		return nil, fmt.Errorf("add leader membership for group %d: %w", g.ID, err)
	}

	dto := toGroupDTO(g)
	return &dto, nil
}

// GetGroup 小组详情
func (s *GroupService) GetGroup(groupID uint64) (*GroupDTO, error) {
	g, err := s.groups.FindByID(groupID)
	if err != nil {
		return nil, notFound(err, "group")
	}
	dto := toGroupDTO(g)
	return &dto, nil
}

// ListGroups 小组列表（可按地区过滤）
func (s *GroupService) ListGroups(region string, limit, offset int) ([]GroupDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	list, err := s.groups.List(strings.TrimSpace(region), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]GroupDTO, len(list))
	for i := range list {
		out[i] = toGroupDTO(&list[i])
	}
	return out, nil
}

// ListMyGroups 我加入的小组
func (s *GroupService) ListMyGroups(actorID uint64) ([]GroupDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	ids, err := s.groups.GroupIDsOfUser(actorID)
	if err != nil {
		return nil, err
	}
	list, err := s.groups.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]GroupDTO, len(list))
	for i := range list {
		out[i] = toGroupDTO(&list[i])
	}
	return out, nil
}

// ListMembers 成员列表（组长在前）
func (s *GroupService) ListMembers(groupID uint64) ([]MemberDTO, error) {
	list, err := s.groups.ListMembers(groupID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberDTO, len(list))
	for i, m := range list {
		out[i] = MemberDTO{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt, Profile: toProfile(&list[i].User)}
	}
	return out, nil
}

// UpdateGroup 修改小组信息（仅组长）
func (s *GroupService) UpdateGroup(actorID, groupID uint64, req UpdateGroupReq) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	g, err := s.requireLeader(actorID, groupID)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return invalidArgument("name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.MeetingTime != nil {
		updates["meeting_time"] = strings.TrimSpace(*req.MeetingTime)
	}
	if req.Region != nil {
		updates["region"] = strings.TrimSpace(*req.Region)
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	if err := s.groups.UpdateFields(g.ID, updates); err != nil {
		return err
	}

	members, _ := s.groups.MemberIDs(g.ID)
	s.Notify.notifyBestEffort(g.ID, actorID, cons.EventGroupInfoUpdated,
		map[string]any{cons.PayloadURL: cons.GroupURL(g.ID)}, members)
	return nil
}

// LeaveGroup 退出小组，组长不能退出
func (s *GroupService) LeaveGroup(actorID, groupID uint64) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	g, err := s.groups.FindByID(groupID)
	if err != nil {
		return notFound(err, "group")
	}
	if g.LeaderID == actorID {
		return fmt.Errorf("%w: leader cannot leave the group", ErrPermissionDenied)
	}
	ok, err := s.groups.IsMember(groupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a member", ErrNotFound)
	}
	if err := s.groups.RemoveMember(groupID, actorID); err != nil {
		return err
	}
	s.Notify.notifyBestEffort(groupID, actorID, cons.EventGroupMemberLeft,
		map[string]any{"user_id": actorID, cons.PayloadURL: cons.GroupURL(groupID)}, []uint64{g.LeaderID})
	return nil
}

// IsMember 暴露给其它 service 使用
func (s *GroupService) IsMember(groupID, userID uint64) (bool, error) {
	return s.groups.IsMember(groupID, userID)
}

func (s *GroupService) requireLeader(actorID, groupID uint64) (*models.Group, error) {
	g, err := s.groups.FindByID(groupID)
	if err != nil {
		return nil, notFound(err, "group")
	}
	if g.LeaderID != actorID {
		return nil, ErrPermissionDenied
	}
	return g, nil
}
