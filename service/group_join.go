package service

import (
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/rs/zerolog/log"
)

// RequestJoin 申请加入小组
func (s *GroupService) RequestJoin(actorID, groupID uint64, message string) (*JoinRequestDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if len(message) > 255 {
		return nil, invalidArgument("message too long")
	}
	g, err := s.groups.FindByID(groupID)
	if err != nil {
		return nil, notFound(err, "group")
	}
	isMember, err := s.groups.IsMember(groupID, actorID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, conflict("already a member")
	}
	pending, err := s.requests.HasPending(groupID, actorID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, conflict("join request already pending")
	}

	now := time.Now()
	req := &models.GroupJoinRequest{
		UserID:    actorID,
		GroupID:   groupID,
		Status:    models.JoinStatusPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.requests.Create(req); err != nil {
		return nil, err
	}

	s.Notify.notifyBestEffort(groupID, actorID, cons.EventGroupJoinRequested, map[string]any{
		"request_id":    req.ID,
		cons.PayloadURL: cons.JoinRequestsURL(groupID),
	}, []uint64{g.LeaderID})

	dto := toJoinRequestDTO(req)
	return &dto, nil
}

// ApproveJoinRequest 组长同意申请。
// 状态更新与成员写入是两次独立写，不在同一事务中。
func (s *GroupService) ApproveJoinRequest(actorID, requestID uint64) error {
	req, err := s.loadRequestAsLeader(actorID, requestID)
	if err != nil {
		return err
	}

	now := time.Now()
	affected, err := s.requests.Transition(req.ID, models.JoinStatusApproved, now)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyProcessed
	}

	member := &models.GroupMember{
		GroupID:   req.GroupID,
		UserID:    req.UserID,
		Role:      models.RoleMember,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.groups.AddMember(member); err != nil {
		log.Error().Err(err).Uint64("request_id", req.ID).Msg("join approved but membership insert failed")
		return err
	}

	s.Notify.notifyBestEffort(req.GroupID, actorID, cons.EventGroupJoinApproved, map[string]any{
		"request_id":    req.ID,
		cons.PayloadURL: cons.GroupURL(req.GroupID),
	}, []uint64{req.UserID})
	return nil
}

// RejectJoinRequest 组长拒绝申请
func (s *GroupService) RejectJoinRequest(actorID, requestID uint64) error {
	req, err := s.loadRequestAsLeader(actorID, requestID)
	if err != nil {
		return err
	}
	affected, err := s.requests.Transition(req.ID, models.JoinStatusRejected, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyProcessed
	}

	s.Notify.notifyBestEffort(req.GroupID, actorID, cons.EventGroupJoinRejected, map[string]any{
		"request_id":    req.ID,
		cons.PayloadURL: cons.GroupURL(req.GroupID),
	}, []uint64{req.UserID})
	return nil
}

// ListPendingRequests 待处理申请（仅组长）
func (s *GroupService) ListPendingRequests(actorID, groupID uint64) ([]JoinRequestDTO, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if _, err := s.requireLeader(actorID, groupID); err != nil {
		return nil, err
	}
	list, err := s.requests.ListPending(groupID)
	if err != nil {
		return nil, err
	}
	out := make([]JoinRequestDTO, len(list))
	for i := range list {
		out[i] = toJoinRequestDTO(&list[i])
	}
	return out, nil
}

func (s *GroupService) loadRequestAsLeader(actorID, requestID uint64) (*models.GroupJoinRequest, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(requestID)
	if err != nil {
		return nil, notFound(err, "join request")
	}
	if _, err := s.requireLeader(actorID, req.GroupID); err != nil {
		return nil, err
	}
	return req, nil
}
