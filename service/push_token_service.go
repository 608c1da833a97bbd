package service

import (
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/cydxin/mokjang-sdk/repository"
	"github.com/rs/zerolog/log"
)

// PushTokenService 设备推送 token 登记。真正的 APNs/FCM 发送由外部推送服务完成。
type PushTokenService struct {
	*Service
	tokens *repository.PushTokenDAO
}

func NewPushTokenService(s *Service) *PushTokenService {
	log.Debug().Msg("NewPushTokenService")
	return &PushTokenService{Service: s, tokens: repository.NewPushTokenDAO(s.DB)}
}

type RegisterTokenReq struct {
	Token      string `json:"token" validate:"required,max=255"`
	DeviceType string `json:"device_type" validate:"required,oneof=ios android web"`
}

// RegisterToken 同一用户同一 token 只保留一行
func (s *PushTokenService) RegisterToken(userID uint64, req RegisterTokenReq) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	req.Token = strings.TrimSpace(req.Token)
	req.DeviceType = strings.ToLower(strings.TrimSpace(req.DeviceType))
	if err := validateStruct(req); err != nil {
		return err
	}
	now := time.Now()
	return s.tokens.Upsert(&models.PushToken{
		UserID:     userID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *PushTokenService) UnregisterToken(userID uint64, token string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return invalidArgument("token is required")
	}
	_, err := s.tokens.Delete(userID, token)
	return err
}

// TokensForUsers user_id -> tokens
func (s *PushTokenService) TokensForUsers(userIDs []uint64) (map[uint64][]models.PushToken, error) {
	list, err := s.tokens.ListByUsers(userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]models.PushToken, len(userIDs))
	for _, t := range list {
		out[t.UserID] = append(out[t.UserID], t)
	}
	return out, nil
}
