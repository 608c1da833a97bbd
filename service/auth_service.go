package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
)

// AuthService 提供鉴权核心能力，中间件（gin / WS 握手）都调用它。
type AuthService struct {
	token *TokenService
}

func NewAuthService(rdb *redis.Client) *AuthService {
	return &AuthService{token: NewTokenService(rdb)}
}

// ExtractToken 从 HTTP 请求中提取 token：优先 Authorization: Bearer，其次 query: token。
// WebSocket 握手无法带 header 时走 query。
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); ah != "" {
		scheme, rest, ok := strings.Cut(ah, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}
	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Authenticate 根据 token 获取 userID。
func (a *AuthService) Authenticate(ctx context.Context, token string) (uint64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, fmt.Errorf("missing token")
	}
	return a.token.Lookup(ctx, token)
}

// AuthenticateRequest 从请求里抽 token 并鉴权。
func (a *AuthService) AuthenticateRequest(ctx context.Context, r *http.Request) (uint64, string, error) {
	t := a.ExtractToken(r)
	uid, err := a.Authenticate(ctx, t)
	return uid, t, err
}

// Logout 注销当前 token
func (a *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return a.token.Revoke(ctx, token)
}

// LogoutEverywhere 注销用户全部 token
func (a *AuthService) LogoutEverywhere(ctx context.Context, userID uint64) error {
	return a.token.RevokeAll(ctx, userID)
}
