package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultTokenTTL = 30 * 24 * time.Hour // 移动端登录态保留 30 天
	tokenKeyPrefix  = "mj:token:"
	userTokenPrefix = "mj:user_tokens:"
)

// ErrTokenNotFound token 不存在或已过期
var ErrTokenNotFound = errors.New("token not found or expired")

// TokenService 负责登录 token 的生成、存储、校验与注销。
// Redis Key:
// - mj:token:{token} -> userID (String, TTL)
// - mj:user_tokens:{userID} -> Set(token...)，用于全端注销
type TokenService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTokenService(rdb *redis.Client) *TokenService {
	return &TokenService{rdb: rdb, ttl: defaultTokenTTL}
}

func (s *TokenService) ensure() error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func userTokensKey(userID uint64) string {
	return userTokenPrefix + strconv.FormatUint(userID, 10)
}

// Issue 生成随机 token 并写入 redis
func (s *TokenService) Issue(ctx context.Context, userID uint64) (string, error) {
	if err := s.ensure(); err != nil {
		return "", err
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+token, strconv.FormatUint(userID, 10), s.ttl)
	pipe.SAdd(ctx, userTokensKey(userID), token)
	pipe.Expire(ctx, userTokensKey(userID), s.ttl+24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup token -> userID
func (s *TokenService) Lookup(ctx context.Context, token string) (uint64, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	val, err := s.rdb.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(val, 10, 64)
}

// Revoke 注销单个 token（同时从用户集合移除）
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	uid, err := s.Lookup(ctx, token)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+token)
	if uid > 0 {
		pipe.SRem(ctx, userTokensKey(uid), token)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll 注销用户全部 token
func (s *TokenService) RevokeAll(ctx context.Context, userID uint64) error {
	if err := s.ensure(); err != nil {
		return err
	}
	tokens, err := s.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, tokenKeyPrefix+t)
	}
	pipe.Del(ctx, userTokensKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
