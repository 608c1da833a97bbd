package middleware

import (
	"net/http"
	"strings"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey = "user_id"
	ContextTokenKey  = "token"
)

// AuthOptions 可选配置。
type AuthOptions struct {
	// HeaderKey 默认 Authorization
	HeaderKey string
	// QueryKey 默认 token
	QueryKey string
	// UserIDKey 默认 user_id
	UserIDKey string
	// TokenKey 默认 token
	TokenKey string
}

func (o *AuthOptions) withDefaults() AuthOptions {
	var out AuthOptions
	if o != nil {
		out = *o
	}
	if out.HeaderKey == "" {
		out.HeaderKey = "Authorization"
	}
	if out.QueryKey == "" {
		out.QueryKey = "token"
	}
	if out.UserIDKey == "" {
		out.UserIDKey = ContextUserIDKey
	}
	if out.TokenKey == "" {
		out.TokenKey = ContextTokenKey
	}
	return out
}

func (o AuthOptions) tokenFrom(c *gin.Context) string {
	if ah := strings.TrimSpace(c.GetHeader(o.HeaderKey)); ah != "" {
		scheme, rest, ok := strings.Cut(ah, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(c.Query(o.QueryKey))
}

/*
	GinAuthMiddleware Gin 鉴权中间件：

- 优先从 Authorization: Bearer <token> 读取
- 如果没有，再从 query 参数读取（默认 token=xxx）
- 校验 token -> userID（Redis）成功后，写入 gin.Context

使用：router.Use(middleware.GinAuthMiddleware(authService, nil))
*/
func GinAuthMiddleware(auth *service.AuthService, opt *AuthOptions) gin.HandlerFunc {
	cfg := opt.withDefaults()

	return func(c *gin.Context) {
		if auth == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(response.CodeInternalError, "auth service is nil"))
			return
		}

		token := cfg.tokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "missing token"))
			return
		}

		uid, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, err.Error()))
			return
		}

		c.Set(cfg.UserIDKey, uid)
		c.Set(cfg.TokenKey, token)
		c.Next()
	}
}

// CurrentUserID 读取中间件写入的 user id
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	uid, ok := v.(uint64)
	return uid, ok && uid > 0
}
