package mokjang_sdk

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cydxin/mokjang-sdk/middleware"
	"github.com/cydxin/mokjang-sdk/response"
	"github.com/gin-gonic/gin"
)

/*
	handler 按模块拆分：
- handler_user.go
- handler_group.go
- handler_meeting.go
- handler_announcement.go
- handler_prayer.go（含评论）
- handler_push.go
- handler_notification.go
*/

// currentUser 从 context 取 user_id，取不到直接写 401
func currentUser(ctx *gin.Context) (uint64, bool) {
	uid, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	return uid, true
}

// fail 业务错误：HTTP 200 + 业务码
func fail(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusOK, response.FromError(err))
}

func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, msg))
}

// queryUint 必填的 uint64 query 参数
func queryUint(ctx *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(ctx.Query(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(ctx, "invalid "+name)
		return 0, false
	}
	return v, true
}

// queryOptionalUint 可选的 uint64 query 参数
func queryOptionalUint(ctx *gin.Context, name string) (*uint64, bool) {
	s := ctx.Query(name)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		badRequest(ctx, "invalid "+name)
		return nil, false
	}
	return &v, true
}

// queryTime RFC3339 时间，空串为零值
func queryTime(ctx *gin.Context, name string) (time.Time, bool) {
	s := ctx.Query(name)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		badRequest(ctx, "invalid "+name+", want RFC3339")
		return time.Time{}, false
	}
	return t, true
}

func pageArgs(ctx *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	offset, _ = strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// IDReq 只带一个 id 的请求体
type IDReq struct {
	ID uint64 `json:"id" binding:"required"`
}
