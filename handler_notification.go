package mokjang_sdk

import (
	"net/http"
	"strconv"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 通知（Notification）相关接口 --------------------

// GinHandleWS 升级为 websocket，服务端主动推送通知
// @Summary websocket 连接
// @Description 上行支持 {"type":"ping"} 与 {"type":"ack","ids":[...]}
// @Tags 通知
// @Security BearerAuth
// @Router /ws [get]
func (e *Engine) GinHandleWS(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	e.WsServer.ServeWS(ctx.Writer, ctx.Request, uid)
}

// GinHandleListNotifications 拉取通知（默认近 7 天）
// @Summary 拉取通知
// @Tags 通知
// @Produce json
// @Param days query int false "近 N 天(默认7)"
// @Param cursor query uint64 false "游标(上一页最小id)"
// @Param limit query int false "条数(默认50,最大200)"
// @Param group_id query uint64 false "按小组过滤"
// @Param unread_only query bool false "只看未读"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.items + data.next_cursor"
// @Security BearerAuth
// @Router /notification/list [get]
func (e *Engine) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "7"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	cursor, _ := strconv.ParseUint(ctx.DefaultQuery("cursor", "0"), 10, 64)
	unreadOnly := ctx.DefaultQuery("unread_only", "false") == "true"
	groupID, ok := queryOptionalUint(ctx, "group_id")
	if !ok {
		return
	}

	items, nextCursor, err := e.NotificationService.ListUserNotifications(uid, days, cursor, limit, groupID, unreadOnly)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"items":       items,
		"next_cursor": nextCursor,
	}))
}

type MarkNotificationsReadReq struct {
	IDs []uint64 `json:"ids" binding:"required"`
}

// GinHandleMarkNotificationsRead 标记通知已读
// @Summary 标记通知已读
// @Tags 通知
// @Accept json
// @Produce json
// @Param req body MarkNotificationsReadReq true "delivery id 列表"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notification/read [post]
func (e *Engine) GinHandleMarkNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req MarkNotificationsReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.NotificationService.MarkReadByIDs(uid, req.IDs); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
