package mokjang_sdk

import (
	"net/http"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 公告（Announcement）相关接口 --------------------

// GinHandleCreateAnnouncement 发布公告
// @Summary 发布公告
// @Description type: news/meeting/retreat/picnic，默认 news
// @Tags 公告
// @Accept json
// @Produce json
// @Param req body service.CreateAnnouncementReq true "公告"
// @Success 200 {object} response.Response{data=service.AnnouncementDTO}
// @Security BearerAuth
// @Router /announcement/create [post]
func (e *Engine) GinHandleCreateAnnouncement(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.CreateAnnouncementReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	a, err := e.AnnouncementService.CreateAnnouncement(uid, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(a))
}

// GinHandleListAnnouncements 公告列表
// @Summary 公告列表
// @Tags 公告
// @Produce json
// @Param type query string false "按类型过滤"
// @Param limit query int false "条数(默认20,最大100)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.AnnouncementDTO}
// @Security BearerAuth
// @Router /announcement/list [get]
func (e *Engine) GinHandleListAnnouncements(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	limit, offset := pageArgs(ctx)
	list, err := e.AnnouncementService.ListAnnouncements(uid, ctx.Query("type"), limit, offset)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetAnnouncement 公告详情
// @Summary 公告详情
// @Tags 公告
// @Produce json
// @Param id query uint64 true "公告ID"
// @Success 200 {object} response.Response{data=service.AnnouncementDTO}
// @Security BearerAuth
// @Router /announcement/detail [get]
func (e *Engine) GinHandleGetAnnouncement(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := queryUint(ctx, "id")
	if !ok {
		return
	}
	a, err := e.AnnouncementService.GetAnnouncement(uid, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(a))
}

// GinHandleMarkAnnouncementRead 标记公告已读（幂等）
// @Summary 标记公告已读
// @Tags 公告
// @Accept json
// @Produce json
// @Param req body IDReq true "公告ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /announcement/read [post]
func (e *Engine) GinHandleMarkAnnouncementRead(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.AnnouncementService.MarkRead(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleDeleteAnnouncement 删除公告（仅作者）
// @Summary 删除公告
// @Tags 公告
// @Accept json
// @Produce json
// @Param req body IDReq true "公告ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /announcement/delete [post]
func (e *Engine) GinHandleDeleteAnnouncement(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.AnnouncementService.DeleteAnnouncement(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
