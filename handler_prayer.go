package mokjang_sdk

import (
	"net/http"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 代祷（Prayer）/ 评论（Comment）相关接口 --------------------

// GinHandleCreatePrayer 发布代祷
// @Summary 发布代祷
// @Description visibility: public/group/private，默认 public；group 需要 group_id 且本人是成员
// @Tags 代祷
// @Accept json
// @Produce json
// @Param req body service.CreatePrayerReq true "代祷内容"
// @Success 200 {object} response.Response{data=service.PrayerDTO}
// @Security BearerAuth
// @Router /prayer/create [post]
func (e *Engine) GinHandleCreatePrayer(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.CreatePrayerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	p, err := e.PrayerService.CreatePrayer(uid, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(p))
}

// GinHandleListPrayers 代祷列表（只返回可见的）
// @Summary 代祷列表
// @Tags 代祷
// @Produce json
// @Param group_id query uint64 false "只看某个小组"
// @Param limit query int false "条数(默认20,最大100)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.PrayerDTO}
// @Security BearerAuth
// @Router /prayer/list [get]
func (e *Engine) GinHandleListPrayers(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	groupID, ok := queryOptionalUint(ctx, "group_id")
	if !ok {
		return
	}
	limit, offset := pageArgs(ctx)
	list, err := e.PrayerService.ListPrayers(uid, groupID, limit, offset)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

type SetAnsweredReq struct {
	ID       uint64 `json:"id" binding:"required"`
	Answered bool   `json:"answered"`
}

// GinHandleSetPrayerAnswered 标记代祷已应允/取消
// @Summary 标记已应允
// @Tags 代祷
// @Accept json
// @Produce json
// @Param req body SetAnsweredReq true "代祷ID + 是否应允"
// @Success 200 {object} response.Response{data=service.PrayerDTO}
// @Security BearerAuth
// @Router /prayer/answered [post]
func (e *Engine) GinHandleSetPrayerAnswered(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req SetAnsweredReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	p, err := e.PrayerService.SetAnswered(uid, req.ID, req.Answered)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(p))
}

// GinHandleDeletePrayer 删除代祷（仅本人）
// @Summary 删除代祷
// @Tags 代祷
// @Accept json
// @Produce json
// @Param req body IDReq true "代祷ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /prayer/delete [post]
func (e *Engine) GinHandleDeletePrayer(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.PrayerService.DeletePrayer(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type AddCommentReq struct {
	ParentType string `json:"parent_type" binding:"required"`
	ParentID   uint64 `json:"parent_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// GinHandleAddComment 发表评论
// @Summary 发表评论
// @Description parent_type: prayer/announcement
// @Tags 评论
// @Accept json
// @Produce json
// @Param req body AddCommentReq true "评论"
// @Success 200 {object} response.Response{data=service.CommentDTO}
// @Security BearerAuth
// @Router /comment/create [post]
func (e *Engine) GinHandleAddComment(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req AddCommentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	c, err := e.CommentService.AddComment(uid, req.ParentType, req.ParentID, req.Content)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(c))
}

// GinHandleListComments 评论列表（按时间升序）
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param parent_type query string true "prayer/announcement"
// @Param parent_id query uint64 true "父对象ID"
// @Param limit query int false "条数"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.CommentDTO}
// @Security BearerAuth
// @Router /comment/list [get]
func (e *Engine) GinHandleListComments(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	parentID, ok := queryUint(ctx, "parent_id")
	if !ok {
		return
	}
	limit, offset := pageArgs(ctx)
	list, err := e.CommentService.ListComments(uid, ctx.Query("parent_type"), parentID, limit, offset)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleDeleteComment 删除评论（仅作者）
// @Summary 删除评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param req body IDReq true "评论ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /comment/delete [post]
func (e *Engine) GinHandleDeleteComment(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.CommentService.DeleteComment(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
