package mokjang_sdk

import (
	"net/http"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 小组（Group）相关接口 --------------------

// GinHandleCreateGroup 创建小组
// @Summary 创建小组
// @Description 创建者自动成为组长
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body service.CreateGroupReq true "小组信息"
// @Success 200 {object} response.Response{data=service.GroupDTO}
// @Security BearerAuth
// @Router /group/create [post]
func (e *Engine) GinHandleCreateGroup(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.CreateGroupReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	g, err := e.GroupService.CreateGroup(uid, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(g))
}

// GinHandleGetGroup 小组详情
// @Summary 小组详情
// @Tags 小组
// @Produce json
// @Param group_id query uint64 true "小组ID"
// @Success 200 {object} response.Response{data=service.GroupDTO}
// @Security BearerAuth
// @Router /group/info [get]
func (e *Engine) GinHandleGetGroup(ctx *gin.Context) {
	groupID, ok := queryUint(ctx, "group_id")
	if !ok {
		return
	}
	g, err := e.GroupService.GetGroup(groupID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(g))
}

// GinHandleListGroups 小组列表
// @Summary 小组列表
// @Tags 小组
// @Produce json
// @Param region query string false "按地区过滤"
// @Param limit query int false "条数(默认50,最大200)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.GroupDTO}
// @Security BearerAuth
// @Router /group/list [get]
func (e *Engine) GinHandleListGroups(ctx *gin.Context) {
	limit, offset := pageArgs(ctx)
	list, err := e.GroupService.ListGroups(ctx.Query("region"), limit, offset)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleListMyGroups 我加入的小组
// @Summary 我加入的小组
// @Tags 小组
// @Produce json
// @Success 200 {object} response.Response{data=[]service.GroupDTO}
// @Security BearerAuth
// @Router /group/mine [get]
func (e *Engine) GinHandleListMyGroups(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	list, err := e.GroupService.ListMyGroups(uid)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleListMembers 成员列表
// @Summary 成员列表
// @Tags 小组
// @Produce json
// @Param group_id query uint64 true "小组ID"
// @Success 200 {object} response.Response{data=[]service.MemberDTO}
// @Security BearerAuth
// @Router /group/member/list [get]
func (e *Engine) GinHandleListMembers(ctx *gin.Context) {
	groupID, ok := queryUint(ctx, "group_id")
	if !ok {
		return
	}
	list, err := e.GroupService.ListMembers(groupID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

type UpdateGroupReq struct {
	GroupID uint64 `json:"group_id" binding:"required"`
	service.UpdateGroupReq
}

// GinHandleUpdateGroup 修改小组信息（组长）
// @Summary 修改小组信息
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body UpdateGroupReq true "只传需要修改的字段"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /group/update [post]
func (e *Engine) GinHandleUpdateGroup(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req UpdateGroupReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.GroupService.UpdateGroup(uid, req.GroupID, req.UpdateGroupReq); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type GroupIDReq struct {
	GroupID uint64 `json:"group_id" binding:"required"`
}

// GinHandleLeaveGroup 退出小组
// @Summary 退出小组
// @Description 组长不能退出
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body GroupIDReq true "小组ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /group/leave [post]
func (e *Engine) GinHandleLeaveGroup(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req GroupIDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.GroupService.LeaveGroup(uid, req.GroupID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type JoinRequestReq struct {
	GroupID uint64 `json:"group_id" binding:"required"`
	Message string `json:"message"`
}

// GinHandleRequestJoin 申请加入小组
// @Summary 申请加入小组
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body JoinRequestReq true "申请"
// @Success 200 {object} response.Response{data=service.JoinRequestDTO}
// @Security BearerAuth
// @Router /group/join/request [post]
func (e *Engine) GinHandleRequestJoin(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req JoinRequestReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	r, err := e.GroupService.RequestJoin(uid, req.GroupID, req.Message)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(r))
}

// GinHandleApproveJoin 同意入组申请（组长）
// @Summary 同意入组申请
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body IDReq true "申请ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /group/join/approve [post]
func (e *Engine) GinHandleApproveJoin(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.GroupService.ApproveJoinRequest(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleRejectJoin 拒绝入组申请（组长）
// @Summary 拒绝入组申请
// @Tags 小组
// @Accept json
// @Produce json
// @Param req body IDReq true "申请ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /group/join/reject [post]
func (e *Engine) GinHandleRejectJoin(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.GroupService.RejectJoinRequest(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleListPendingRequests 待处理申请（组长）
// @Summary 待处理入组申请
// @Tags 小组
// @Produce json
// @Param group_id query uint64 true "小组ID"
// @Success 200 {object} response.Response{data=[]service.JoinRequestDTO}
// @Security BearerAuth
// @Router /group/join/pending [get]
func (e *Engine) GinHandleListPendingRequests(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	groupID, ok := queryUint(ctx, "group_id")
	if !ok {
		return
	}
	list, err := e.GroupService.ListPendingRequests(uid, groupID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}
