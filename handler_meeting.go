package mokjang_sdk

import (
	"net/http"
	"time"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 聚会（Meeting）相关接口 --------------------

// GinHandleCreateMeeting 新建聚会
// @Summary 新建聚会
// @Description is_volunteer_open=true 时不指定做东人和地点；否则 location 必填，做东人为组长
// @Tags 聚会
// @Accept json
// @Produce json
// @Param req body service.CreateMeetingReq true "聚会信息（meeting_time 为 RFC3339）"
// @Success 200 {object} response.Response{data=service.MeetingDTO}
// @Security BearerAuth
// @Router /meeting/create [post]
func (e *Engine) GinHandleCreateMeeting(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.CreateMeetingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	m, err := e.MeetingService.CreateMeeting(uid, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(m))
}

type VolunteerReq struct {
	MeetingID uint64 `json:"meeting_id" binding:"required"`
	Location  string `json:"location" binding:"required"`
}

// GinHandleVolunteer 认领做东
// @Summary 认领做东
// @Description 写入做东人与地点；已有做东人时覆盖
// @Tags 聚会
// @Accept json
// @Produce json
// @Param req body VolunteerReq true "聚会ID + 地点"
// @Success 200 {object} response.Response{data=service.MeetingDTO}
// @Security BearerAuth
// @Router /meeting/volunteer [post]
func (e *Engine) GinHandleVolunteer(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req VolunteerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	m, err := e.MeetingService.Volunteer(uid, req.MeetingID, req.Location)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(m))
}

// GinHandleListMeetings 日历区间内的聚会
// @Summary 聚会列表
// @Description from <= meeting_time < to，按时间升序；from 缺省为当前时间，to 缺省为 from 后一个月
// @Tags 聚会
// @Produce json
// @Param group_id query uint64 true "小组ID"
// @Param from query string false "开始时间 RFC3339"
// @Param to query string false "结束时间 RFC3339（不含）"
// @Success 200 {object} response.Response{data=[]service.MeetingDTO}
// @Security BearerAuth
// @Router /meeting/list [get]
func (e *Engine) GinHandleListMeetings(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	groupID, ok := queryUint(ctx, "group_id")
	if !ok {
		return
	}
	from, ok := queryTime(ctx, "from")
	if !ok {
		return
	}
	to, ok := queryTime(ctx, "to")
	if !ok {
		return
	}
	if from.IsZero() {
		from = time.Now().UTC().Truncate(time.Second)
	}
	if to.IsZero() {
		to = from.AddDate(0, 1, 0)
	}
	list, err := e.MeetingService.ListMeetings(uid, groupID, from, to)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleListUnhosted 待认领聚会
// @Summary 待认领聚会
// @Tags 聚会
// @Produce json
// @Param group_id query uint64 true "小组ID"
// @Param from query string false "开始时间 RFC3339"
// @Success 200 {object} response.Response{data=[]service.MeetingDTO}
// @Security BearerAuth
// @Router /meeting/unhosted [get]
func (e *Engine) GinHandleListUnhosted(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	groupID, ok := queryUint(ctx, "group_id")
	if !ok {
		return
	}
	from, ok := queryTime(ctx, "from")
	if !ok {
		return
	}
	if from.IsZero() {
		from = time.Now().UTC().Truncate(time.Second)
	}
	list, err := e.MeetingService.ListUnhosted(uid, groupID, from)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

type UpdateMeetingReq struct {
	MeetingID uint64 `json:"meeting_id" binding:"required"`
	service.UpdateMeetingReq
}

// GinHandleUpdateMeeting 修改聚会（组长或做东人）
// @Summary 修改聚会
// @Tags 聚会
// @Accept json
// @Produce json
// @Param req body UpdateMeetingReq true "只传需要修改的字段"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /meeting/update [post]
func (e *Engine) GinHandleUpdateMeeting(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req UpdateMeetingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.MeetingService.UpdateMeeting(uid, req.MeetingID, req.UpdateMeetingReq); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleDeleteMeeting 删除聚会（组长）
// @Summary 删除聚会
// @Tags 聚会
// @Accept json
// @Produce json
// @Param req body IDReq true "聚会ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /meeting/delete [post]
func (e *Engine) GinHandleDeleteMeeting(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req IDReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.MeetingService.DeleteMeeting(uid, req.ID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
