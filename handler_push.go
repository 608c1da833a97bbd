package mokjang_sdk

import (
	"net/http"

	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// GinHandleRegisterPushToken 登记推送 token
// @Summary 登记推送 token
// @Description 同一用户同一 token 重复登记只更新 device_type
// @Tags 推送
// @Accept json
// @Produce json
// @Param req body service.RegisterTokenReq true "token + device_type(ios/android/web)"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /push/register [post]
func (e *Engine) GinHandleRegisterPushToken(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.RegisterTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.PushTokenService.RegisterToken(uid, req); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

type UnregisterTokenReq struct {
	Token string `json:"token" binding:"required"`
}

// GinHandleUnregisterPushToken 注销推送 token
// @Summary 注销推送 token
// @Tags 推送
// @Accept json
// @Produce json
// @Param req body UnregisterTokenReq true "token"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /push/unregister [post]
func (e *Engine) GinHandleUnregisterPushToken(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req UnregisterTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.PushTokenService.UnregisterToken(uid, req.Token); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
