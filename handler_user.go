package mokjang_sdk

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cydxin/mokjang-sdk/middleware"
	"github.com/cydxin/mokjang-sdk/response"
	"github.com/cydxin/mokjang-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户（User）相关接口 --------------------

// GinHandleGetUserInfo 获取用户信息
// @Summary 获取用户信息
// @Description 根据 user_id 查询用户详情，如果不传 user_id 则查询当前登录用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param user_id query uint64 false "用户ID (不传则查自己)"
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/info [get]
func (e *Engine) GinHandleGetUserInfo(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	target := uid
	if s := ctx.Query("user_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			badRequest(ctx, "invalid user_id")
			return
		}
		target = id
	}

	u, err := e.UserService.GetUser(target)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, err.Error()))
			return
		}
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserRegister 用户注册
// @Summary 用户注册
// @Description 创建新用户账号：username + password + full_name，email 可选
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "注册信息"
// @Success 200 {object} response.Response{data=service.UserDTO} "注册成功"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/register [post]
func (e *Engine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	u, err := e.UserService.Register(ctx.Request.Context(), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserLogin 用户登录
// @Summary 用户登录
// @Description 用户登录并返回 token（account 支持 username/email）
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录响应（token + 用户信息）"
// @Failure 401 {object} response.Response "认证失败"
// @Router /user/login [post]
func (e *Engine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	resp, err := e.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, "invalid account or password"))
			return
		}
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleLogout 注销当前 token
// @Summary 退出登录
// @Tags 用户
// @Produce json
// @Param all query bool false "是否注销全部设备"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/logout [post]
func (e *Engine) GinHandleLogout(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var err error
	if ctx.Query("all") == "true" {
		err = e.AuthService.LogoutEverywhere(ctx.Request.Context(), uid)
	} else {
		err = e.AuthService.Logout(ctx.Request.Context(), ctx.GetString(middleware.ContextTokenKey))
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleUpdateProfile 更新用户信息
// @Summary 更新用户信息
// @Description 更新当前用户显示名/头像
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.UpdateProfileReq true "更新信息（可选字段）"
// @Success 200 {object} response.Response{data=service.UserDTO} "更新后的用户信息"
// @Failure 400 {object} response.Response "请求错误"
// @Security BearerAuth
// @Router /user/update [post]
func (e *Engine) GinHandleUpdateProfile(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req service.UpdateProfileReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.UserService.UpdateProfile(uid, req); err != nil {
		fail(ctx, err)
		return
	}
	u, err := e.UserService.GetUser(uid)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

type UpdatePasswordReq struct {
	Password string `json:"password" binding:"required,min=6"`
}

// GinHandleUpdatePassword 修改密码
// @Summary 修改密码
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body UpdatePasswordReq true "新密码"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/password [post]
func (e *Engine) GinHandleUpdatePassword(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req UpdatePasswordReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := e.UserService.UpdatePassword(uid, req.Password); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
