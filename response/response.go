package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cydxin/mokjang-sdk/service"
	"github.com/rs/zerolog/log"
)

// Response 统一响应结构
type Response struct {
	Code int    `json:"code" example:"0"`                    // 业务状态码
	Msg  string `json:"msg" example:"success"`               // 提示消息
	Data any    `json:"data,omitempty" swaggertype:"object"` // 响应数据
}

// 业务状态码定义
// 使用说明：
// - 中间件层：使用 HTTP 状态码（401/500）
// - 业务层：HTTP 200 + 业务状态码
const (
	CodeSuccess          = 0     // 成功
	CodeParamError       = 10001 // 参数错误
	CodeUserNotFound     = 10002 // 用户不存在
	CodePasswordError    = 10003 // 账号或密码错误（登录失败）
	CodeTokenInvalid     = 10004 // Token 无效/过期
	CodePermissionDeny   = 10005 // 权限不足
	CodeNotFound         = 10006 // 记录不存在
	CodeConflict         = 10007 // 重复操作
	CodeAlreadyProcessed = 10008 // 申请已被处理
	CodeInternalError    = 99999 // 内部错误
)

// Success 成功响应
func Success(data any, args ...string) *Response {
	msg := "success"
	for _, arg := range args {
		msg = arg
	}
	return &Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	}
}

// Error 错误响应
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf service 错误 -> 业务状态码
func CodeOf(err error) int {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, service.ErrInvalidArgument):
		return CodeParamError
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrTokenNotFound):
		return CodeTokenInvalid
	case errors.Is(err, service.ErrPermissionDenied):
		return CodePermissionDeny
	case errors.Is(err, service.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, service.ErrConflict):
		return CodeConflict
	case errors.Is(err, service.ErrAlreadyProcessed):
		return CodeAlreadyProcessed
	}
	return CodeInternalError
}

// FromError 错误响应，msg 为错误原文
func FromError(err error) *Response {
	return Error(CodeOf(err), err.Error())
}

// WriteJSON 写入 JSON 响应（默认 HTTP 200）
func (r *Response) WriteJSON(w http.ResponseWriter) {
	r.WriteJSONWithStatus(w, http.StatusOK)
}

// WriteJSONWithStatus 写入 JSON 响应（指定 HTTP 状态码）
// 用于中间件层面的鉴权失败等场景（如 401）
func (r *Response) WriteJSONWithStatus(w http.ResponseWriter, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
