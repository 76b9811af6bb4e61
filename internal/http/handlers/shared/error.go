package shared

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 与 session_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		kv = append(kv, "request_id", id)
	}
	if sid := c.GetString(constants.ContextKeySessionID); sid != "" {
		kv = append(kv, "session_id", sid)
	}
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// RespondError 按消息键返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, Message(key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	switch appErr.Code {
	case response.CodeBadRequest:
		response.BadRequest(c, appErr.Message)
	case response.CodeUnauthorized:
		response.Unauthorized(c, appErr.Message)
	case response.CodeNotFound:
		response.NotFound(c, appErr.Message)
	default:
		response.Error(c, appErr.Code, appErr.Message)
	}
}
