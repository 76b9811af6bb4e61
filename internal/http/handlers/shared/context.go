package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextStringWithKey 从上下文读取非空字符串并统一处理错误响应。
func GetContextStringWithKey(c *gin.Context, key, missingKey string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, missingKey, nil)
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		RespondError(c, response.CodeUnauthorized, missingKey, nil)
		return "", false
	}
	return s, true
}
