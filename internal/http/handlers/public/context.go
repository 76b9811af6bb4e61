package public

import (
	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/session"

	"github.com/gin-gonic/gin"
)

func getSessionID(c *gin.Context) (string, bool) {
	return handlershared.GetContextStringWithKey(c, constants.ContextKeySessionID, "error.unauthorized")
}

// currentSession 取当前访客会话（首次访问时加载持久化购物车）
func (h *Handler) currentSession(c *gin.Context) (*session.Session, bool) {
	sid, ok := getSessionID(c)
	if !ok {
		return nil, false
	}
	return h.Sessions.Get(c.Request.Context(), sid), true
}
