package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"
const sessionTokenHeader = "X-Session-Token"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := append([]string{}, cfg.AllowedHeaders...)
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Content-Length", "Cache-Control", "X-Requested-With"}
	}
	allowedHeaders = append(allowedHeaders, requestIDHeader, sessionTokenHeader)
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader+", "+sessionTokenHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", c.GetString(constants.ContextKeyRequestID),
			"session_id", c.GetString(constants.ContextKeySessionID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

// SessionMiddleware 访客会话中间件：校验会话令牌，缺失或失效时签发新会话
func SessionMiddleware(tokens *session.Tokens, cfg config.SessionConfig) gin.HandlerFunc {
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "sf_session"
	}
	return func(c *gin.Context) {
		if tokens == nil {
			response.Unauthorized(c, "session unavailable")
			c.Abort()
			return
		}

		raw := c.GetHeader(sessionTokenHeader)
		if raw == "" {
			raw, _ = c.Cookie(cookieName)
		}
		sessionID, err := tokens.Parse(raw)
		if err != nil {
			sessionID = session.NewSessionID()
			token, expiresAt, issueErr := tokens.Issue(sessionID)
			if issueErr != nil {
				logger.Errorw("session_token_issue_failed", "error", issueErr)
				response.Error(c, response.CodeInternal, "session unavailable")
				c.Abort()
				return
			}
			maxAge := int(time.Until(expiresAt).Seconds())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, token, maxAge, "/", "", cfg.CookieSecure, true)
			c.Writer.Header().Set(sessionTokenHeader, token)
		}
		c.Set(constants.ContextKeySessionID, sessionID)
		c.Next()
	}
}
