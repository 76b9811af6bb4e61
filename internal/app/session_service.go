package app

import (
	"context"
	"errors"

	"github.com/storefront-next/internal/session"
)

// SessionService 会话回收服务：定时关闭空闲会话，停止时写完全部购物车
type SessionService struct {
	manager *session.Manager
}

// NewSessionService 创建会话回收服务
func NewSessionService(manager *session.Manager) *SessionService {
	return &SessionService{manager: manager}
}

// Name 服务名称
func (s *SessionService) Name() string {
	return "session"
}

// Start 启动服务，阻塞到 ctx 结束
func (s *SessionService) Start(ctx context.Context) error {
	if s == nil || s.manager == nil {
		return errors.New("session manager not initialized")
	}
	s.manager.Run(ctx)
	return nil
}

// Stop 停止服务
func (s *SessionService) Stop(ctx context.Context) error {
	if s == nil || s.manager == nil {
		return nil
	}
	return s.manager.Close(ctx)
}
