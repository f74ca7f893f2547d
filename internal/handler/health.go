package handler

import (
	"psbt-editor/internal/handler/response"
	"psbt-editor/internal/session"

	"github.com/gin-gonic/gin"
)

// Health 存活检查，附带是否已加载文档、展示网络与历史位置
func (h *EditorHandler) Health(c *gin.Context) {
	h.locked(func(s *session.Session) {
		hs := s.History()
		response.Success(c, gin.H{
			"status":   "UP",
			"service":  "psbt-editor",
			"loaded":   s.Loaded(),
			"network":  s.Network(),
			"position": hs.Position,
			"length":   hs.Length,
		})
	})
}
