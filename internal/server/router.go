package server

import (
	"psbt-editor/internal/handler"
	"psbt-editor/internal/session"
	"psbt-editor/pkg/monitor"
	"psbt-editor/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(editor *handler.EditorHandler, metrics bool) *gin.Engine {
	// 0. 注册自定义校验规则
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 监控埋点
	if metrics {
		monitor.Init()
		r.Use(monitor.PrometheusMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// 3. 注册基础路由
	r.GET("/health", editor.Health)

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		doc := api.Group("/psbt")
		doc.GET("", editor.GetState)
		doc.PUT("", editor.Load)
		doc.GET("/export", editor.Export)

		registerRecords(doc.Group("/inputs"), editor.Records(session.Input))
		registerRecords(doc.Group("/outputs"), editor.Records(session.Output))

		api.PUT("/network", editor.SetNetwork)

		history := api.Group("/history")
		history.POST("/undo", editor.Undo)
		history.POST("/redo", editor.Redo)
	}

	return r
}

func registerRecords(g *gin.RouterGroup, h *handler.Records) {
	f := g.Group("/:index/fields/:name")
	f.PUT("", h.SetField)
	f.PUT("/entries", h.SetEntry)
	f.DELETE("/entries", h.RemoveEntry)
	f.POST("/entries/rename", h.RenameEntry)
	f.PUT("/draft/:half", h.SetDraft)
	f.POST("/draft/commit", h.CommitDraft)
}
