package cmd

import (
	"psbt-editor/internal/handler"
	"psbt-editor/internal/server"
	"psbt-editor/internal/session"
	"psbt-editor/pkg/config"
	"psbt-editor/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 编辑服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Global.App.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		s, err := session.New(config.Global.Editor.Network)
		if err != nil {
			return err
		}

		router := server.NewHTTPRouter(handler.NewEditorHandler(s), config.Global.Metrics.Enabled)
		app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, router)

		logger.Info("psbt editor ready",
			zap.String("network", s.Network()),
			zap.Bool("metrics", config.Global.Metrics.Enabled),
		)
		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
