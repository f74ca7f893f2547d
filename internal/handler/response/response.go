// Package response 统一的 {code, msg, data} 应答。
//
// HTTP 状态码总是 200，调用结果看 code；编辑失败时 data 里仍然带上会话状态，
// 前端据此在对应文本框旁显示错误。
package response

import (
	"net/http"

	"psbt-editor/pkg/errno"
	"psbt-editor/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    any    `json:"data"`
}

// Success code 为 0
func Success(c *gin.Context, data any) {
	write(c, nil, data)
}

// Error data 为空对象
func Error(c *gin.Context, err error) {
	write(c, err, nil)
}

// ErrorWithData 错误码之外附带数据，例如解码失败后的会话状态
func ErrorWithData(c *gin.Context, err error, data any) {
	write(c, err, data)
}

func write(c *gin.Context, err error, data any) {
	if data == nil {
		data = gin.H{}
	}
	code, msg := errno.Decode(err)
	if code == errno.InternalServerError.Code {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusOK, Response{Code: code, Message: msg, Data: data})
}
