package validator

import (
	"fmt"
	"strings"
	"sync"

	"psbt-editor/pkg/address"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Init 在 gin 的绑定校验器上注册自定义规则
func Init() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register 注册自定义规则:
//
//	btcnetwork: 地址展示支持的网络名称
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("btcnetwork", func(fl validator.FieldLevel) bool {
		_, err := address.ParseNetwork(fl.Field().String())
		return err == nil
	})
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			switch e.Tag() {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 至少需要 %s 个文本框", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 最多 %s 个文本框", field, param))
			case "btcnetwork":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是支持的网络", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, e.Tag()))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
