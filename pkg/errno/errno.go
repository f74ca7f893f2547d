package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage 返回同一错误码、替换了提示信息的副本
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Is 按错误码比较，便于 errors.Is(err, errno.ErrHex) 这样的判断
func (e Errno) Is(target error) bool {
	var t Errno
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Coder is implemented by errors that know their own Errno code.
type Coder interface {
	Errno() Errno
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	case Coder:
		return typed.Errno().Code, err.Error()
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.Errno().Code, err.Error()
	}
	var e Errno
	if errors.As(err, &e) {
		return e.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
)

// Codec Errors (30000+): 文本无法解析为字段值
var (
	ErrBase64      = Errno{Code: 30001, Message: "Invalid base64 encoding"}
	ErrPsbtFormat  = Errno{Code: 30002, Message: "Invalid PSBT"}
	ErrHex         = Errno{Code: 30101, Message: "Invalid hex string"}
	ErrStructure   = Errno{Code: 30102, Message: "Invalid binary structure"}
	ErrKeyFormat   = Errno{Code: 30103, Message: "Invalid public key"}
	ErrPathFormat  = Errno{Code: 30104, Message: "Invalid derivation path"}
	ErrArity       = Errno{Code: 30105, Message: "Wrong number of text slots"}
	ErrSighashType = Errno{Code: 30106, Message: "Unknown sighash type"}
	ErrFingerprint = Errno{Code: 30107, Message: "Invalid master key fingerprint"}
)

// Editor Errors (30200+)
var (
	ErrNoDocument   = Errno{Code: 30201, Message: "No PSBT loaded"}
	ErrUnknownField = Errno{Code: 30202, Message: "Unknown field"}
	ErrIndexRange   = Errno{Code: 30203, Message: "Index out of range"}
	ErrNotKeyed     = Errno{Code: 30204, Message: "Field is not a keyed collection"}
	ErrKeyed        = Errno{Code: 30205, Message: "Field is a keyed collection"}
)
