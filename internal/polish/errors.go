package polish

import (
	"errors"
	"fmt"
)

// PolishError 润色服务调用错误
type PolishError struct {
	Code    int    // 错误码
	Message string // 错误消息
}

// Error 实现error接口
func (e PolishError) Error() string {
	return fmt.Sprintf("polish error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidAPIKey  = 2001 // 无效的API密钥
	ErrCodeInvalidRequest = 2002 // 无效的请求
	ErrCodeNetworkError   = 2003 // 网络连接错误
	ErrCodeServerError    = 2004 // 服务器错误
	ErrCodeTimeout        = 2005 // 请求超时
	ErrCodeEmptyContent   = 2006 // 待润色内容为空
	ErrCodeBadOutput      = 2007 // 模型输出无法解析
	ErrCodeDisabled       = 2008 // 未配置润色服务
)

// 错误消息常量
const (
	ErrMsgInvalidAPIKey = "invalid API key"
	ErrMsgEmptyContent  = "content cannot be empty"
	ErrMsgDisabled      = "polish service is not configured"
)

// NewPolishError 创建新的润色错误
func NewPolishError(code int, message string) PolishError {
	return PolishError{Code: code, Message: message}
}

// WrapError 包装普通错误为润色错误
func WrapError(err error, code int) PolishError {
	if err == nil {
		return PolishError{Code: code, Message: "unknown error"}
	}

	var pe PolishError
	if errors.As(err, &pe) {
		return pe
	}

	return PolishError{Code: code, Message: err.Error()}
}

// IsDisabled 判断错误是否因为未配置润色服务
func IsDisabled(err error) bool {
	var pe PolishError
	return errors.As(err, &pe) && pe.Code == ErrCodeDisabled
}
