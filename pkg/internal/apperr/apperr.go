// Package apperr 定义传输核心的封闭错误分类，并提供到 HTTP 状态码的映射.
// 分类特意将"存在但不属于你"和"存在但未就绪"掩蔽为 NotFound，避免向非拥有者泄露资源存在性.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类.
type Kind int

const (
	// KindValidation 输入格式错误或缺失，详情可回显给调用方.
	KindValidation Kind = iota + 1
	// KindNotFound 资源缺失，或对调用方不可见（非拥有者）.
	KindNotFound
	// KindForbidden 链接过期、配额耗尽、密码错误等策略拒绝.
	KindForbidden
	// KindConflict 重复分块、token 冲突、资源状态不满足操作前置条件.
	KindConflict
	// KindUpstream 对象存储或存储层的瞬时故障，调用方可有界退避重试.
	KindUpstream
)

// Error 携带分类的领域错误.
type Error struct {
	Kind Kind
	Msg  string
	// Retryable 仅对 KindUpstream 有意义：网络/5xx 为可重试，4xx 为终态
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 构造输入校验错误.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound 构造资源缺失（或不可见）错误.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden 构造策略拒绝错误.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Conflict 构造状态冲突错误.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Upstream 包装外部依赖故障，retryable 标记是否值得重试.
func Upstream(err error, retryable bool, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Msg: fmt.Sprintf(format, args...), Retryable: retryable, Err: err}
}

// KindOf 提取错误分类，非本包错误返回 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// HTTPStatus 将错误映射为 HTTP 状态码；未知错误按 500 处理.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
