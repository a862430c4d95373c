package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("the record was modified by another request, please refresh and retry")

// Kind 业务错误分类，对应 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error 带分类与错误码的业务错误
// Code 为 API 响应中的业务错误码，Message 直接返回给客户端
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is 同一 Kind + Code 视为同一错误，便于 WithMessage 派生的错误与哨兵比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithMessage 派生一个替换了提示文案的同类错误
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// New 创建业务错误
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation 400
func Validation(code int, message string) *Error { return New(KindValidation, code, message) }

// NotFound 404
func NotFound(code int, message string) *Error { return New(KindNotFound, code, message) }

// Conflict 409
func Conflict(code int, message string) *Error { return New(KindConflict, code, message) }

// Forbidden 403
func Forbidden(code int, message string) *Error { return New(KindForbidden, code, message) }

// KindOf 取出错误分类；非业务错误一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As 提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
