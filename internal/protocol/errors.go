// Package protocol 433MHz 遥控协议公共定义（错误分类）
package protocol

import (
	"errors"
	"fmt"
)

// Kind 错误类别（封闭枚举）
type Kind int

const (
	KindInvalidSymbol Kind = iota + 1 // 未知协议符号
	KindInvalidAddress                // 地址超出 16 槽位码表
	KindInvalidCommand                // 命令不在命令表中
	KindTransport                     // 数据报发送失败
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSymbol:
		return "invalid_symbol"
	case KindInvalidAddress:
		return "invalid_address"
	case KindInvalidCommand:
		return "invalid_command"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error 协议错误：类别 + 出错的值
type Error struct {
	Kind   Kind
	Value  string // 出错的输入值
	Detail string // 附加说明（如 group / device）
	Err    error  // 底层错误（仅 transport）
}

// 哨兵错误，仅按 Kind 比较，用于 errors.Is
var (
	ErrInvalidSymbol  = &Error{Kind: KindInvalidSymbol}
	ErrInvalidAddress = &Error{Kind: KindInvalidAddress}
	ErrInvalidCommand = &Error{Kind: KindInvalidCommand}
	ErrTransport      = &Error{Kind: KindTransport}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同类别即匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf 提取错误类别，非协议错误返回 0
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func InvalidSymbol(sym byte) *Error {
	return &Error{Kind: KindInvalidSymbol, Value: string([]byte{sym})}
}

func InvalidAddress(detail, value string) *Error {
	return &Error{Kind: KindInvalidAddress, Detail: detail, Value: value}
}

func InvalidCommand(value string) *Error {
	return &Error{Kind: KindInvalidCommand, Value: value}
}

func TransportError(endpoint string, err error) *Error {
	return &Error{Kind: KindTransport, Value: endpoint, Err: err}
}
