// Package field 定义可编辑值与文本框之间的编解码约定。
//
// 每种值类型固定占用 N 个文本框 (N 为 Arity)，Serialize 总是成功，
// Deserialize 失败时返回 *DeserializeError，调用方负责保留上一次合法的值。
package field

import (
	"errors"
	"fmt"

	"psbt-editor/pkg/errno"
)

// Arity 字段占用的文本框数量，目前只有 1 和 2 两种
type Arity int

const (
	Single Arity = 1
	Pair   Arity = 2
)

// Codec 把类型 T 的值与 Arity() 个字符串互相转换
type Codec[T any] interface {
	Arity() Arity
	Serialize(v T) []string
	Deserialize(slots []string) (T, error)
}

// Kind 区分解码失败的原因
type Kind int

const (
	KindArity Kind = iota
	KindBase64
	KindPsbt
	KindHex
	KindStructure
	KindKey
	KindPath
	KindSighash
	KindFingerprint
)

var kindErrno = map[Kind]errno.Errno{
	KindArity:       errno.ErrArity,
	KindBase64:      errno.ErrBase64,
	KindPsbt:        errno.ErrPsbtFormat,
	KindHex:         errno.ErrHex,
	KindStructure:   errno.ErrStructure,
	KindKey:         errno.ErrKeyFormat,
	KindPath:        errno.ErrPathFormat,
	KindSighash:     errno.ErrSighashType,
	KindFingerprint: errno.ErrFingerprint,
}

// DeserializeError 一次解码尝试的失败结果
type DeserializeError struct {
	Kind Kind
	Err  error
}

func (e *DeserializeError) Error() string {
	if e.Err == nil {
		return e.Errno().Message
	}
	return fmt.Sprintf("%s: %v", e.Errno().Message, e.Err)
}

func (e *DeserializeError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, errno.ErrHex) 这类按错误码的判断成立
func (e *DeserializeError) Is(target error) bool {
	return e.Errno().Is(target)
}

// Errno 返回该失败对应的错误码
func (e *DeserializeError) Errno() errno.Errno {
	if code, ok := kindErrno[e.Kind]; ok {
		return code
	}
	return errno.InternalServerError
}

func fail(kind Kind, err error) error {
	return &DeserializeError{Kind: kind, Err: err}
}

// KindOf 返回 err 链上的 DeserializeError 类型，不是解码错误时 ok 为 false
func KindOf(err error) (Kind, bool) {
	var de *DeserializeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

func checkArity(want Arity, slots []string) error {
	if len(slots) != int(want) {
		return fail(KindArity, fmt.Errorf("want %d slots, got %d", want, len(slots)))
	}
	return nil
}

// Option 可缺省的值
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// Get 返回值以及是否存在
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrZero 缺省时返回 T 的零值
func (o Option[T]) OrZero() T {
	return o.value
}

type optionCodec[T any] struct {
	inner Codec[T]
}

// Optional 由 inner 派生出可缺省版本:
// 任意一个文本框为空即视为缺省，只有全部非空时才调用 inner 解码；
// 缺省值序列化为 N 个空字符串。
func Optional[T any](inner Codec[T]) Codec[Option[T]] {
	return optionCodec[T]{inner: inner}
}

func (c optionCodec[T]) Arity() Arity {
	return c.inner.Arity()
}

func (c optionCodec[T]) Serialize(v Option[T]) []string {
	if value, ok := v.Get(); ok {
		return c.inner.Serialize(value)
	}
	return make([]string, c.inner.Arity())
}

func (c optionCodec[T]) Deserialize(slots []string) (Option[T], error) {
	if err := checkArity(c.inner.Arity(), slots); err != nil {
		return None[T](), err
	}
	for _, s := range slots {
		if s == "" {
			return None[T](), nil
		}
	}
	v, err := c.inner.Deserialize(slots)
	if err != nil {
		return None[T](), err
	}
	return Some(v), nil
}

// Tagged 附带路由标签的值，标签不参与编解码
type Tagged[X, T any] struct {
	Tag   X
	Value T
}

type taggedCodec[X, T any] struct {
	tag   X
	inner Codec[T]
}

// WithTag 用 inner 编解码 payload，解码结果附上固定的 tag
func WithTag[X, T any](tag X, inner Codec[T]) Codec[Tagged[X, T]] {
	return taggedCodec[X, T]{tag: tag, inner: inner}
}

func (c taggedCodec[X, T]) Arity() Arity {
	return c.inner.Arity()
}

func (c taggedCodec[X, T]) Serialize(v Tagged[X, T]) []string {
	return c.inner.Serialize(v.Value)
}

func (c taggedCodec[X, T]) Deserialize(slots []string) (Tagged[X, T], error) {
	v, err := c.inner.Deserialize(slots)
	if err != nil {
		return Tagged[X, T]{}, err
	}
	return Tagged[X, T]{Tag: c.tag, Value: v}, nil
}

// Parse 是 Deserialize 的变参写法
func Parse[T any](c Codec[T], slots ...string) (T, error) {
	return c.Deserialize(slots)
}
