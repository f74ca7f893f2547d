package edit

import (
	"fmt"

	"psbt-editor/internal/field"
	"psbt-editor/internal/keyed"
	"psbt-editor/pkg/errno"
)

func errNotScalar(name string) error {
	return errno.ErrKeyed.WithMessage(fmt.Sprintf("%s is a keyed collection", name))
}

// Half 草稿条目的 key 或 value 部分，作为解码结果的路由标签
type Half int

const (
	KeyHalf Half = iota
	ValueHalf
)

func (h Half) String() string {
	if h == KeyHalf {
		return "key"
	}
	return "value"
}

// EntryText 一个条目的文本形式
type EntryText struct {
	Key   []string `json:"key"`
	Value []string `json:"value"`
}

// KeyedSpec 键值集合字段的编辑接口。
// 所有方法先解码文本，解码失败时返回错误且不产生操作。
type KeyedSpec[R, O any] interface {
	KeyArity() field.Arity
	ValueArity() field.Arity
	// Entries 按 key 顺序返回当前条目的文本
	Entries(r *R) []EntryText
	Set(key, value []string) (O, error)
	Remove(key []string) (O, error)
	Rename(oldKey, newKey []string) (O, error)
	NewDraft() DraftEditor[O]
}

// DraftEditor 新条目草稿。空白文本清空对应部分；非法文本返回错误并保留原来的部分。
type DraftEditor[O any] interface {
	Set(half Half, slots []string) error
	// Commit 两部分都已填写时返回插入操作并清空草稿
	Commit() (O, bool)
	Text() EntryText
}

type keyedSpec[R, O, K, V any] struct {
	key     field.Codec[K]
	value   field.Codec[V]
	entries func(r *R) []keyed.Entry[K, V]
	wrap    func(u keyed.Update[K, V]) O
}

func (s keyedSpec[R, O, K, V]) KeyArity() field.Arity   { return s.key.Arity() }
func (s keyedSpec[R, O, K, V]) ValueArity() field.Arity { return s.value.Arity() }

func (s keyedSpec[R, O, K, V]) Entries(r *R) []EntryText {
	entries := s.entries(r)
	texts := make([]EntryText, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, EntryText{Key: s.key.Serialize(e.Key), Value: s.value.Serialize(e.Value)})
	}
	return texts
}

func (s keyedSpec[R, O, K, V]) Set(key, value []string) (O, error) {
	var zero O
	k, err := s.key.Deserialize(key)
	if err != nil {
		return zero, err
	}
	v, err := s.value.Deserialize(value)
	if err != nil {
		return zero, err
	}
	return s.wrap(keyed.Set(k, v)), nil
}

func (s keyedSpec[R, O, K, V]) Remove(key []string) (O, error) {
	k, err := s.key.Deserialize(key)
	if err != nil {
		var zero O
		return zero, err
	}
	return s.wrap(keyed.Remove[K, V](k)), nil
}

func (s keyedSpec[R, O, K, V]) Rename(oldKey, newKey []string) (O, error) {
	var zero O
	from, err := s.key.Deserialize(oldKey)
	if err != nil {
		return zero, err
	}
	to, err := s.key.Deserialize(newKey)
	if err != nil {
		return zero, err
	}
	return s.wrap(keyed.Rename[K, V](from, to)), nil
}

func (s keyedSpec[R, O, K, V]) NewDraft() DraftEditor[O] {
	return &draftEditor[O, K, V]{
		key:   field.WithTag(KeyHalf, field.Optional(s.key)),
		value: field.WithTag(ValueHalf, field.Optional(s.value)),
		wrap:  s.wrap,
	}
}

type draftEditor[O, K, V any] struct {
	draft keyed.Draft[K, V]
	key   field.Codec[field.Tagged[Half, field.Option[K]]]
	value field.Codec[field.Tagged[Half, field.Option[V]]]
	wrap  func(u keyed.Update[K, V]) O
}

func (d *draftEditor[O, K, V]) Set(half Half, slots []string) error {
	switch half {
	case KeyHalf:
		msg, err := d.key.Deserialize(slots)
		if err != nil {
			return err
		}
		d.route(msg.Tag, msg.Value, field.None[V]())
	case ValueHalf:
		msg, err := d.value.Deserialize(slots)
		if err != nil {
			return err
		}
		d.route(msg.Tag, field.None[K](), msg.Value)
	default:
		return fmt.Errorf("unknown draft half %d", half)
	}
	return nil
}

// route 按标签把解码结果写入草稿对应的部分
func (d *draftEditor[O, K, V]) route(tag Half, k field.Option[K], v field.Option[V]) {
	if tag == KeyHalf {
		d.draft.SetKey(k)
		return
	}
	d.draft.SetValue(v)
}

func (d *draftEditor[O, K, V]) Commit() (O, bool) {
	update, ok := d.draft.Commit()
	if !ok {
		var zero O
		return zero, false
	}
	return d.wrap(update), true
}

func (d *draftEditor[O, K, V]) Text() EntryText {
	return EntryText{
		Key:   d.key.Serialize(field.Tagged[Half, field.Option[K]]{Tag: KeyHalf, Value: d.draft.Key()}),
		Value: d.value.Serialize(field.Tagged[Half, field.Option[V]]{Tag: ValueHalf, Value: d.draft.Value()}),
	}
}
