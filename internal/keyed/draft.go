package keyed

import "psbt-editor/internal/field"

// Draft 尚未提交的新条目，key 和 value 分别填写
type Draft[K, V any] struct {
	key   field.Option[K]
	value field.Option[V]
}

// SetKey 更新 key 部分，None 表示清空
func (d *Draft[K, V]) SetKey(k field.Option[K]) {
	d.key = k
}

// SetValue 更新 value 部分，None 表示清空
func (d *Draft[K, V]) SetValue(v field.Option[V]) {
	d.value = v
}

func (d *Draft[K, V]) Key() field.Option[K] {
	return d.key
}

func (d *Draft[K, V]) Value() field.Option[V] {
	return d.value
}

// Ready key 和 value 都已填写
func (d *Draft[K, V]) Ready() bool {
	return d.key.IsSome() && d.value.IsSome()
}

// Commit 两部分都填写时返回对应的 Set 并清空草稿；否则什么也不做
func (d *Draft[K, V]) Commit() (Update[K, V], bool) {
	k, hasKey := d.key.Get()
	v, hasValue := d.value.Get()
	if !hasKey || !hasValue {
		return Update[K, V]{}, false
	}
	d.Reset()
	return Set(k, v), true
}

// Reset 丢弃草稿
func (d *Draft[K, V]) Reset() {
	d.key = field.None[K]()
	d.value = field.None[V]()
}
