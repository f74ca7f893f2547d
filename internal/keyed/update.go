package keyed

import (
	"slices"
)

// StepKind 单步修改的类型
type StepKind int

const (
	StepSet StepKind = iota
	StepRemove
	StepRename
	// StepInsert 只出现在逆操作中，把删除的条目放回原来的下标
	StepInsert
)

func (k StepKind) String() string {
	switch k {
	case StepSet:
		return "set"
	case StepRemove:
		return "remove"
	case StepRename:
		return "rename"
	case StepInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Step 单步修改。Rename 时 Key 为旧 key，NewKey 为新 key；Insert 时 Index 为目标下标。
type Step[K, V any] struct {
	Kind   StepKind
	Key    K
	NewKey K
	Value  V
	Index  int
}

// Store Update 作用的键值存储
type Store[K, V any] interface {
	// Set 插入或覆盖 k，返回被覆盖的旧值
	Set(k K, v V) (V, bool)
	// Insert 在下标 i 处插入 k；k 已存在时原位覆盖
	Insert(i int, k K, v V) (V, bool)
	// Remove 删除 k，返回被删除的值及其下标
	Remove(k K) (V, int, bool)
}

// Update 一组作为整体应用和撤销的修改
type Update[K, V any] struct {
	steps []Step[K, V]
}

// Set 插入或覆盖 k
func Set[K, V any](k K, v V) Update[K, V] {
	return Update[K, V]{steps: []Step[K, V]{{Kind: StepSet, Key: k, Value: v}}}
}

// Remove 删除 k
func Remove[K, V any](k K) Update[K, V] {
	return Update[K, V]{steps: []Step[K, V]{{Kind: StepRemove, Key: k}}}
}

// Rename 把 oldKey 的值移到 newKey 下：先 Remove(oldKey) 再在同一位置 Set(newKey, value)，
// 两步在同一个 Update 中完成，外部看不到两个 key 同时缺失的中间状态。
// newKey 原有的值会被覆盖，逆操作会恢复它。
func Rename[K, V any](oldKey, newKey K) Update[K, V] {
	return Update[K, V]{steps: []Step[K, V]{{Kind: StepRename, Key: oldKey, NewKey: newKey}}}
}

// Steps 返回步骤副本
func (u Update[K, V]) Steps() []Step[K, V] {
	return slices.Clone(u.steps)
}

// IsEmpty 没有任何步骤的 Update 应用后不改变映射
func (u Update[K, V]) IsEmpty() bool {
	return len(u.steps) == 0
}

// Apply 把 u 应用到 m 并返回逆操作。
// 逆操作按原下标放回删除的条目，应用后 m 的内容与顺序都与之前一致。
func (u Update[K, V]) Apply(m Store[K, V]) Update[K, V] {
	var undo [][]Step[K, V]

	for _, step := range u.steps {
		switch step.Kind {
		case StepSet:
			prev, existed := m.Set(step.Key, step.Value)
			undo = append(undo, []Step[K, V]{restore(step.Key, prev, existed)})
		case StepInsert:
			prev, existed := m.Insert(step.Index, step.Key, step.Value)
			undo = append(undo, []Step[K, V]{restore(step.Key, prev, existed)})
		case StepRemove:
			if removed, i, ok := m.Remove(step.Key); ok {
				undo = append(undo, []Step[K, V]{insertAt(i, step.Key, removed)})
			}
		case StepRename:
			value, i, ok := m.Remove(step.Key)
			if !ok {
				continue
			}
			prev, existed := m.Insert(i, step.NewKey, value)
			undo = append(undo, []Step[K, V]{
				restore(step.NewKey, prev, existed),
				insertAt(i, step.Key, value),
			})
		}
	}

	// 逆序拼接每一步的逆操作
	inverse := Update[K, V]{}
	for i := len(undo) - 1; i >= 0; i-- {
		inverse.steps = append(inverse.steps, undo[i]...)
	}
	return inverse
}

// restore 把 k 恢复为写入前的状态
func restore[K, V any](k K, prev V, existed bool) Step[K, V] {
	if existed {
		return Step[K, V]{Kind: StepSet, Key: k, Value: prev}
	}
	return Step[K, V]{Kind: StepRemove, Key: k}
}

func insertAt[K, V any](i int, k K, v V) Step[K, V] {
	return Step[K, V]{Kind: StepInsert, Key: k, Value: v, Index: i}
}
