// Package keyed 编辑 key 唯一的映射 (公钥 -> 签名、公钥 -> 派生路径)。
//
// Map 按 key 排序，用于展示；Seq 保持文档中的原有顺序，用于修改记录。
package keyed

import (
	"slices"
)

// Entry 映射中的一项
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Map 按 cmp 排序的映射，key 唯一
type Map[K, V any] struct {
	cmp     func(a, b K) int
	entries []Entry[K, V]
}

// New 创建空映射
func New[K, V any](cmp func(a, b K) int) *Map[K, V] {
	return &Map[K, V]{cmp: cmp}
}

// FromEntries 由任意顺序的条目构造映射，重复 key 以后出现的为准
func FromEntries[K, V any](cmp func(a, b K) int, entries []Entry[K, V]) *Map[K, V] {
	m := New[K, V](cmp)
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *Map[K, V]) search(k K) (int, bool) {
	return slices.BinarySearchFunc(m.entries, k, func(e Entry[K, V], k K) int {
		return m.cmp(e.Key, k)
	})
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	if i, found := m.search(k); found {
		return m.entries[i].Value, true
	}
	var zero V
	return zero, false
}

// Set 插入或覆盖，返回被覆盖的旧值
func (m *Map[K, V]) Set(k K, v V) (V, bool) {
	i, found := m.search(k)
	if found {
		prev := m.entries[i].Value
		m.entries[i] = Entry[K, V]{Key: k, Value: v}
		return prev, true
	}
	m.entries = slices.Insert(m.entries, i, Entry[K, V]{Key: k, Value: v})
	var zero V
	return zero, false
}

// Insert 位置由 key 的顺序决定，i 被忽略
func (m *Map[K, V]) Insert(_ int, k K, v V) (V, bool) {
	return m.Set(k, v)
}

// Remove 删除 k，返回被删除的值及其下标
func (m *Map[K, V]) Remove(k K) (V, int, bool) {
	i, found := m.search(k)
	if !found {
		var zero V
		return zero, -1, false
	}
	removed := m.entries[i].Value
	m.entries = slices.Delete(m.entries, i, i+1)
	return removed, i, true
}

// Entries 按 key 顺序返回条目副本
func (m *Map[K, V]) Entries() []Entry[K, V] {
	return slices.Clone(m.entries)
}

// Seq 保持条目原有顺序的映射：覆盖在原位进行，新 key 追加在末尾。
// 用于直接编辑文档记录里的条目列表，不改变未被修改条目的位置。
type Seq[K, V any] struct {
	cmp     func(a, b K) int
	entries []Entry[K, V]
}

// NewSeq 按给定顺序装入条目
func NewSeq[K, V any](cmp func(a, b K) int, entries []Entry[K, V]) *Seq[K, V] {
	return &Seq[K, V]{cmp: cmp, entries: slices.Clone(entries)}
}

func (s *Seq[K, V]) index(k K) int {
	return slices.IndexFunc(s.entries, func(e Entry[K, V]) bool {
		return s.cmp(e.Key, k) == 0
	})
}

func (s *Seq[K, V]) Len() int {
	return len(s.entries)
}

// Set 已存在时原位覆盖，否则追加
func (s *Seq[K, V]) Set(k K, v V) (V, bool) {
	return s.Insert(len(s.entries), k, v)
}

// Insert 在下标 i 处插入 k，i 超出范围时取最近的端点；k 已存在时原位覆盖
func (s *Seq[K, V]) Insert(i int, k K, v V) (V, bool) {
	if j := s.index(k); j >= 0 {
		prev := s.entries[j].Value
		s.entries[j] = Entry[K, V]{Key: k, Value: v}
		return prev, true
	}
	i = min(max(i, 0), len(s.entries))
	s.entries = slices.Insert(s.entries, i, Entry[K, V]{Key: k, Value: v})
	var zero V
	return zero, false
}

// Remove 删除 k，返回被删除的值及其下标
func (s *Seq[K, V]) Remove(k K) (V, int, bool) {
	i := s.index(k)
	if i < 0 {
		var zero V
		return zero, -1, false
	}
	removed := s.entries[i].Value
	s.entries = slices.Delete(s.entries, i, i+1)
	return removed, i, true
}

// Entries 按当前顺序返回条目副本
func (s *Seq[K, V]) Entries() []Entry[K, V] {
	return slices.Clone(s.entries)
}

var (
	_ Store[string, int] = (*Map[string, int])(nil)
	_ Store[string, int] = (*Seq[string, int])(nil)
)
