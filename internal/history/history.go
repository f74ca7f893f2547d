// Package history 记录已应用操作的逆操作，支持撤销与重做。
//
// 每个槽位保存的是"对当前文档应用即可抵消该槽位最近一次效果"的操作：
// 撤销或重做时应用槽位中的操作，并用得到的逆操作覆盖该槽位。
package history

import (
	"psbt-editor/internal/edit"
)

// History 按位置寻址的操作日志，position 之前的槽位可撤销，之后的可重做
type History struct {
	items    []edit.Operation
	position int
}

// New 创建空日志
func New() *History {
	return &History{}
}

// Add 记录刚应用的操作的逆操作。
// 尚未重做的槽位会被丢弃，旧的重做分支不再可达。
func (h *History) Add(inverse edit.Operation) {
	h.items = append(h.items[:h.position], inverse)
	h.position++
}

// Do 应用 op 并记录其逆操作
func (h *History) Do(doc *edit.Document, op edit.Operation) edit.Operation {
	inverse := op.Apply(doc)
	h.Add(inverse)
	return inverse
}

// Undo 撤销最近一次效果；没有可撤销的内容时返回 false
func (h *History) Undo(doc *edit.Document) bool {
	if h.position == 0 {
		return false
	}
	i := h.position - 1
	h.items[i] = h.items[i].Apply(doc)
	h.position = i
	return true
}

// Redo 重做最近一次撤销；没有可重做的内容时返回 false
func (h *History) Redo(doc *edit.Document) bool {
	if h.position >= len(h.items) {
		return false
	}
	h.items[h.position] = h.items[h.position].Apply(doc)
	h.position++
	return true
}

func (h *History) Len() int {
	return len(h.items)
}

func (h *History) Position() int {
	return h.position
}

func (h *History) CanUndo() bool {
	return h.position > 0
}

func (h *History) CanRedo() bool {
	return h.position < len(h.items)
}

// Slots 返回每个槽位当前内容的描述
func (h *History) Slots() []string {
	slots := make([]string, 0, len(h.items))
	for _, op := range h.items {
		slots = append(slots, op.String())
	}
	return slots
}
