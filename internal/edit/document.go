// Package edit 定义对 PSBT 文档的全部修改操作。
//
// 每个操作的 Apply 只修改它指向的那一个文档/记录/字段，并返回能撤销本次修改的逆操作。
// 不存在没有逆操作的修改；无法定位目标 (下标越界、文档未加载) 时降级为 NoOp。
package edit

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

// Document 可编辑文档，Packet 为 nil 表示尚未加载
type Document struct {
	Packet *psbt.Packet
}

// Loaded 是否已加载文档
func (d *Document) Loaded() bool {
	return d.Packet != nil
}

// NumInputs 当前文档的输入数量，未加载时为 0
func (d *Document) NumInputs() int {
	if d.Packet == nil {
		return 0
	}
	return len(d.Packet.Inputs)
}

// NumOutputs 当前文档的输出数量，未加载时为 0
func (d *Document) NumOutputs() int {
	if d.Packet == nil {
		return 0
	}
	return len(d.Packet.Outputs)
}

// Operation 对文档的一次修改
type Operation interface {
	// Apply 修改 doc 并返回逆操作
	Apply(doc *Document) Operation
	fmt.Stringer

	operation()
}

// NoOp 不做任何修改
type NoOp struct{}

func (NoOp) Apply(*Document) Operation { return NoOp{} }
func (NoOp) String() string            { return "noop" }
func (NoOp) operation()                {}

// ReplaceDocument 整体替换文档，Packet 为 nil 时清空
type ReplaceDocument struct {
	Packet *psbt.Packet
}

func (op ReplaceDocument) Apply(doc *Document) Operation {
	old := doc.Packet
	doc.Packet = op.Packet
	return ReplaceDocument{Packet: old}
}

func (op ReplaceDocument) String() string {
	if op.Packet == nil {
		return "replace document (none)"
	}
	return fmt.Sprintf("replace document (%d inputs, %d outputs)", len(op.Packet.Inputs), len(op.Packet.Outputs))
}

func (ReplaceDocument) operation() {}

// MutateInput 把字段级操作路由到 Inputs[Index]
type MutateInput struct {
	Index int
	Op    InputOp
}

func (op MutateInput) Apply(doc *Document) Operation {
	if op.Op == nil || op.Index < 0 || op.Index >= doc.NumInputs() {
		return NoOp{}
	}
	inverse := op.Op.ApplyInput(&doc.Packet.Inputs[op.Index])
	return MutateInput{Index: op.Index, Op: inverse}
}

func (op MutateInput) String() string {
	return fmt.Sprintf("input #%d: %v", op.Index, op.Op)
}

func (MutateInput) operation() {}

// MutateOutput 把字段级操作路由到 Outputs[Index]
type MutateOutput struct {
	Index int
	Op    OutputOp
}

func (op MutateOutput) Apply(doc *Document) Operation {
	if op.Op == nil || op.Index < 0 || op.Index >= doc.NumOutputs() {
		return NoOp{}
	}
	inverse := op.Op.ApplyOutput(&doc.Packet.Outputs[op.Index])
	return MutateOutput{Index: op.Index, Op: inverse}
}

func (op MutateOutput) String() string {
	return fmt.Sprintf("output #%d: %v", op.Index, op.Op)
}

func (MutateOutput) operation() {}
