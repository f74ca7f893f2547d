package session

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"psbt-editor/internal/edit"
	"psbt-editor/pkg/errno"
)

// Target 字段所在的记录类型
type Target string

const (
	Input  Target = "input"
	Output Target = "output"
)

// ParseTarget 接受 input/inputs/output/outputs
func ParseTarget(s string) (Target, error) {
	switch s {
	case "input", "inputs", "in":
		return Input, nil
	case "output", "outputs", "out":
		return Output, nil
	}
	return "", errno.ErrUnknownField.WithMessage(fmt.Sprintf("unknown record type %q", s))
}

// records 把某一类记录的字段表、下标访问与操作包装放在一起
type records[R, O any] struct {
	target Target
	lookup func(name string) (edit.Spec[R, O], bool)
	count  func(doc *edit.Document) int
	at     func(doc *edit.Document, index int) *R
	wrap   func(index int, op O) edit.Operation
	drafts map[string]edit.DraftEditor[O]
}

func newInputs() *records[psbt.PInput, edit.InputOp] {
	return &records[psbt.PInput, edit.InputOp]{
		target: Input,
		lookup: edit.InputField,
		count:  (*edit.Document).NumInputs,
		at: func(doc *edit.Document, index int) *psbt.PInput {
			return &doc.Packet.Inputs[index]
		},
		wrap: func(index int, op edit.InputOp) edit.Operation {
			return edit.MutateInput{Index: index, Op: op}
		},
		drafts: map[string]edit.DraftEditor[edit.InputOp]{},
	}
}

func newOutputs() *records[psbt.POutput, edit.OutputOp] {
	return &records[psbt.POutput, edit.OutputOp]{
		target: Output,
		lookup: edit.OutputField,
		count:  (*edit.Document).NumOutputs,
		at: func(doc *edit.Document, index int) *psbt.POutput {
			return &doc.Packet.Outputs[index]
		},
		wrap: func(index int, op edit.OutputOp) edit.Operation {
			return edit.MutateOutput{Index: index, Op: op}
		},
		drafts: map[string]edit.DraftEditor[edit.OutputOp]{},
	}
}

func (r *records[R, O]) errorKey(index int, name string) string {
	return fmt.Sprintf("%s/%d/%s", r.target, index, name)
}

// field 校验文档、下标与字段名
func (r *records[R, O]) field(doc *edit.Document, index int, name string) (edit.Spec[R, O], error) {
	if !doc.Loaded() {
		return edit.Spec[R, O]{}, errno.ErrNoDocument
	}
	if index < 0 || index >= r.count(doc) {
		return edit.Spec[R, O]{}, errno.ErrIndexRange.WithMessage(fmt.Sprintf("%s #%d does not exist", r.target, index))
	}
	spec, ok := r.lookup(name)
	if !ok {
		return edit.Spec[R, O]{}, errno.ErrUnknownField.WithMessage(fmt.Sprintf("%s has no field %q", r.target, name))
	}
	return spec, nil
}

func (r *records[R, O]) keyedField(doc *edit.Document, index int, name string) (edit.KeyedSpec[R, O], error) {
	spec, err := r.field(doc, index, name)
	if err != nil {
		return nil, err
	}
	ks := spec.Keyed()
	if ks == nil {
		return nil, errno.ErrNotKeyed.WithMessage(fmt.Sprintf("%s is not a keyed collection", name))
	}
	return ks, nil
}

// draft 取出 (或新建) 某个键值字段的草稿
func (r *records[R, O]) draft(ks edit.KeyedSpec[R, O], key string) edit.DraftEditor[O] {
	d, ok := r.drafts[key]
	if !ok {
		d = ks.NewDraft()
		r.drafts[key] = d
	}
	return d
}

func (r *records[R, O]) draftTexts(out map[string]edit.EntryText) {
	for key, d := range r.drafts {
		out[key] = d.Text()
	}
}

func (r *records[R, O]) resetDrafts() {
	clear(r.drafts)
}
