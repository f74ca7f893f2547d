package history

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/edit/edittest"
	"psbt-editor/internal/field"
)

func setWitnessScript(index int, script []byte) edit.Operation {
	return edit.MutateInput{Index: index, Op: edit.SetWitnessScript{Script: field.Some(script)}}
}

func TestBoundaries(t *testing.T) {
	h := New()
	doc := &edit.Document{}

	assert.False(t, h.Undo(doc))
	assert.False(t, h.Redo(doc))
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, h.Position())
}

func TestEndToEnd(t *testing.T) {
	h := New()
	doc := &edit.Document{}
	d0 := edittest.NewPacket()

	// 1. 加载文档
	h.Do(doc, edit.ReplaceDocument{Packet: d0})
	assert.Same(t, d0, doc.Packet)

	require.True(t, h.Undo(doc))
	assert.Nil(t, doc.Packet)

	require.True(t, h.Redo(doc))
	assert.Same(t, d0, doc.Packet)

	// 2. 修改第 0 个输入的见证脚本
	scriptX := edittest.MustHex(edittest.OpTrue)
	previous := d0.Inputs[0].WitnessScript

	inverse := h.Do(doc, setWitnessScript(0, scriptX))
	assert.Equal(t, scriptX, doc.Packet.Inputs[0].WitnessScript)
	assert.Equal(t, edit.MutateInput{Index: 0, Op: edit.SetWitnessScript{Script: field.None[[]byte]()}}, inverse)
	assert.Equal(t, 2, h.Len())

	require.True(t, h.Undo(doc))
	assert.Equal(t, previous, doc.Packet.Inputs[0].WitnessScript)
	assert.True(t, h.CanRedo())

	// 3. 撤销后的新修改截断重做分支
	h.Do(doc, edit.MutateOutput{Index: 0, Op: edit.SetRedeemScript{Script: field.Some(scriptX)}})
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.Redo(doc))
	assert.Nil(t, doc.Packet.Inputs[0].WitnessScript)

	// 全部撤销回到空文档
	require.True(t, h.Undo(doc))
	require.True(t, h.Undo(doc))
	assert.Nil(t, doc.Packet)
	assert.False(t, h.Undo(doc))
	assert.Nil(t, d0.Outputs[0].RedeemScript)
}

func TestUndoRedoToggle(t *testing.T) {
	h := New()
	doc := &edit.Document{}

	h.Do(doc, edit.ReplaceDocument{Packet: edittest.NewPacket()})
	h.Do(doc, setWitnessScript(0, []byte{0x51}))
	h.Do(doc, setWitnessScript(1, []byte{0x52}))
	h.Do(doc, setWitnessScript(0, []byte{0x53}))
	require.True(t, h.Undo(doc))

	// 0 < position < len
	for p := h.Position(); p > 0; p-- {
		require.Equal(t, p, h.Position())
		slots := h.Slots()
		witness0 := doc.Packet.Inputs[0].WitnessScript
		witness1 := doc.Packet.Inputs[1].WitnessScript

		require.True(t, h.Undo(doc))
		require.True(t, h.Redo(doc))

		assert.Equal(t, slots, h.Slots())
		assert.Equal(t, p, h.Position())
		assert.Equal(t, witness0, doc.Packet.Inputs[0].WitnessScript)
		assert.Equal(t, witness1, doc.Packet.Inputs[1].WitnessScript)

		require.True(t, h.Undo(doc))
	}

	// 再全部重做回到最后的状态
	for h.Redo(doc) {
	}
	assert.Equal(t, 4, h.Position())
	assert.Equal(t, []byte{0x53}, doc.Packet.Inputs[0].WitnessScript)
	assert.Equal(t, []byte{0x52}, doc.Packet.Inputs[1].WitnessScript)
}

func TestUndoAcrossReplace(t *testing.T) {
	h := New()
	doc := &edit.Document{}
	first := edittest.NewPacket()
	second, err := psbt.New([]*wire.OutPoint{{Index: 9}}, nil, 2, 0, []uint32{wire.MaxTxInSequenceNum})
	require.NoError(t, err)

	h.Do(doc, edit.ReplaceDocument{Packet: first})
	h.Do(doc, setWitnessScript(1, []byte{0x51}))
	h.Do(doc, edit.ReplaceDocument{Packet: second})

	// 新文档只有一个输入，越界的修改降级为 NoOp 但仍占用一个槽位
	h.Do(doc, setWitnessScript(1, []byte{0x52}))
	assert.Equal(t, "noop", h.Slots()[3])

	require.True(t, h.Undo(doc))
	require.True(t, h.Undo(doc))
	assert.Same(t, first, doc.Packet)
	assert.Equal(t, []byte{0x51}, doc.Packet.Inputs[1].WitnessScript)

	require.True(t, h.Undo(doc))
	assert.Nil(t, doc.Packet.Inputs[1].WitnessScript)
}
