package edit

import (
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbt-editor/internal/edit/edittest"
	"psbt-editor/internal/field"
	"psbt-editor/internal/keyed"
)

var (
	pubG  = edittest.MustHex(edittest.PubKeyG)
	pub2G = edittest.MustHex(edittest.PubKey2G)
)

// fieldTexts 文档中全部字段的文本快照，用于比较前后状态
func fieldTexts(doc *Document) map[string]any {
	texts := map[string]any{}
	for i := range doc.Packet.Inputs {
		for _, spec := range InputFields {
			key := fmt.Sprintf("input/%d/%s", i, spec.Name)
			if spec.IsKeyed() {
				texts[key] = spec.Keyed().Entries(&doc.Packet.Inputs[i])
			} else {
				texts[key] = spec.Read(&doc.Packet.Inputs[i])
			}
		}
	}
	for i := range doc.Packet.Outputs {
		for _, spec := range OutputFields {
			key := fmt.Sprintf("output/%d/%s", i, spec.Name)
			if spec.IsKeyed() {
				texts[key] = spec.Keyed().Entries(&doc.Packet.Outputs[i])
			} else {
				texts[key] = spec.Read(&doc.Packet.Outputs[i])
			}
		}
	}
	return texts
}

func prevTx() *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 3}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(42_000, edittest.MustHex(edittest.P2WPKH)))
	return tx
}

func TestOperationsAreSelfInverse(t *testing.T) {
	source := field.KeySource{Fingerprint: 1, Path: []uint32{0, 1}}

	tests := []struct {
		name string
		op   Operation
	}{
		{"Replace witness utxo", MutateInput{0, SetWitnessUtxo{field.Some(wire.NewTxOut(1, []byte{0x51}))}}},
		{"Clear witness utxo", MutateInput{0, SetWitnessUtxo{field.None[*wire.TxOut]()}}},
		{"Set non witness utxo", MutateInput{1, SetNonWitnessUtxo{field.Some(prevTx())}}},
		{"Change sighash", MutateInput{0, SetSighashType{field.Some(txscript.SigHashSingle)}}},
		{"Clear sighash", MutateInput{0, SetSighashType{field.None[txscript.SigHashType]()}}},
		{"Set redeem script", MutateInput{1, SetRedeemScript{field.Some([]byte{0x51})}}},
		{"Set witness script", MutateInput{0, SetWitnessScript{field.Some(edittest.MustHex(edittest.Multisig))}}},
		{"Set final script sig", MutateInput{0, SetFinalScriptSig{field.Some([]byte{0x00})}}},
		{"Set final witness", MutateInput{0, SetFinalScriptWitness{field.Some([]byte{0x01, 0x01, 0xaa})}}},
		{"Set key spend sig", MutateInput{0, SetTaprootKeySpendSig{field.Some(make([]byte, 64))}}},
		{"Set internal key", MutateInput{1, SetTaprootInternalKey{field.Some(edittest.MustHex(edittest.XOnlyG))}}},
		{"Set merkle root", MutateInput{1, SetTaprootMerkleRoot{field.Some(make([]byte, 32))}}},
		{"Add partial sig", MutateInput{0, UpdatePartialSigs{keyed.Set(pubG, []byte{0x30, 0x01})}}},
		{"Add derivation", MutateInput{0, UpdateBip32Derivation{keyed.Set(pub2G, source)}}},
		{"Rename derivation", MutateInput{0, UpdateBip32Derivation{keyed.Rename[[]byte, field.KeySource](pubG, pub2G)}}},
		{"Remove derivation", MutateInput{0, UpdateBip32Derivation{keyed.Remove[[]byte, field.KeySource](pubG)}}},
		{"Clear output witness script", MutateOutput{1, SetWitnessScript{field.None[[]byte]()}}},
		{"Set output redeem script", MutateOutput{0, SetRedeemScript{field.Some([]byte{0x51})}}},
		{"Set output internal key", MutateOutput{0, SetTaprootInternalKey{field.Some(edittest.MustHex(edittest.XOnlyG))}}},
		{"Add output derivation", MutateOutput{1, UpdateBip32Derivation{keyed.Set(pubG, source)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Packet: edittest.NewPacket()}
			before := fieldTexts(doc)

			inverse := tt.op.Apply(doc)
			after := fieldTexts(doc)
			assert.NotEqual(t, before, after)

			redo := inverse.Apply(doc)
			assert.Equal(t, edittest.NewPacket(), doc.Packet)

			again := redo.Apply(doc)
			assert.Equal(t, after, fieldTexts(doc))
			assert.Equal(t, inverse.String(), again.String())
		})
	}
}

func TestMutateOutOfRange(t *testing.T) {
	doc := &Document{Packet: edittest.NewPacket()}
	op := SetRedeemScript{field.Some([]byte{0x51})}

	assert.Equal(t, NoOp{}, MutateInput{Index: 2, Op: op}.Apply(doc))
	assert.Equal(t, NoOp{}, MutateInput{Index: -1, Op: op}.Apply(doc))
	assert.Equal(t, NoOp{}, MutateOutput{Index: 5, Op: op}.Apply(doc))
	assert.Equal(t, NoOp{}, MutateInput{Index: 0}.Apply(doc))
	assert.Equal(t, edittest.NewPacket(), doc.Packet)

	empty := &Document{}
	assert.Equal(t, NoOp{}, MutateInput{Index: 0, Op: op}.Apply(empty))
	assert.False(t, empty.Loaded())
}

func TestReplaceDocument(t *testing.T) {
	doc := &Document{}
	packet := edittest.NewPacket()

	inverse := ReplaceDocument{Packet: packet}.Apply(doc)
	assert.Same(t, packet, doc.Packet)
	assert.Equal(t, ReplaceDocument{}, inverse)
	assert.Equal(t, 2, doc.NumInputs())
	assert.Equal(t, 2, doc.NumOutputs())

	redo := inverse.Apply(doc)
	assert.Nil(t, doc.Packet)
	assert.Equal(t, ReplaceDocument{Packet: packet}, redo)
}

func TestFieldTables(t *testing.T) {
	seen := map[string]bool{}
	for _, spec := range InputFields {
		assert.False(t, seen[spec.Name], spec.Name)
		seen[spec.Name] = true
		assert.Equal(t, spec.IsKeyed(), spec.Keyed() != nil)
	}

	_, ok := InputField("witness_utxo")
	assert.True(t, ok)
	_, ok = OutputField("witness_utxo")
	assert.False(t, ok)
	_, ok = OutputField("bip32_derivation")
	assert.True(t, ok)
}

func TestScalarField(t *testing.T) {
	packet := edittest.NewPacket()

	sighash, ok := InputField("sighash_type")
	require.True(t, ok)
	assert.Equal(t, []string{"SIGHASH_ALL"}, sighash.Read(&packet.Inputs[0]))
	assert.Equal(t, []string{""}, sighash.Read(&packet.Inputs[1]))

	script, ok := InputField("witness_script")
	require.True(t, ok)
	assert.Equal(t, field.Single, script.Arity)

	op, err := script.Parse([]string{edittest.Multisig})
	require.NoError(t, err)
	assert.Equal(t, SetWitnessScript{Script: field.Some(edittest.MustHex(edittest.Multisig))}, op)

	op, err = script.Parse([]string{""})
	require.NoError(t, err)
	assert.Equal(t, SetWitnessScript{Script: field.None[[]byte]()}, op)

	_, err = script.Parse([]string{"zz"})
	kind, ok := field.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, field.KindHex, kind)

	utxo, _ := InputField("witness_utxo")
	assert.Equal(t, field.TxOut.Serialize(packet.Inputs[0].WitnessUtxo), utxo.Read(&packet.Inputs[0]))

	sigs, _ := InputField("partial_sigs")
	_, err = sigs.Parse([]string{"00"})
	assert.Error(t, err)
	assert.Nil(t, sigs.Read(&packet.Inputs[0]))
}

func TestKeyedFieldRename(t *testing.T) {
	doc := &Document{Packet: edittest.NewPacket()}
	spec, _ := InputField("bip32_derivation")
	ks := spec.Keyed()
	require.NotNil(t, ks)
	assert.Equal(t, field.Single, ks.KeyArity())
	assert.Equal(t, field.Pair, ks.ValueArity())

	assert.Equal(t, []EntryText{{
		Key:   []string{edittest.PubKeyG},
		Value: []string{"d90c6a4f", "m/84'/0'/0'/0/1"},
	}}, ks.Entries(&doc.Packet.Inputs[0]))

	op, err := ks.Rename([]string{edittest.PubKeyG}, []string{edittest.PubKey2G})
	require.NoError(t, err)

	inverse := MutateInput{Index: 0, Op: op}.Apply(doc)
	assert.Equal(t, []EntryText{{
		Key:   []string{edittest.PubKey2G},
		Value: []string{"d90c6a4f", "m/84'/0'/0'/0/1"},
	}}, ks.Entries(&doc.Packet.Inputs[0]))

	// 一次撤销恢复整个改名
	inverse.Apply(doc)
	assert.Equal(t, edittest.NewPacket(), doc.Packet)

	_, err = ks.Rename([]string{edittest.PubKeyG}, []string{"02ff"})
	kind, _ := field.KindOf(err)
	assert.Equal(t, field.KindKey, kind)

	_, err = ks.Set([]string{edittest.PubKeyG}, []string{"d90c6a4f", "x/1"})
	kind, _ = field.KindOf(err)
	assert.Equal(t, field.KindPath, kind)
}

func TestKeyedFieldSetRemove(t *testing.T) {
	doc := &Document{Packet: edittest.NewPacket()}
	spec, _ := InputField("partial_sigs")
	ks := spec.Keyed()

	op, err := ks.Set([]string{edittest.PubKey2G}, []string{"3001"})
	require.NoError(t, err)
	MutateInput{Index: 1, Op: op}.Apply(doc)

	op, err = ks.Set([]string{edittest.PubKeyG}, []string{"3002"})
	require.NoError(t, err)
	MutateInput{Index: 1, Op: op}.Apply(doc)

	// 列表按公钥排序，记录本身保持写入顺序
	assert.Equal(t, [][]byte{pub2G, pubG}, sigKeys(doc.Packet.Inputs[1].PartialSigs))
	assert.Equal(t, []EntryText{
		{Key: []string{edittest.PubKeyG}, Value: []string{"3002"}},
		{Key: []string{edittest.PubKey2G}, Value: []string{"3001"}},
	}, ks.Entries(&doc.Packet.Inputs[1]))

	op, err = ks.Remove([]string{edittest.PubKeyG})
	require.NoError(t, err)
	inverse := MutateInput{Index: 1, Op: op}.Apply(doc)
	assert.Len(t, doc.Packet.Inputs[1].PartialSigs, 1)

	inverse.Apply(doc)
	assert.Equal(t, []*psbt.PartialSig{
		{PubKey: pub2G, Signature: []byte{0x30, 0x01}},
		{PubKey: pubG, Signature: []byte{0x30, 0x02}},
	}, doc.Packet.Inputs[1].PartialSigs)
}

func sigKeys(sigs []*psbt.PartialSig) [][]byte {
	keys := make([][]byte, 0, len(sigs))
	for _, sig := range sigs {
		keys = append(keys, sig.PubKey)
	}
	return keys
}

// unsortedPacket 条目不按公钥排序，和解析外部 PSBT 得到的记录一样
func unsortedPacket() *psbt.Packet {
	packet := edittest.NewPacket()
	pub3G := edittest.MustHex(edittest.PubKey3G)
	packet.Inputs[1].PartialSigs = []*psbt.PartialSig{
		{PubKey: pub3G, Signature: []byte{0x30, 0x03}},
		{PubKey: pubG, Signature: []byte{0x30, 0x01}},
	}
	packet.Outputs[0].Bip32Derivation = []*psbt.Bip32Derivation{
		{PubKey: pub3G, MasterKeyFingerprint: 3, Bip32Path: []uint32{3}},
		{PubKey: pub2G, MasterKeyFingerprint: 2, Bip32Path: []uint32{2}},
		{PubKey: pubG, MasterKeyFingerprint: 1, Bip32Path: []uint32{1}},
	}
	return packet
}

func TestKeyedUpdatesRestoreRecordOrder(t *testing.T) {
	source := field.KeySource{Fingerprint: 9, Path: []uint32{9}}
	pub3G := edittest.MustHex(edittest.PubKey3G)

	tests := []struct {
		name string
		op   Operation
	}{
		{"Insert sig", MutateInput{1, UpdatePartialSigs{keyed.Set(pub2G, []byte{0x30, 0x02})}}},
		{"Overwrite sig", MutateInput{1, UpdatePartialSigs{keyed.Set(pubG, []byte{0x30, 0xff})}}},
		{"Remove first sig", MutateInput{1, UpdatePartialSigs{keyed.Remove[[]byte, []byte](pub3G)}}},
		{"Rename sig", MutateInput{1, UpdatePartialSigs{keyed.Rename[[]byte, []byte](pub3G, pub2G)}}},
		{"Rename sig onto existing", MutateInput{1, UpdatePartialSigs{keyed.Rename[[]byte, []byte](pub3G, pubG)}}},
		{"Remove middle derivation", MutateOutput{0, UpdateBip32Derivation{keyed.Remove[[]byte, field.KeySource](pub2G)}}},
		{"Overwrite derivation", MutateOutput{0, UpdateBip32Derivation{keyed.Set(pubG, source)}}},
		{"Rename derivation onto earlier", MutateOutput{0, UpdateBip32Derivation{keyed.Rename[[]byte, field.KeySource](pubG, pub3G)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Packet: unsortedPacket()}

			inverse := tt.op.Apply(doc)
			assert.NotEqual(t, unsortedPacket(), doc.Packet)

			inverse.Apply(doc)
			assert.Equal(t, unsortedPacket(), doc.Packet)
		})
	}
}

func TestKeyedUpdateEditsInPlace(t *testing.T) {
	doc := &Document{Packet: unsortedPacket()}

	MutateInput{1, UpdatePartialSigs{keyed.Set(pub2G, []byte{0x30, 0x02})}}.Apply(doc)
	assert.Equal(t, [][]byte{edittest.MustHex(edittest.PubKey3G), pubG, pub2G}, sigKeys(doc.Packet.Inputs[1].PartialSigs))

	MutateInput{1, UpdatePartialSigs{keyed.Remove[[]byte, []byte](edittest.MustHex(edittest.PubKey3G))}}.Apply(doc)
	assert.Equal(t, [][]byte{pubG, pub2G}, sigKeys(doc.Packet.Inputs[1].PartialSigs))

	// 改名保持条目位置
	MutateInput{1, UpdatePartialSigs{keyed.Rename[[]byte, []byte](pubG, edittest.MustHex(edittest.PubKey3G))}}.Apply(doc)
	assert.Equal(t, [][]byte{edittest.MustHex(edittest.PubKey3G), pub2G}, sigKeys(doc.Packet.Inputs[1].PartialSigs))
	assert.Equal(t, []byte{0x30, 0x01}, doc.Packet.Inputs[1].PartialSigs[0].Signature)
}

func TestKeyedFieldEmptyUpdateKeepsSlice(t *testing.T) {
	doc := &Document{Packet: edittest.NewPacket()}
	original := doc.Packet.Inputs[0].Bip32Derivation

	inverse := MutateInput{Index: 0, Op: UpdateBip32Derivation{keyed.Remove[[]byte, field.KeySource](pub2G)}}.Apply(doc)
	assert.Equal(t, "input #0: bip32_derivation: no change", inverse.String())
	assert.Same(t, original[0], doc.Packet.Inputs[0].Bip32Derivation[0])
}

func TestDraftEditor(t *testing.T) {
	doc := &Document{Packet: edittest.NewPacket()}
	spec, _ := OutputField("bip32_derivation")
	draft := spec.Keyed().NewDraft()

	assert.Equal(t, EntryText{Key: []string{""}, Value: []string{"", ""}}, draft.Text())

	require.NoError(t, draft.Set(KeyHalf, []string{edittest.PubKey2G}))
	_, ok := draft.Commit()
	assert.False(t, ok)

	// 非法文本不影响已有的部分
	err := draft.Set(ValueHalf, []string{"zz", "m/0"})
	kind, _ := field.KindOf(err)
	assert.Equal(t, field.KindFingerprint, kind)
	assert.Equal(t, EntryText{Key: []string{edittest.PubKey2G}, Value: []string{"", ""}}, draft.Text())

	// 任一文本框为空即视为未填写
	require.NoError(t, draft.Set(ValueHalf, []string{"00000000", ""}))
	_, ok = draft.Commit()
	assert.False(t, ok)

	require.NoError(t, draft.Set(ValueHalf, []string{"00000000", "m/0"}))
	op, ok := draft.Commit()
	require.True(t, ok)
	assert.Equal(t, EntryText{Key: []string{""}, Value: []string{"", ""}}, draft.Text())

	MutateOutput{Index: 0, Op: op}.Apply(doc)
	assert.Equal(t, []EntryText{{
		Key:   []string{edittest.PubKey2G},
		Value: []string{"00000000", "m/0"},
	}}, spec.Keyed().Entries(&doc.Packet.Outputs[0]))

	require.NoError(t, draft.Set(KeyHalf, []string{edittest.PubKeyG}))
	require.NoError(t, draft.Set(KeyHalf, []string{""}))
	assert.Equal(t, []string{""}, draft.Text().Key)
}
