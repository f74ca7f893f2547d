package edit

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"psbt-editor/internal/field"
	"psbt-editor/internal/keyed"
)

// InputOp 对单个输入记录的字段级操作
type InputOp interface {
	// ApplyInput 修改 in 并返回同类型的逆操作
	ApplyInput(in *psbt.PInput) InputOp
	fmt.Stringer
}

// OutputOp 对单个输出记录的字段级操作
type OutputOp interface {
	// ApplyOutput 修改 out 并返回同类型的逆操作
	ApplyOutput(out *psbt.POutput) OutputOp
	fmt.Stringer
}

// 公钥按字节比较
var comparePubKey = bytes.Compare

func optBytes(b []byte) field.Option[[]byte] {
	if b == nil {
		return field.None[[]byte]()
	}
	return field.Some(b)
}

// swapBytes 写入新值并返回旧值；None 写为 nil
func swapBytes(dst *[]byte, v field.Option[[]byte]) field.Option[[]byte] {
	old := optBytes(*dst)
	*dst = v.OrZero()
	return old
}

func describe(name string, v field.Option[[]byte]) string {
	if v.IsSome() {
		return fmt.Sprintf("set %s (%d bytes)", name, len(v.OrZero()))
	}
	return fmt.Sprintf("clear %s", name)
}

// SetNonWitnessUtxo 输入花费的完整前序交易
type SetNonWitnessUtxo struct {
	Tx field.Option[*wire.MsgTx]
}

func (op SetNonWitnessUtxo) ApplyInput(in *psbt.PInput) InputOp {
	old := field.None[*wire.MsgTx]()
	if in.NonWitnessUtxo != nil {
		old = field.Some(in.NonWitnessUtxo)
	}
	in.NonWitnessUtxo = op.Tx.OrZero()
	return SetNonWitnessUtxo{Tx: old}
}

func (op SetNonWitnessUtxo) String() string {
	if tx, ok := op.Tx.Get(); ok {
		return fmt.Sprintf("set non_witness_utxo (%s)", tx.TxHash())
	}
	return "clear non_witness_utxo"
}

// SetWitnessUtxo 输入花费的前序输出
type SetWitnessUtxo struct {
	TxOut field.Option[*wire.TxOut]
}

func (op SetWitnessUtxo) ApplyInput(in *psbt.PInput) InputOp {
	old := field.None[*wire.TxOut]()
	if in.WitnessUtxo != nil {
		old = field.Some(in.WitnessUtxo)
	}
	in.WitnessUtxo = op.TxOut.OrZero()
	return SetWitnessUtxo{TxOut: old}
}

func (op SetWitnessUtxo) String() string {
	if out, ok := op.TxOut.Get(); ok {
		return fmt.Sprintf("set witness_utxo (%d sat)", out.Value)
	}
	return "clear witness_utxo"
}

// SetSighashType 签名使用的 sighash 类型，PSBT 中 0 表示未设置
type SetSighashType struct {
	Type field.Option[txscript.SigHashType]
}

func (op SetSighashType) ApplyInput(in *psbt.PInput) InputOp {
	old := field.None[txscript.SigHashType]()
	if in.SighashType != 0 {
		old = field.Some(in.SighashType)
	}
	in.SighashType = op.Type.OrZero()
	return SetSighashType{Type: old}
}

func (op SetSighashType) String() string {
	if v, ok := op.Type.Get(); ok {
		return fmt.Sprintf("set sighash_type %s", field.SighashType.Serialize(v)[0])
	}
	return "clear sighash_type"
}

// SetRedeemScript 输入和输出共用
type SetRedeemScript struct {
	Script field.Option[[]byte]
}

func (op SetRedeemScript) ApplyInput(in *psbt.PInput) InputOp {
	return SetRedeemScript{Script: swapBytes(&in.RedeemScript, op.Script)}
}

func (op SetRedeemScript) ApplyOutput(out *psbt.POutput) OutputOp {
	return SetRedeemScript{Script: swapBytes(&out.RedeemScript, op.Script)}
}

func (op SetRedeemScript) String() string { return describe("redeem_script", op.Script) }

// SetWitnessScript 输入和输出共用
type SetWitnessScript struct {
	Script field.Option[[]byte]
}

func (op SetWitnessScript) ApplyInput(in *psbt.PInput) InputOp {
	return SetWitnessScript{Script: swapBytes(&in.WitnessScript, op.Script)}
}

func (op SetWitnessScript) ApplyOutput(out *psbt.POutput) OutputOp {
	return SetWitnessScript{Script: swapBytes(&out.WitnessScript, op.Script)}
}

func (op SetWitnessScript) String() string { return describe("witness_script", op.Script) }

type SetFinalScriptSig struct {
	Script field.Option[[]byte]
}

func (op SetFinalScriptSig) ApplyInput(in *psbt.PInput) InputOp {
	return SetFinalScriptSig{Script: swapBytes(&in.FinalScriptSig, op.Script)}
}

func (op SetFinalScriptSig) String() string { return describe("final_script_sig", op.Script) }

type SetFinalScriptWitness struct {
	Witness field.Option[[]byte]
}

func (op SetFinalScriptWitness) ApplyInput(in *psbt.PInput) InputOp {
	return SetFinalScriptWitness{Witness: swapBytes(&in.FinalScriptWitness, op.Witness)}
}

func (op SetFinalScriptWitness) String() string {
	return describe("final_script_witness", op.Witness)
}

type SetTaprootKeySpendSig struct {
	Sig field.Option[[]byte]
}

func (op SetTaprootKeySpendSig) ApplyInput(in *psbt.PInput) InputOp {
	return SetTaprootKeySpendSig{Sig: swapBytes(&in.TaprootKeySpendSig, op.Sig)}
}

func (op SetTaprootKeySpendSig) String() string {
	return describe("taproot_key_spend_sig", op.Sig)
}

// SetTaprootInternalKey 输入和输出共用
type SetTaprootInternalKey struct {
	Key field.Option[[]byte]
}

func (op SetTaprootInternalKey) ApplyInput(in *psbt.PInput) InputOp {
	return SetTaprootInternalKey{Key: swapBytes(&in.TaprootInternalKey, op.Key)}
}

func (op SetTaprootInternalKey) ApplyOutput(out *psbt.POutput) OutputOp {
	return SetTaprootInternalKey{Key: swapBytes(&out.TaprootInternalKey, op.Key)}
}

func (op SetTaprootInternalKey) String() string {
	return describe("taproot_internal_key", op.Key)
}

type SetTaprootMerkleRoot struct {
	Root field.Option[[]byte]
}

func (op SetTaprootMerkleRoot) ApplyInput(in *psbt.PInput) InputOp {
	return SetTaprootMerkleRoot{Root: swapBytes(&in.TaprootMerkleRoot, op.Root)}
}

func (op SetTaprootMerkleRoot) String() string {
	return describe("taproot_merkle_root", op.Root)
}

// UpdatePartialSigs 修改 公钥 -> 签名 映射
type UpdatePartialSigs struct {
	Update keyed.Update[[]byte, []byte]
}

func (op UpdatePartialSigs) ApplyInput(in *psbt.PInput) InputOp {
	entries := make([]keyed.Entry[[]byte, []byte], 0, len(in.PartialSigs))
	for _, sig := range in.PartialSigs {
		entries = append(entries, keyed.Entry[[]byte, []byte]{Key: sig.PubKey, Value: sig.Signature})
	}
	// 按记录中的原有顺序原位修改，逆操作可以恢复完全相同的列表
	seq := keyed.NewSeq(comparePubKey, entries)

	inverse := op.Update.Apply(seq)
	if inverse.IsEmpty() {
		return UpdatePartialSigs{Update: inverse}
	}

	var sigs []*psbt.PartialSig
	for _, e := range seq.Entries() {
		sigs = append(sigs, &psbt.PartialSig{PubKey: e.Key, Signature: e.Value})
	}
	in.PartialSigs = sigs
	return UpdatePartialSigs{Update: inverse}
}

func (op UpdatePartialSigs) String() string {
	return describeUpdate("partial_sigs", op.Update.Steps())
}

// UpdateBip32Derivation 修改 公钥 -> (指纹, 路径) 映射，输入和输出共用
type UpdateBip32Derivation struct {
	Update keyed.Update[[]byte, field.KeySource]
}

func (op UpdateBip32Derivation) ApplyInput(in *psbt.PInput) InputOp {
	in.Bip32Derivation, op.Update = applyDerivations(in.Bip32Derivation, op.Update)
	return op
}

func (op UpdateBip32Derivation) ApplyOutput(out *psbt.POutput) OutputOp {
	out.Bip32Derivation, op.Update = applyDerivations(out.Bip32Derivation, op.Update)
	return op
}

func (op UpdateBip32Derivation) String() string {
	return describeUpdate("bip32_derivation", op.Update.Steps())
}

func applyDerivations(current []*psbt.Bip32Derivation, update keyed.Update[[]byte, field.KeySource]) ([]*psbt.Bip32Derivation, keyed.Update[[]byte, field.KeySource]) {
	seq := keyed.NewSeq(comparePubKey, derivationEntries(current))

	inverse := update.Apply(seq)
	if inverse.IsEmpty() {
		// 没有变化时保留原切片
		return current, inverse
	}

	var derivations []*psbt.Bip32Derivation
	for _, e := range seq.Entries() {
		derivations = append(derivations, &psbt.Bip32Derivation{
			PubKey:               e.Key,
			MasterKeyFingerprint: e.Value.Fingerprint,
			Bip32Path:            e.Value.Path,
		})
	}
	return derivations, inverse
}

func derivationEntries(derivations []*psbt.Bip32Derivation) []keyed.Entry[[]byte, field.KeySource] {
	entries := make([]keyed.Entry[[]byte, field.KeySource], 0, len(derivations))
	for _, d := range derivations {
		entries = append(entries, keyed.Entry[[]byte, field.KeySource]{
			Key:   d.PubKey,
			Value: field.KeySource{Fingerprint: d.MasterKeyFingerprint, Path: d.Bip32Path},
		})
	}
	return entries
}

func describeUpdate[K, V any](name string, steps []keyed.Step[K, V]) string {
	if len(steps) == 0 {
		return fmt.Sprintf("%s: no change", name)
	}
	kinds := make([]string, 0, len(steps))
	for _, s := range steps {
		kinds = append(kinds, s.Kind.String())
	}
	return fmt.Sprintf("%s: %v", name, kinds)
}
