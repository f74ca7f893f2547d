package edit

import (
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"psbt-editor/internal/field"
	"psbt-editor/internal/keyed"
)

// Spec 描述记录类型 R 上的一个可编辑字段，O 是该记录的字段级操作接口。
// 标量 (含定长组合) 字段通过 Read/Parse 读写文本；键值集合字段通过 Keyed。
type Spec[R, O any] struct {
	Name  string
	Arity field.Arity

	read  func(r *R) []string
	parse func(slots []string) (O, error)
	keyed KeyedSpec[R, O]
}

// IsKeyed 是否为键值集合字段
func (s Spec[R, O]) IsKeyed() bool {
	return s.keyed != nil
}

// Read 返回标量字段当前值的文本，缺省时为 Arity 个空字符串
func (s Spec[R, O]) Read(r *R) []string {
	if s.read == nil {
		return nil
	}
	return s.read(r)
}

// Parse 把文本解析为设置该字段的操作；文本非法时不产生操作
func (s Spec[R, O]) Parse(slots []string) (O, error) {
	if s.parse == nil {
		var zero O
		return zero, errNotScalar(s.Name)
	}
	return s.parse(slots)
}

// Keyed 键值集合字段的编辑接口，标量字段返回 nil
func (s Spec[R, O]) Keyed() KeyedSpec[R, O] {
	return s.keyed
}

func scalar[R, O, T any](name string, codec field.Codec[T], get func(r *R) field.Option[T], wrap func(v field.Option[T]) O) Spec[R, O] {
	optional := field.Optional(codec)
	return Spec[R, O]{
		Name:  name,
		Arity: codec.Arity(),
		read: func(r *R) []string {
			return optional.Serialize(get(r))
		},
		parse: func(slots []string) (O, error) {
			v, err := optional.Deserialize(slots)
			if err != nil {
				var zero O
				return zero, err
			}
			return wrap(v), nil
		},
	}
}

func keyedField[R, O, V any](name string, value field.Codec[V], entries func(r *R) []keyed.Entry[[]byte, V], wrap func(u keyed.Update[[]byte, V]) O) Spec[R, O] {
	return Spec[R, O]{
		Name: name,
		keyed: keyedSpec[R, O, []byte, V]{
			key:     field.PublicKey,
			value:   value,
			entries: entries,
			wrap:    wrap,
		},
	}
}

func getTx(tx *wire.MsgTx) field.Option[*wire.MsgTx] {
	if tx == nil {
		return field.None[*wire.MsgTx]()
	}
	return field.Some(tx)
}

func getTxOut(out *wire.TxOut) field.Option[*wire.TxOut] {
	if out == nil {
		return field.None[*wire.TxOut]()
	}
	return field.Some(out)
}

func getSighash(v txscript.SigHashType) field.Option[txscript.SigHashType] {
	if v == 0 {
		return field.None[txscript.SigHashType]()
	}
	return field.Some(v)
}

func partialSigEntries(in *psbt.PInput) []keyed.Entry[[]byte, []byte] {
	entries := keyed.New[[]byte, []byte](comparePubKey)
	for _, sig := range in.PartialSigs {
		entries.Set(sig.PubKey, sig.Signature)
	}
	return entries.Entries()
}

func sortedDerivations(derivations []*psbt.Bip32Derivation) []keyed.Entry[[]byte, field.KeySource] {
	return keyed.FromEntries(comparePubKey, derivationEntries(derivations)).Entries()
}

// InputFields 输入记录的全部字段，顺序即展示顺序
var InputFields = []Spec[psbt.PInput, InputOp]{
	scalar("non_witness_utxo", field.Transaction,
		func(in *psbt.PInput) field.Option[*wire.MsgTx] { return getTx(in.NonWitnessUtxo) },
		func(v field.Option[*wire.MsgTx]) InputOp { return SetNonWitnessUtxo{Tx: v} }),
	scalar("witness_utxo", field.TxOut,
		func(in *psbt.PInput) field.Option[*wire.TxOut] { return getTxOut(in.WitnessUtxo) },
		func(v field.Option[*wire.TxOut]) InputOp { return SetWitnessUtxo{TxOut: v} }),
	keyedField("partial_sigs", field.Hex,
		partialSigEntries,
		func(u keyed.Update[[]byte, []byte]) InputOp { return UpdatePartialSigs{Update: u} }),
	scalar("sighash_type", field.SighashType,
		func(in *psbt.PInput) field.Option[txscript.SigHashType] { return getSighash(in.SighashType) },
		func(v field.Option[txscript.SigHashType]) InputOp { return SetSighashType{Type: v} }),
	scalar("redeem_script", field.Script,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.RedeemScript) },
		func(v field.Option[[]byte]) InputOp { return SetRedeemScript{Script: v} }),
	scalar("witness_script", field.Script,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.WitnessScript) },
		func(v field.Option[[]byte]) InputOp { return SetWitnessScript{Script: v} }),
	keyedField("bip32_derivation", field.KeySourcePair,
		func(in *psbt.PInput) []keyed.Entry[[]byte, field.KeySource] { return sortedDerivations(in.Bip32Derivation) },
		func(u keyed.Update[[]byte, field.KeySource]) InputOp { return UpdateBip32Derivation{Update: u} }),
	scalar("final_script_sig", field.Script,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.FinalScriptSig) },
		func(v field.Option[[]byte]) InputOp { return SetFinalScriptSig{Script: v} }),
	scalar("final_script_witness", field.Witness,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.FinalScriptWitness) },
		func(v field.Option[[]byte]) InputOp { return SetFinalScriptWitness{Witness: v} }),
	scalar("taproot_key_spend_sig", field.Hex,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.TaprootKeySpendSig) },
		func(v field.Option[[]byte]) InputOp { return SetTaprootKeySpendSig{Sig: v} }),
	scalar("taproot_internal_key", field.XOnlyKey,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.TaprootInternalKey) },
		func(v field.Option[[]byte]) InputOp { return SetTaprootInternalKey{Key: v} }),
	scalar("taproot_merkle_root", field.Hash32,
		func(in *psbt.PInput) field.Option[[]byte] { return optBytes(in.TaprootMerkleRoot) },
		func(v field.Option[[]byte]) InputOp { return SetTaprootMerkleRoot{Root: v} }),
}

// OutputFields 输出记录的全部字段
var OutputFields = []Spec[psbt.POutput, OutputOp]{
	scalar("redeem_script", field.Script,
		func(out *psbt.POutput) field.Option[[]byte] { return optBytes(out.RedeemScript) },
		func(v field.Option[[]byte]) OutputOp { return SetRedeemScript{Script: v} }),
	scalar("witness_script", field.Script,
		func(out *psbt.POutput) field.Option[[]byte] { return optBytes(out.WitnessScript) },
		func(v field.Option[[]byte]) OutputOp { return SetWitnessScript{Script: v} }),
	keyedField("bip32_derivation", field.KeySourcePair,
		func(out *psbt.POutput) []keyed.Entry[[]byte, field.KeySource] { return sortedDerivations(out.Bip32Derivation) },
		func(u keyed.Update[[]byte, field.KeySource]) OutputOp { return UpdateBip32Derivation{Update: u} }),
	scalar("taproot_internal_key", field.XOnlyKey,
		func(out *psbt.POutput) field.Option[[]byte] { return optBytes(out.TaprootInternalKey) },
		func(v field.Option[[]byte]) OutputOp { return SetTaprootInternalKey{Key: v} }),
}

func lookup[R, O any](specs []Spec[R, O], name string) (Spec[R, O], bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec[R, O]{}, false
}

// InputField 按名称查找输入字段
func InputField(name string) (Spec[psbt.PInput, InputOp], bool) {
	return lookup(InputFields, name)
}

// OutputField 按名称查找输出字段
func OutputField(name string) (Spec[psbt.POutput, OutputOp], bool) {
	return lookup(OutputFields, name)
}
