// Package view 把文档整理为只读的展示结构，供 CLI 与 HTTP 使用。
package view

import (
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/field"
	"psbt-editor/pkg/address"
)

// Unknown 无法确定的金额
const Unknown = "???"

const satsPerBTC = 8

// Field 一个字段的文本
type Field struct {
	Name    string           `json:"name"`
	Arity   int              `json:"arity"`
	Keyed   bool             `json:"keyed"`
	Value   []string         `json:"value,omitempty"`
	Entries []edit.EntryText `json:"entries,omitempty"`
}

type Input struct {
	Index     int     `json:"index"`
	Outpoint  string  `json:"outpoint"`
	Sequence  uint32  `json:"sequence"`
	Value     string  `json:"value"`
	Finalized bool    `json:"finalized"`
	Fields    []Field `json:"fields"`
}

type Output struct {
	Index   int     `json:"index"`
	Amount  string  `json:"amount"`
	Address string  `json:"address"`
	Script  string  `json:"script"`
	Fields  []Field `json:"fields"`
}

// Document 文档的展示结构，未加载时只有 Network 有值
type Document struct {
	Loaded   bool     `json:"loaded"`
	Network  string   `json:"network"`
	TxID     string   `json:"txid,omitempty"`
	Version  int32    `json:"version"`
	LockTime uint32   `json:"locktime"`
	Fee      string   `json:"fee,omitempty"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
}

// FormatBTC 聪转为 8 位小数的 BTC 文本
func FormatBTC(sats int64) string {
	return decimal.New(sats, -satsPerBTC).StringFixed(satsPerBTC) + " BTC"
}

// InputValue 输入花费的金额：优先取见证 UTXO，其次取完整前序交易中 vout 对应的输出
func InputValue(in *psbt.PInput, prev wire.OutPoint) (int64, bool) {
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo.Value, true
	}
	if in.NonWitnessUtxo != nil && int(prev.Index) < len(in.NonWitnessUtxo.TxOut) {
		return in.NonWitnessUtxo.TxOut[prev.Index].Value, true
	}
	return 0, false
}

// Build 生成 packet 的展示结构
func Build(packet *psbt.Packet, gen *address.BTCGenerator) Document {
	d := Document{Network: gen.Network().Name}
	if packet == nil || packet.UnsignedTx == nil {
		return d
	}

	tx := packet.UnsignedTx
	d.Loaded = true
	d.TxID = tx.TxHash().String()
	d.Version = tx.Version
	d.LockTime = tx.LockTime

	var totalIn, totalOut int64
	allKnown := true

	for i := range packet.Inputs {
		in := &packet.Inputs[i]
		item := Input{Index: i, Value: Unknown}
		if i < len(tx.TxIn) {
			prev := tx.TxIn[i].PreviousOutPoint
			item.Outpoint = prev.String()
			item.Sequence = tx.TxIn[i].Sequence
			if value, ok := InputValue(in, prev); ok {
				item.Value = FormatBTC(value)
				totalIn += value
			} else {
				allKnown = false
			}
		} else {
			allKnown = false
		}
		item.Finalized = in.FinalScriptSig != nil || in.FinalScriptWitness != nil
		item.Fields = inputFields(in)
		d.Inputs = append(d.Inputs, item)
	}

	for i := range packet.Outputs {
		item := Output{Index: i, Amount: Unknown}
		if i < len(tx.TxOut) {
			out := tx.TxOut[i]
			item.Amount = FormatBTC(out.Value)
			item.Script = field.Script.Serialize(out.PkScript)[0]
			if addr, err := gen.ScriptToAddress(out.PkScript); err == nil {
				item.Address = addr
			}
			totalOut += out.Value
		}
		item.Fields = outputFields(&packet.Outputs[i])
		d.Outputs = append(d.Outputs, item)
	}

	if allKnown {
		d.Fee = FormatBTC(totalIn - totalOut)
	} else {
		d.Fee = Unknown
	}
	return d
}

func inputFields(in *psbt.PInput) []Field {
	fields := make([]Field, 0, len(edit.InputFields))
	for _, spec := range edit.InputFields {
		fields = append(fields, describe(spec, in))
	}
	return fields
}

func outputFields(out *psbt.POutput) []Field {
	fields := make([]Field, 0, len(edit.OutputFields))
	for _, spec := range edit.OutputFields {
		fields = append(fields, describe(spec, out))
	}
	return fields
}

func describe[R, O any](spec edit.Spec[R, O], r *R) Field {
	if ks := spec.Keyed(); ks != nil {
		return Field{Name: spec.Name, Arity: int(ks.ValueArity()), Keyed: true, Entries: ks.Entries(r)}
	}
	return Field{Name: spec.Name, Arity: int(spec.Arity), Value: spec.Read(r)}
}
