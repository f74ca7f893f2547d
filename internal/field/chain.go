package field

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

type txOutCodec struct{}

// TxOut 共识序列化的交易输出 (金额 + 脚本)
var TxOut Codec[*wire.TxOut] = txOutCodec{}

func (txOutCodec) Arity() Arity { return Single }

func (txOutCodec) Serialize(v *wire.TxOut) []string {
	if v == nil {
		return []string{""}
	}
	var buf bytes.Buffer
	_ = wire.WriteTxOut(&buf, 0, 0, v)
	return []string{hex.EncodeToString(buf.Bytes())}
}

func (txOutCodec) Deserialize(slots []string) (*wire.TxOut, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(raw)
	var out wire.TxOut
	if err := wire.ReadTxOut(r, 0, 0, &out); err != nil {
		return nil, fail(KindStructure, err)
	}
	if err := trailing(r); err != nil {
		return nil, err
	}
	return &out, nil
}

type transactionCodec struct{}

// Transaction 共识序列化的完整交易
var Transaction Codec[*wire.MsgTx] = transactionCodec{}

func (transactionCodec) Arity() Arity { return Single }

func (transactionCodec) Serialize(v *wire.MsgTx) []string {
	if v == nil {
		return []string{""}
	}
	var buf bytes.Buffer
	_ = v.Serialize(&buf)
	return []string{hex.EncodeToString(buf.Bytes())}
}

func (transactionCodec) Deserialize(slots []string) (*wire.MsgTx, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(raw)
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(r); err != nil {
		return nil, fail(KindStructure, err)
	}
	if err := trailing(r); err != nil {
		return nil, err
	}
	return tx, nil
}

type documentCodec struct{}

// Document 整个 PSBT 的 base64 文本编码
var Document Codec[*psbt.Packet] = documentCodec{}

func (documentCodec) Arity() Arity { return Single }

func (documentCodec) Serialize(v *psbt.Packet) []string {
	if v == nil {
		return []string{""}
	}
	encoded, err := v.B64Encode()
	if err != nil {
		// 文本框里只能显示空白；导出时直接调用 B64Encode 并返回错误
		return []string{""}
	}
	return []string{encoded}
}

func (documentCodec) Deserialize(slots []string) (*psbt.Packet, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	// 粘贴的文本常带换行
	text := strings.Join(strings.Fields(slots[0]), "")

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fail(KindBase64, err)
	}
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fail(KindPsbt, err)
	}
	return packet, nil
}
