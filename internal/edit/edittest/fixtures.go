// Package edittest 提供测试用的 PSBT 样例。
package edittest

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	PubKeyG  = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	PubKey2G = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	PubKey3G = "02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"
	XOnlyG   = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

	// P2WPKH 输出脚本 (BIP-173 测试向量)
	P2WPKH = "0014751e76e8199196d454941c45d1b3a323f1433bd6"
	// 2-of-2 多签见证脚本
	Multisig = "5221" + PubKeyG + "21" + PubKey2G + "52ae"
	// OP_TRUE
	OpTrue = "51"
)

// MustHex 解码测试常量
func MustHex(s string) []byte {
	raw, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return raw
}

// NewPacket 构造一个 2 输入 2 输出的 PSBT，第 0 个输入带有见证 UTXO、sighash 与派生路径
func NewPacket() *psbt.Packet {
	inputs := []*wire.OutPoint{
		{Index: 0},
		{Index: 7},
	}
	outputs := []*wire.TxOut{
		wire.NewTxOut(90_000, MustHex(P2WPKH)),
		wire.NewTxOut(5_000, MustHex(P2WPKH)),
	}
	sequences := []uint32{wire.MaxTxInSequenceNum, wire.MaxTxInSequenceNum}

	packet, err := psbt.New(inputs, outputs, 2, 0, sequences)
	if err != nil {
		panic(err)
	}

	packet.Inputs[0].WitnessUtxo = wire.NewTxOut(100_000, MustHex(P2WPKH))
	packet.Inputs[0].SighashType = txscript.SigHashAll
	packet.Inputs[0].Bip32Derivation = []*psbt.Bip32Derivation{{
		PubKey:               MustHex(PubKeyG),
		MasterKeyFingerprint: 0x4f6a0cd9,
		Bip32Path:            []uint32{0x80000054, 0x80000000, 0x80000000, 0, 1},
	}}
	packet.Outputs[1].WitnessScript = MustHex(Multisig)

	return packet
}

// Encode 以 base64 编码 packet
func Encode(packet *psbt.Packet) string {
	encoded, err := packet.B64Encode()
	if err != nil {
		panic(err)
	}
	return encoded
}
