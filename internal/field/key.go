package field

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"psbt-editor/pkg/bip32"
)

type publicKeyCodec struct{}

// PublicKey 压缩或非压缩的 secp256k1 公钥
var PublicKey Codec[[]byte] = publicKeyCodec{}

func (publicKeyCodec) Arity() Arity { return Single }

func (publicKeyCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (publicKeyCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}
	if _, err := btcec.ParsePubKey(raw); err != nil {
		return nil, fail(KindKey, err)
	}
	return raw, nil
}

type xOnlyKeyCodec struct{}

// XOnlyKey BIP-340 的 32 字节 x-only 公钥
var XOnlyKey Codec[[]byte] = xOnlyKeyCodec{}

func (xOnlyKeyCodec) Arity() Arity { return Single }

func (xOnlyKeyCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (xOnlyKeyCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}
	if _, err := schnorr.ParsePubKey(raw); err != nil {
		return nil, fail(KindKey, err)
	}
	return raw, nil
}

// KeySource 主密钥指纹与派生路径
type KeySource struct {
	Fingerprint uint32
	Path        []uint32
}

// Equal 按值比较
func (k KeySource) Equal(other KeySource) bool {
	return k.Fingerprint == other.Fingerprint && slices.Equal(k.Path, other.Path)
}

type keySourceCodec struct{}

// KeySourcePair 两个文本框: 指纹 (8 位十六进制) 与路径 (m/84'/0'/0'/0/1)
var KeySourcePair Codec[KeySource] = keySourceCodec{}

func (keySourceCodec) Arity() Arity { return Pair }

func (keySourceCodec) Serialize(v KeySource) []string {
	return []string{bip32.FormatFingerprint(v.Fingerprint), bip32.FormatPath(v.Path)}
}

func (keySourceCodec) Deserialize(slots []string) (KeySource, error) {
	if err := checkArity(Pair, slots); err != nil {
		return KeySource{}, err
	}
	fingerprint, err := bip32.ParseFingerprint(slots[0])
	if err != nil {
		return KeySource{}, fail(KindFingerprint, err)
	}
	path, err := bip32.ParsePath(slots[1])
	if err != nil {
		return KeySource{}, fail(KindPath, err)
	}
	return KeySource{Fingerprint: fingerprint, Path: path}, nil
}

var sighashNames = []struct {
	name  string
	value txscript.SigHashType
}{
	{"ALL", txscript.SigHashAll},
	{"NONE", txscript.SigHashNone},
	{"SINGLE", txscript.SigHashSingle},
	{"ALL|ANYONECANPAY", txscript.SigHashAll | txscript.SigHashAnyOneCanPay},
	{"NONE|ANYONECANPAY", txscript.SigHashNone | txscript.SigHashAnyOneCanPay},
	{"SINGLE|ANYONECANPAY", txscript.SigHashSingle | txscript.SigHashAnyOneCanPay},
}

// SighashNames 可选的 sighash 名称，按上面的顺序
func SighashNames() []string {
	names := make([]string, 0, len(sighashNames))
	for _, n := range sighashNames {
		names = append(names, "SIGHASH_"+n.name)
	}
	return names
}

type sighashCodec struct{}

// SighashType 名称 (SIGHASH_ALL、ALL|ANYONECANPAY 等) 或数值 (0x81)。
// 0 在 PSBT 中表示未设置，不能作为取值。
var SighashType Codec[txscript.SigHashType] = sighashCodec{}

func (sighashCodec) Arity() Arity { return Single }

func (sighashCodec) Serialize(v txscript.SigHashType) []string {
	for _, n := range sighashNames {
		if n.value == v {
			return []string{"SIGHASH_" + n.name}
		}
	}
	return []string{fmt.Sprintf("0x%x", uint32(v))}
}

func (sighashCodec) Deserialize(slots []string) (txscript.SigHashType, error) {
	if err := checkArity(Single, slots); err != nil {
		return 0, err
	}
	text := strings.ToUpper(strings.TrimSpace(slots[0]))
	name := strings.ReplaceAll(strings.TrimPrefix(text, "SIGHASH_"), "|SIGHASH_", "|")
	for _, n := range sighashNames {
		if n.name == name {
			return n.value, nil
		}
	}

	value, err := strconv.ParseUint(strings.ToLower(text), 0, 32)
	if err != nil {
		return 0, fail(KindSighash, fmt.Errorf("%q", slots[0]))
	}
	if value == 0 {
		return 0, fail(KindSighash, fmt.Errorf("0 means unset, leave the field blank"))
	}
	return txscript.SigHashType(value), nil
}
