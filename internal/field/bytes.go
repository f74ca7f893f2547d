package field

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// maxWitnessItemSize 与共识规则中单个见证元素的上限保持一致
const maxWitnessItemSize = txscript.MaxScriptSize

func decodeHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fail(KindHex, err)
	}
	return raw, nil
}

// trailing 检查 r 是否已读完
func trailing(r *bytes.Reader) error {
	if r.Len() != 0 {
		return fail(KindStructure, fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return nil
}

type hexCodec struct{}

// Hex 任意十六进制字节串
var Hex Codec[[]byte] = hexCodec{}

func (hexCodec) Arity() Arity { return Single }

func (hexCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (hexCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	return decodeHex(slots[0])
}

type scriptCodec struct{}

// Script 十六进制脚本，要求能被完整地切分为操作码
var Script Codec[[]byte] = scriptCodec{}

func (scriptCodec) Arity() Arity { return Single }

func (scriptCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (scriptCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	script, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
	}
	if err := tokenizer.Err(); err != nil {
		return nil, fail(KindStructure, err)
	}
	return script, nil
}

type witnessCodec struct{}

// Witness 共识序列化的见证栈 (元素个数 + 逐个变长字节串)
var Witness Codec[[]byte] = witnessCodec{}

func (witnessCodec) Arity() Arity { return Single }

func (witnessCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (witnessCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(raw)
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, fail(KindStructure, err)
	}
	// 每个元素至少占 1 字节长度前缀
	if count > uint64(r.Len()) {
		return nil, fail(KindStructure, fmt.Errorf("witness claims %d items in %d bytes", count, r.Len()))
	}
	for i := uint64(0); i < count; i++ {
		if _, err := wire.ReadVarBytes(r, 0, maxWitnessItemSize, "witness item"); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fail(KindStructure, err)
		}
	}
	if err := trailing(r); err != nil {
		return nil, err
	}
	return raw, nil
}

// WitnessItems 把见证栈格式化为空格分隔的十六进制元素，解析失败时返回 nil
func WitnessItems(raw []byte) []string {
	r := bytes.NewReader(raw)
	count, err := wire.ReadVarInt(r, 0)
	if err != nil || count > uint64(r.Len()) {
		return nil
	}
	items := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := wire.ReadVarBytes(r, 0, maxWitnessItemSize, "witness item")
		if err != nil {
			return nil
		}
		items = append(items, hex.EncodeToString(item))
	}
	return items
}

type fixedCodec struct {
	size int
}

// Hash32 32 字节的十六进制值 (如 taproot merkle root)
var Hash32 Codec[[]byte] = fixedCodec{size: 32}

func (fixedCodec) Arity() Arity { return Single }

func (fixedCodec) Serialize(v []byte) []string {
	return []string{hex.EncodeToString(v)}
}

func (c fixedCodec) Deserialize(slots []string) ([]byte, error) {
	if err := checkArity(Single, slots); err != nil {
		return nil, err
	}
	raw, err := decodeHex(slots[0])
	if err != nil {
		return nil, err
	}
	if len(raw) != c.size {
		return nil, fail(KindStructure, fmt.Errorf("want %d bytes, got %d", c.size, len(raw)))
	}
	return raw, nil
}
