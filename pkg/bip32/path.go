package bip32

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var (
	ErrInvalidPath        = errors.New("无效的派生路径")
	ErrInvalidFingerprint = errors.New("无效的主密钥指纹")
)

// FingerprintLen 主密钥指纹长度 (字节)
const FingerprintLen = 4

// ParsePath 解析派生路径为索引列表
// 支持格式: m/44'/0'/0'/0/0 或 m/44h/0h/0h/0/0，单独的 "m" 表示空路径
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: 路径为空", ErrInvalidPath)
	}

	if path == "m" || path == "M" {
		return []uint32{}, nil
	}
	if strings.HasPrefix(path, "m/") || strings.HasPrefix(path, "M/") {
		path = path[2:]
	}

	segments := strings.Split(path, "/")
	indexes := make([]uint32, 0, len(segments))

	for _, segment := range segments {
		isHardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") || strings.HasSuffix(segment, "H") {
			isHardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: 无效的路径段 '%s'", ErrInvalidPath, segment)
		}
		index := uint32(val)

		if isHardened {
			if index >= hdkeychain.HardenedKeyStart {
				return nil, fmt.Errorf("%w: 硬化索引越界 '%s'", ErrInvalidPath, segment)
			}
			index += hdkeychain.HardenedKeyStart
		}

		indexes = append(indexes, index)
	}

	return indexes, nil
}

// FormatPath 把索引列表格式化为 m/0'/1 形式，硬化索引使用 ' 后缀
func FormatPath(indexes []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range indexes {
		b.WriteByte('/')
		if index >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(index-hdkeychain.HardenedKeyStart), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(index), 10))
		}
	}
	return b.String()
}

// ParseFingerprint 解析 8 位十六进制指纹
// PSBT 中指纹按 little-endian 读入 uint32，这里保持同样的字节序
func ParseFingerprint(s string) (uint32, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	if len(raw) != FingerprintLen {
		return 0, fmt.Errorf("%w: 需要 %d 字节, 实际 %d", ErrInvalidFingerprint, FingerprintLen, len(raw))
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// FormatFingerprint 是 ParseFingerprint 的逆操作
func FormatFingerprint(fingerprint uint32) string {
	var raw [FingerprintLen]byte
	binary.LittleEndian.PutUint32(raw[:], fingerprint)
	return hex.EncodeToString(raw[:])
}
