package field

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psbt-editor/pkg/errno"
)

const (
	pubKeyG  = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	pubKey2G = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	xOnlyG   = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	p2wpkh   = "0014751e76e8199196d454941c45d1b3a323f1433bd6"
)

func roundTrip[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	slots := c.Serialize(v)
	require.Len(t, slots, int(c.Arity()))
	got, err := c.Deserialize(slots)
	require.NoError(t, err)
	return got
}

func TestRoundTrip(t *testing.T) {
	t.Run("Hex", func(t *testing.T) {
		v := []byte{0xde, 0xad, 0xbe, 0xef}
		assert.Equal(t, v, roundTrip(t, Hex, v))
	})

	t.Run("Script", func(t *testing.T) {
		v := mustHex(t, p2wpkh)
		assert.Equal(t, v, roundTrip(t, Script, v))
	})

	t.Run("Witness", func(t *testing.T) {
		// 2 个元素: 0x01 0xaa | 0x02 0xbb 0xcc
		v := []byte{0x02, 0x01, 0xaa, 0x02, 0xbb, 0xcc}
		assert.Equal(t, v, roundTrip(t, Witness, v))
		assert.Equal(t, []string{"aa", "bbcc"}, WitnessItems(v))
	})

	t.Run("Hash32", func(t *testing.T) {
		v := make([]byte, 32)
		v[31] = 1
		assert.Equal(t, v, roundTrip(t, Hash32, v))
	})

	t.Run("TxOut", func(t *testing.T) {
		v := wire.NewTxOut(150000, mustHex(t, p2wpkh))
		assert.Equal(t, v, roundTrip(t, TxOut, v))
	})

	t.Run("Transaction", func(t *testing.T) {
		tx := wire.NewMsgTx(2)
		tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 3}, []byte{0x51}, nil))
		tx.AddTxOut(wire.NewTxOut(5000, mustHex(t, p2wpkh)))
		got := roundTrip(t, Transaction, tx)
		assert.Equal(t, tx.TxHash(), got.TxHash())
		assert.Equal(t, Transaction.Serialize(tx), Transaction.Serialize(got))
	})

	t.Run("PublicKey", func(t *testing.T) {
		v := mustHex(t, pubKeyG)
		assert.Equal(t, v, roundTrip(t, PublicKey, v))
	})

	t.Run("XOnlyKey", func(t *testing.T) {
		v := mustHex(t, xOnlyG)
		assert.Equal(t, v, roundTrip(t, XOnlyKey, v))
	})

	t.Run("KeySource", func(t *testing.T) {
		v := KeySource{Fingerprint: 0xdeadbeef, Path: []uint32{hdkeychain.HardenedKeyStart + 84, 0, 7}}
		got := roundTrip(t, KeySourcePair, v)
		assert.True(t, v.Equal(got))
		assert.Equal(t, []string{"efbeadde", "m/84'/0/7"}, KeySourcePair.Serialize(v))
	})

	t.Run("SighashType", func(t *testing.T) {
		for _, v := range []txscript.SigHashType{
			txscript.SigHashAll,
			txscript.SigHashSingle | txscript.SigHashAnyOneCanPay,
			txscript.SigHashType(0x05),
		} {
			assert.Equal(t, v, roundTrip(t, SighashType, v))
		}
	})

	t.Run("Optional", func(t *testing.T) {
		c := Optional(KeySourcePair)
		v := Some(KeySource{Fingerprint: 1, Path: []uint32{1, 2}})
		got := roundTrip(t, c, v)
		value, ok := got.Get()
		require.True(t, ok)
		assert.True(t, value.Equal(v.OrZero()))

		assert.Equal(t, None[KeySource](), roundTrip(t, c, None[KeySource]()))
	})
}

func TestOptionalEmptySlotMeansAbsent(t *testing.T) {
	c := Optional(KeySourcePair)

	tests := []struct {
		name  string
		slots []string
	}{
		{"Empty fingerprint", []string{"", "m/0/1"}},
		{"Empty path", []string{"deadbeef", ""}},
		// 另一个文本框即使无法解析也不报错
		{"Garbage next to empty", []string{"", "not a path"}},
		{"All empty", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Deserialize(tt.slots)
			require.NoError(t, err)
			assert.False(t, got.IsSome())
		})
	}

	assert.Equal(t, []string{"", ""}, c.Serialize(None[KeySource]()))
	assert.Equal(t, []string{""}, Optional(Script).Serialize(None[[]byte]()))
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  Kind
		errno errno.Errno
	}{
		{"Bad hex", parseErr(Hex, "zz"), KindHex, errno.ErrHex},
		{"Odd hex", parseErr(Script, "abc"), KindHex, errno.ErrHex},
		{"Truncated push", parseErr(Script, "4c05aa"), KindStructure, errno.ErrStructure},
		{"TxOut trailing", parseErr(TxOut, "0000000000000000"+"0151"+"00"), KindStructure, errno.ErrStructure},
		{"Witness short", parseErr(Witness, "0201aa"), KindStructure, errno.ErrStructure},
		{"Hash32 size", parseErr(Hash32, "00"), KindStructure, errno.ErrStructure},
		{"Not a key", parseErr(PublicKey, "0400"), KindKey, errno.ErrKeyFormat},
		{"Not x-only", parseErr(XOnlyKey, pubKeyG), KindKey, errno.ErrKeyFormat},
		{"Bad path", parseErr(KeySourcePair, "deadbeef", "m/x"), KindPath, errno.ErrPathFormat},
		{"Bad fingerprint", parseErr(KeySourcePair, "dead", "m/1"), KindFingerprint, errno.ErrFingerprint},
		{"Fingerprint not hex", parseErr(KeySourcePair, "zz", "m/0"), KindFingerprint, errno.ErrFingerprint},
		{"Bad sighash", parseErr(SighashType, "SIGHASH_MAYBE"), KindSighash, errno.ErrSighashType},
		{"Zero sighash", parseErr(SighashType, "0"), KindSighash, errno.ErrSighashType},
		{"Arity", parseErr(Hex, "aa", "bb"), KindArity, errno.ErrArity},
		{"Document base64", parseErr(Document, "%%%"), KindBase64, errno.ErrBase64},
		{"Document magic", parseErr(Document, "aGVsbG8="), KindPsbt, errno.ErrPsbtFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			kind, ok := KindOf(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)

			code, _ := errno.Decode(tt.err)
			assert.Equal(t, tt.errno.Code, code)
			assert.ErrorIs(t, tt.err, tt.errno)
		})
	}
}

func TestOptionalPropagatesErrors(t *testing.T) {
	_, err := Optional(PublicKey).Deserialize([]string{"02ff"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindKey, kind)

	_, err = Optional(PublicKey).Deserialize(nil)
	kind, _ = KindOf(err)
	assert.Equal(t, KindArity, kind)
}

func TestWithTag(t *testing.T) {
	type half string
	c := WithTag(half("key"), PublicKey)

	got, err := Parse(c, pubKey2G)
	require.NoError(t, err)
	assert.Equal(t, half("key"), got.Tag)
	assert.Equal(t, mustHex(t, pubKey2G), got.Value)

	// 标签不出现在序列化结果中
	assert.Equal(t, []string{pubKey2G}, c.Serialize(got))
}

func TestSighashNames(t *testing.T) {
	for _, text := range []string{"SIGHASH_ALL", "all", "SIGHASH_ALL|SIGHASH_ANYONECANPAY", "0x01"} {
		_, err := Parse(SighashType, text)
		assert.NoError(t, err, text)
	}
	assert.Len(t, SighashNames(), 6)
}

func parseErr[T any](c Codec[T], slots ...string) error {
	_, err := c.Deserialize(slots)
	return err
}
