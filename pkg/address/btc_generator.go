package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var ErrNonStandardScript = errors.New("script has no standard address")

// Networks 支持显示的网络，名称与 chaincfg.Params.Name 一致
var Networks = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SigNetParams,
	&chaincfg.SimNetParams,
}

// ParseNetwork 按名称查找网络参数，"bitcoin" 视为 mainnet 的别名
func ParseNetwork(name string) (*chaincfg.Params, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "bitcoin" || name == "" {
		return &chaincfg.MainNetParams, nil
	}
	for _, params := range Networks {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, fmt.Errorf("unknown network %q", name)
}

// BTCGenerator 比特币地址生成器 (仅用于展示)
type BTCGenerator struct {
	network *chaincfg.Params
}

func NewBTCGenerator(network *chaincfg.Params) *BTCGenerator {
	if network == nil {
		network = &chaincfg.MainNetParams
	}
	return &BTCGenerator{network: network}
}

// Network 返回当前使用的网络参数
func (g *BTCGenerator) Network() *chaincfg.Params {
	return g.network
}

// ScriptToAddress 将输出脚本 (scriptPubKey) 转换为地址字符串
// 多签等包含多个地址的脚本没有单一地址，返回 ErrNonStandardScript
func (g *BTCGenerator) ScriptToAddress(pkScript []byte) (string, error) {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, g.network)
	if err != nil {
		return "", err
	}
	if class == txscript.NonStandardTy || class == txscript.MultiSigTy || len(addrs) != 1 {
		return "", ErrNonStandardScript
	}
	return addrs[0].EncodeAddress(), nil
}
