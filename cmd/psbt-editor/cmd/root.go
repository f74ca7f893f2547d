package cmd

import (
	"fmt"
	"os"

	"psbt-editor/pkg/config"
	"psbt-editor/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	network string
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "psbt-editor",
	Short: "PSBT 编辑器",
	Long: `逐字段编辑部分签名的比特币交易 (PSBT)。
每次修改都可以撤销和重做，提供交互式命令行与 HTTP 两种入口。`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(cfgFile)
		if network != "" {
			config.Global.Editor.Network = network
		}
		if err := logger.Init(config.Global.App.Env, config.Global.App.LogLevel); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认 ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "", "地址展示使用的网络 (mainnet, testnet3, regtest, signet, simnet)")
}
