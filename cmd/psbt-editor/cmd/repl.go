package cmd

import (
	"os"

	"psbt-editor/internal/repl"
	"psbt-editor/internal/session"
	"psbt-editor/pkg/config"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [base64]",
	Short: "交互式编辑 PSBT",
	Long:  `逐行读取命令编辑 PSBT，输入 help 查看命令列表。可选参数为初始加载的 PSBT。`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session.New(config.Global.Editor.Network)
		if err != nil {
			return err
		}

		r := repl.New(s, cmd.OutOrStdout(), config.Global.Editor.Prompt)
		if len(args) == 1 {
			if err := r.Exec("load " + args[0]); err != nil {
				return err
			}
		}
		return r.Run(cmd.Context(), os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
