package cmd

import (
	"encoding/json"
	"io"
	"os"

	"psbt-editor/internal/session"
	"psbt-editor/internal/view"
	"psbt-editor/pkg/config"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [base64]",
	Short: "解析 PSBT 并打印全部字段",
	Long: `解析 base64 编码的 PSBT 并打印输入、输出与每个字段的文本。
未给出参数时从 --file 指定的文件读取，文件为 "-" 时读取标准输入。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		// 1. 读取输入
		text, err := readPSBT(args, file)
		if err != nil {
			return err
		}

		// 2. 解码
		s, err := session.New(config.Global.Editor.Network)
		if err != nil {
			return err
		}
		if err := s.Load(text); err != nil {
			return err
		}

		// 3. 输出
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s.Snapshot())
		}
		return view.Render(out, s.Snapshot())
	},
}

func readPSBT(args []string, file string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	var (
		data []byte
		err  error
	)
	switch file {
	case "", "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("file", "f", "", "包含 base64 PSBT 的文件，- 表示标准输入")
	inspectCmd.Flags().Bool("json", false, "以 JSON 输出")
}
