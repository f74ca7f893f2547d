// Package repl 逐行读取命令并转换为会话操作。
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/field"
	"psbt-editor/internal/session"
	"psbt-editor/internal/view"
	"psbt-editor/pkg/errno"
	"psbt-editor/pkg/logger"
)

// ErrQuit 由 quit/exit 命令返回
var ErrQuit = errors.New("quit")

// Blank 在命令行中表示空文本框
const Blank = "-"

const usage = `commands:
  load <base64>                                  load a PSBT (undoable)
  set <in|out> <index> <field> <slot>...         set a field, "-" leaves a slot blank
  entry <in|out> <index> <field> <key> <value>...  insert or overwrite an entry
  rename <in|out> <index> <field> <old> <new>    change the key of an entry
  remove <in|out> <index> <field> <key>          delete an entry
  draft <in|out> <index> <field> <key|value> <slot>...  fill half of a new entry
  commit <in|out> <index> <field>                add the draft entry when complete
  undo | redo                                    step through the edit history
  show [json]                                    print the document
  history                                        print the history slots
  errors                                         print pending text errors
  export                                         print the document as base64
  network <name>                                 mainnet, testnet3, regtest, signet, simnet
  fields                                         list editable fields
  help | quit
`

// REPL 命令解释器
type REPL struct {
	session *session.Session
	out     io.Writer
	prompt  string
}

func New(s *session.Session, out io.Writer, prompt string) *REPL {
	return &REPL{session: s, out: out, prompt: prompt}
}

// Run 逐行执行命令，直到输入结束、quit 或 ctx 结束
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	// base64 编码的 PSBT 可能很长
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, r.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		err := r.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			code, msg := errno.Decode(err)
			fmt.Fprintf(r.out, "error %d: %s\n", code, msg)
		}
	}
}

// Exec 执行一行命令
func (r *REPL) Exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	logger.Debug("repl command", zap.String("command", args[0]), zap.Int("args", len(args)-1))

	s := r.session
	switch cmd, rest := args[0], args[1:]; cmd {
	case "help", "?":
		fmt.Fprint(r.out, usage)
	case "quit", "exit":
		return ErrQuit
	case "load":
		if len(rest) != 1 {
			return usageErr("load <base64>")
		}
		if err := s.Load(rest[0]); err != nil {
			return err
		}
		return r.summary()
	case "set":
		a, err := parseAddress(rest, 1)
		if err != nil {
			return err
		}
		return s.SetField(a.target, a.index, a.name, slots(a.rest)...)
	case "entry":
		a, err := parseAddress(rest, 2)
		if err != nil {
			return err
		}
		return s.SetEntry(a.target, a.index, a.name, slots(a.rest[:1]), slots(a.rest[1:]))
	case "rename":
		a, err := parseAddress(rest, 2)
		if err != nil {
			return err
		}
		return s.RenameEntry(a.target, a.index, a.name, slots(a.rest[:1]), slots(a.rest[1:2]))
	case "remove":
		a, err := parseAddress(rest, 1)
		if err != nil {
			return err
		}
		return s.RemoveEntry(a.target, a.index, a.name, slots(a.rest[:1]))
	case "draft":
		a, err := parseAddress(rest, 2)
		if err != nil {
			return err
		}
		half, err := parseHalf(a.rest[0])
		if err != nil {
			return err
		}
		if err := s.SetDraft(a.target, a.index, a.name, half, slots(a.rest[1:])...); err != nil {
			return err
		}
		draft, err := s.Draft(a.target, a.index, a.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "draft: %s = %s\n", strings.Join(draft.Key, " "), strings.Join(draft.Value, " "))
	case "commit":
		a, err := parseAddress(rest, 0)
		if err != nil {
			return err
		}
		ok, err := s.CommitDraft(a.target, a.index, a.name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.out, "draft incomplete, nothing committed")
		}
	case "undo":
		if !s.Undo() {
			fmt.Fprintln(r.out, "nothing to undo")
		}
	case "redo":
		if !s.Redo() {
			fmt.Fprintln(r.out, "nothing to redo")
		}
	case "show":
		if len(rest) == 1 && rest[0] == "json" {
			enc := json.NewEncoder(r.out)
			enc.SetIndent("", "  ")
			return enc.Encode(s.State())
		}
		return view.Render(r.out, s.Snapshot())
	case "history":
		h := s.History()
		for i, slot := range h.Slots {
			marker := " "
			if i < h.Position {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %d %s\n", marker, i, slot)
		}
	case "errors":
		for key, msg := range s.Errors() {
			fmt.Fprintf(r.out, "%s: %s\n", key, msg)
		}
	case "export":
		encoded, err := s.Export()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, encoded)
	case "network":
		if len(rest) != 1 {
			fmt.Fprintln(r.out, s.Network())
			return nil
		}
		return s.SetNetwork(rest[0])
	case "fields":
		r.fields()
	default:
		return errno.ErrBind.WithMessage(fmt.Sprintf("unknown command %q, try help", cmd))
	}
	return nil
}

func (r *REPL) summary() error {
	d := r.session.Snapshot()
	_, err := fmt.Fprintf(r.out, "loaded %s: %d inputs, %d outputs\n", d.TxID, len(d.Inputs), len(d.Outputs))
	return err
}

func (r *REPL) fields() {
	fmt.Fprintln(r.out, "input fields:")
	for _, spec := range edit.InputFields {
		fmt.Fprintf(r.out, "  %s\n", describeField(spec.Name, spec.IsKeyed(), spec.Arity))
	}
	fmt.Fprintln(r.out, "output fields:")
	for _, spec := range edit.OutputFields {
		fmt.Fprintf(r.out, "  %s\n", describeField(spec.Name, spec.IsKeyed(), spec.Arity))
	}
}

func describeField(name string, keyed bool, arity field.Arity) string {
	switch {
	case keyed:
		return name + " (keyed)"
	case arity == field.Pair:
		return name + " (2 slots)"
	}
	return name
}

// location 命令中的 <in|out> <index> <field> 部分
type location struct {
	target session.Target
	index  int
	name   string
	rest   []string
}

// parseAddress 解析寻址参数，并要求之后至少还有 min 个参数
func parseAddress(args []string, min int) (location, error) {
	if len(args) < 3+min {
		return location{}, usageErr("<in|out> <index> <field> ...")
	}
	target, err := session.ParseTarget(args[0])
	if err != nil {
		return location{}, err
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return location{}, errno.ErrBind.WithMessage(fmt.Sprintf("invalid index %q", args[1]))
	}
	return location{target: target, index: index, name: args[2], rest: args[3:]}, nil
}

func parseHalf(s string) (edit.Half, error) {
	switch s {
	case "key":
		return edit.KeyHalf, nil
	case "value":
		return edit.ValueHalf, nil
	}
	return 0, usageErr("draft ... <key|value> <slot>...")
}

// slots 把 "-" 还原为空文本框
func slots(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a != Blank {
			out[i] = a
		}
	}
	return out
}

func usageErr(form string) error {
	return errno.ErrBind.WithMessage("usage: " + form)
}
