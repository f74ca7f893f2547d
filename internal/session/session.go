// Package session 是文档与历史日志的唯一修改入口。
//
// 所有修改都先把文本解码为操作，再通过 Do 应用并记录逆操作；
// 解码失败的文本只记录错误，不产生操作，文档保持原值。
// Session 不是并发安全的，调用方负责串行化。
package session

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"go.uber.org/zap"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/field"
	"psbt-editor/internal/history"
	"psbt-editor/internal/view"
	"psbt-editor/pkg/address"
	"psbt-editor/pkg/errno"
	"psbt-editor/pkg/logger"
	"psbt-editor/pkg/monitor"
)

// Session 一次编辑会话
type Session struct {
	doc     edit.Document
	history *history.History
	gen     *address.BTCGenerator
	encode  func(*psbt.Packet) (string, error)

	inputs  *records[psbt.PInput, edit.InputOp]
	outputs *records[psbt.POutput, edit.OutputOp]

	loadErr   error
	fieldErrs map[string]error
}

// New 创建空会话，network 为空时使用 mainnet
func New(network string) (*Session, error) {
	params, err := address.ParseNetwork(network)
	if err != nil {
		return nil, err
	}
	return &Session{
		history:   history.New(),
		gen:       address.NewBTCGenerator(params),
		encode:    (*psbt.Packet).B64Encode,
		inputs:    newInputs(),
		outputs:   newOutputs(),
		fieldErrs: map[string]error{},
	}, nil
}

// Do 应用 op 并记录逆操作
func (s *Session) Do(op edit.Operation) {
	inverse := s.history.Do(&s.doc, op)
	monitor.Editor.ObserveEdit(targetOf(op))
	monitor.Editor.SetHistory(s.history.Len(), s.history.Position())
	logger.Debug("edit applied",
		zap.Stringer("op", op),
		zap.Stringer("inverse", inverse),
		zap.Int("position", s.history.Position()),
	)
}

func targetOf(op edit.Operation) string {
	switch op.(type) {
	case edit.ReplaceDocument:
		return "document"
	case edit.MutateInput:
		return string(Input)
	case edit.MutateOutput:
		return string(Output)
	}
	return "noop"
}

// Load 解码 base64 文本并替换文档；失败时保留当前文档并记录错误
func (s *Session) Load(text string) error {
	packet, err := field.Document.Deserialize([]string{text})
	if err != nil {
		s.loadErr = err
		s.reject("load", err)
		return err
	}

	s.loadErr = nil
	s.resetEditorState()
	s.Do(edit.ReplaceDocument{Packet: packet})
	logger.Info("psbt loaded",
		zap.Int("inputs", s.doc.NumInputs()),
		zap.Int("outputs", s.doc.NumOutputs()),
	)
	return nil
}

// Export 当前文档的 base64 编码
func (s *Session) Export() (string, error) {
	if !s.doc.Loaded() {
		return "", errno.ErrNoDocument
	}
	encoded, err := s.encode(s.doc.Packet)
	if err != nil {
		logger.Error("encode psbt failed", zap.Error(err))
		return "", errno.InternalServerError.WithMessage("encode psbt: " + err.Error())
	}
	return encoded, nil
}

// Undo 没有可撤销的内容时返回 false
func (s *Session) Undo() bool {
	before := s.doc.Packet
	ok := s.history.Undo(&s.doc)
	s.afterHistory("undo", ok, before)
	return ok
}

// Redo 没有可重做的内容时返回 false
func (s *Session) Redo() bool {
	before := s.doc.Packet
	ok := s.history.Redo(&s.doc)
	s.afterHistory("redo", ok, before)
	return ok
}

func (s *Session) afterHistory(action string, ok bool, before *psbt.Packet) {
	monitor.Editor.ObserveHistory(action, ok)
	if !ok {
		logger.Debug("nothing to "+action, zap.Int("position", s.history.Position()))
		return
	}
	// 撤销/重做了整个文档的替换，草稿中的下标不再指向同一份文档
	if s.doc.Packet != before {
		s.inputs.resetDrafts()
		s.outputs.resetDrafts()
	}
	// 文本框随文档恢复为合法值，旧的错误提示不再对应任何文本
	clear(s.fieldErrs)
	monitor.Editor.SetHistory(s.history.Len(), s.history.Position())
	logger.Debug(action, zap.Int("position", s.history.Position()), zap.Int("length", s.history.Len()))
}

// resetEditorState 下标在新文档中不再有效
func (s *Session) resetEditorState() {
	clear(s.fieldErrs)
	s.inputs.resetDrafts()
	s.outputs.resetDrafts()
}

// SetNetwork 切换地址展示使用的网络
func (s *Session) SetNetwork(name string) error {
	params, err := address.ParseNetwork(name)
	if err != nil {
		return errno.ErrBind.WithMessage(err.Error())
	}
	s.gen = address.NewBTCGenerator(params)
	return nil
}

func (s *Session) Network() string {
	return s.gen.Network().Name
}

// reject 记录一次被拒绝的文本
func (s *Session) reject(key string, err error) {
	code, _ := errno.Decode(err)
	monitor.Editor.ObserveRejected(code)
	logger.Debug("text rejected", zap.String("field", key), zap.Int("code", code), zap.Error(err))
}

// recordFieldError 只记录解码错误，寻址类错误直接返回给调用方
func (s *Session) recordFieldError(key string, err error) {
	if _, ok := field.KindOf(err); ok {
		s.fieldErrs[key] = err
	}
	s.reject(key, err)
}

func (s *Session) clearFieldError(key string) {
	delete(s.fieldErrs, key)
}

// Errors 当前的错误提示，key 为 load 或 input/<i>/<name> 这样的字段地址
func (s *Session) Errors() map[string]string {
	errs := make(map[string]string, len(s.fieldErrs)+1)
	if s.loadErr != nil {
		errs["load"] = s.loadErr.Error()
	}
	for key, err := range s.fieldErrs {
		errs[key] = err.Error()
	}
	return errs
}

// FieldError 某个字段最近一次的解码错误
func (s *Session) FieldError(target Target, index int, name string) error {
	return s.fieldErrs[fmt.Sprintf("%s/%d/%s", target, index, name)]
}

// LoadError 最近一次加载失败的原因
func (s *Session) LoadError() error {
	return s.loadErr
}

func (s *Session) Loaded() bool {
	return s.doc.Loaded()
}

// HistoryState 历史日志的位置信息
type HistoryState struct {
	Position int      `json:"position"`
	Length   int      `json:"length"`
	CanUndo  bool     `json:"can_undo"`
	CanRedo  bool     `json:"can_redo"`
	Slots    []string `json:"slots"`
}

// State 会话的只读快照
type State struct {
	Document view.Document             `json:"document"`
	Errors   map[string]string         `json:"errors"`
	Drafts   map[string]edit.EntryText `json:"drafts"`
	History  HistoryState              `json:"history"`
}

// Snapshot 文档的展示结构
func (s *Session) Snapshot() view.Document {
	return view.Build(s.doc.Packet, s.gen)
}

// History 历史日志当前的位置与各槽位的描述
func (s *Session) History() HistoryState {
	return HistoryState{
		Position: s.history.Position(),
		Length:   s.history.Len(),
		CanUndo:  s.history.CanUndo(),
		CanRedo:  s.history.CanRedo(),
		Slots:    s.history.Slots(),
	}
}

func (s *Session) State() State {
	drafts := map[string]edit.EntryText{}
	s.inputs.draftTexts(drafts)
	s.outputs.draftTexts(drafts)
	return State{
		Document: s.Snapshot(),
		Errors:   s.Errors(),
		Drafts:   drafts,
		History:  s.History(),
	}
}

// FieldStrings 标量字段当前值的文本
func (s *Session) FieldStrings(target Target, index int, name string) ([]string, error) {
	switch target {
	case Input:
		return fieldStrings(s, s.inputs, index, name)
	case Output:
		return fieldStrings(s, s.outputs, index, name)
	}
	return nil, errUnknownTarget(target)
}

func fieldStrings[R, O any](s *Session, r *records[R, O], index int, name string) ([]string, error) {
	spec, err := r.field(&s.doc, index, name)
	if err != nil {
		return nil, err
	}
	if spec.IsKeyed() {
		return nil, errno.ErrKeyed.WithMessage(fmt.Sprintf("%s is a keyed collection", name))
	}
	return spec.Read(r.at(&s.doc, index)), nil
}

// Entries 键值字段当前的条目文本
func (s *Session) Entries(target Target, index int, name string) ([]edit.EntryText, error) {
	switch target {
	case Input:
		return entries(s, s.inputs, index, name)
	case Output:
		return entries(s, s.outputs, index, name)
	}
	return nil, errUnknownTarget(target)
}

func entries[R, O any](s *Session, r *records[R, O], index int, name string) ([]edit.EntryText, error) {
	ks, err := r.keyedField(&s.doc, index, name)
	if err != nil {
		return nil, err
	}
	return ks.Entries(r.at(&s.doc, index)), nil
}

func errUnknownTarget(target Target) error {
	return errno.ErrUnknownField.WithMessage(fmt.Sprintf("unknown record type %q", target))
}

// IsRejected 是否为文本解码失败 (而非寻址错误)
func IsRejected(err error) bool {
	var de *field.DeserializeError
	return errors.As(err, &de)
}
