package session

import (
	"go.uber.org/zap"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/keyed"
	"psbt-editor/pkg/logger"
)

// SetField 解码标量字段的文本并写入；文本非法时记录错误，文档保持原值
func (s *Session) SetField(target Target, index int, name string, slots ...string) error {
	switch target {
	case Input:
		return setField(s, s.inputs, index, name, slots)
	case Output:
		return setField(s, s.outputs, index, name, slots)
	}
	return errUnknownTarget(target)
}

func (s *Session) SetInputField(index int, name string, slots ...string) error {
	return s.SetField(Input, index, name, slots...)
}

func (s *Session) SetOutputField(index int, name string, slots ...string) error {
	return s.SetField(Output, index, name, slots...)
}

func setField[R, O any](s *Session, r *records[R, O], index int, name string, slots []string) error {
	spec, err := r.field(&s.doc, index, name)
	if err != nil {
		return err
	}
	key := r.errorKey(index, name)

	op, err := spec.Parse(slots)
	if err != nil {
		s.recordFieldError(key, err)
		return err
	}
	s.clearFieldError(key)
	s.Do(r.wrap(index, op))
	return nil
}

// SetEntry 插入或覆盖键值字段中的一项
func (s *Session) SetEntry(target Target, index int, name string, key, value []string) error {
	return s.editEntry(target, index, name, entryEdit{kind: keyed.StepSet, key: key, value: value})
}

// RenameEntry 修改条目的 key，作为一次修改记录
func (s *Session) RenameEntry(target Target, index int, name string, oldKey, newKey []string) error {
	return s.editEntry(target, index, name, entryEdit{kind: keyed.StepRename, key: oldKey, newKey: newKey})
}

// RemoveEntry 删除条目，key 不存在时记录一个空修改
func (s *Session) RemoveEntry(target Target, index int, name string, key []string) error {
	return s.editEntry(target, index, name, entryEdit{kind: keyed.StepRemove, key: key})
}

// entryEdit 一次键值条目修改的文本
type entryEdit struct {
	kind   keyed.StepKind
	key    []string
	newKey []string
	value  []string
}

func buildEntryOp[R, O any](ks edit.KeyedSpec[R, O], e entryEdit) (O, error) {
	switch e.kind {
	case keyed.StepRename:
		return ks.Rename(e.key, e.newKey)
	case keyed.StepRemove:
		return ks.Remove(e.key)
	default:
		return ks.Set(e.key, e.value)
	}
}

func (s *Session) editEntry(target Target, index int, name string, e entryEdit) error {
	switch target {
	case Input:
		return editEntry(s, s.inputs, index, name, e)
	case Output:
		return editEntry(s, s.outputs, index, name, e)
	}
	return errUnknownTarget(target)
}

func editEntry[R, O any](s *Session, r *records[R, O], index int, name string, e entryEdit) error {
	ks, err := r.keyedField(&s.doc, index, name)
	if err != nil {
		return err
	}
	key := r.errorKey(index, name)

	op, err := buildEntryOp(ks, e)
	if err != nil {
		s.recordFieldError(key, err)
		return err
	}
	s.clearFieldError(key)
	s.Do(r.wrap(index, op))
	return nil
}

// SetDraft 更新新条目草稿的 key 或 value；空白文本清空该部分
func (s *Session) SetDraft(target Target, index int, name string, half edit.Half, slots ...string) error {
	switch target {
	case Input:
		return setDraft(s, s.inputs, index, name, half, slots)
	case Output:
		return setDraft(s, s.outputs, index, name, half, slots)
	}
	return errUnknownTarget(target)
}

func setDraft[R, O any](s *Session, r *records[R, O], index int, name string, half edit.Half, slots []string) error {
	ks, err := r.keyedField(&s.doc, index, name)
	if err != nil {
		return err
	}
	key := r.errorKey(index, name) + "/draft/" + half.String()

	if err := r.draft(ks, r.errorKey(index, name)).Set(half, slots); err != nil {
		s.recordFieldError(key, err)
		return err
	}
	s.clearFieldError(key)
	return nil
}

// CommitDraft 草稿的两部分都已填写时插入条目并返回 true，否则什么也不做
func (s *Session) CommitDraft(target Target, index int, name string) (bool, error) {
	switch target {
	case Input:
		return commitDraft(s, s.inputs, index, name)
	case Output:
		return commitDraft(s, s.outputs, index, name)
	}
	return false, errUnknownTarget(target)
}

func commitDraft[R, O any](s *Session, r *records[R, O], index int, name string) (bool, error) {
	ks, err := r.keyedField(&s.doc, index, name)
	if err != nil {
		return false, err
	}
	op, ok := r.draft(ks, r.errorKey(index, name)).Commit()
	if !ok {
		logger.Debug("draft incomplete", zap.String("field", r.errorKey(index, name)))
		return false, nil
	}
	s.Do(r.wrap(index, op))
	return true, nil
}

// Draft 草稿当前的文本
func (s *Session) Draft(target Target, index int, name string) (edit.EntryText, error) {
	switch target {
	case Input:
		return draftText(s, s.inputs, index, name)
	case Output:
		return draftText(s, s.outputs, index, name)
	}
	return edit.EntryText{}, errUnknownTarget(target)
}

func draftText[R, O any](s *Session, r *records[R, O], index int, name string) (edit.EntryText, error) {
	ks, err := r.keyedField(&s.doc, index, name)
	if err != nil {
		return edit.EntryText{}, err
	}
	return r.draft(ks, r.errorKey(index, name)).Text(), nil
}
