package handler

import (
	"fmt"
	"strconv"
	"sync"

	"psbt-editor/internal/edit"
	"psbt-editor/internal/handler/request"
	"psbt-editor/internal/handler/response"
	"psbt-editor/internal/session"
	"psbt-editor/pkg/errno"
	"psbt-editor/pkg/validator"

	"github.com/gin-gonic/gin"
)

// EditorHandler 把 HTTP 请求转换为会话操作，所有请求串行执行
type EditorHandler struct {
	mu      sync.Mutex
	session *session.Session
}

func NewEditorHandler(s *session.Session) *EditorHandler {
	return &EditorHandler{session: s}
}

// bind 解析请求体，失败时直接返回 ErrBind
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return false
	}
	return true
}

// locked 在锁内执行 fn
func (h *EditorHandler) locked(fn func(s *session.Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.session)
}

// reply 成功时返回最新状态；失败时错误码旁边同样附上状态，方便前端展示字段错误
func reply(c *gin.Context, s *session.Session, err error) {
	if err != nil {
		response.ErrorWithData(c, err, s.State())
		return
	}
	response.Success(c, s.State())
}

// GetState 当前文档、错误提示、草稿与历史位置
func (h *EditorHandler) GetState(c *gin.Context) {
	h.locked(func(s *session.Session) {
		response.Success(c, s.State())
	})
}

// Load 加载 PSBT，失败时保留当前文档
func (h *EditorHandler) Load(c *gin.Context) {
	var req request.LoadRequest
	if !bind(c, &req) {
		return
	}
	h.locked(func(s *session.Session) {
		reply(c, s, s.Load(req.Psbt))
	})
}

// Export 当前文档的 base64 编码
func (h *EditorHandler) Export(c *gin.Context) {
	h.locked(func(s *session.Session) {
		encoded, err := s.Export()
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, gin.H{"psbt": encoded})
	})
}

// SetNetwork 切换地址展示网络
func (h *EditorHandler) SetNetwork(c *gin.Context) {
	var req request.NetworkRequest
	if !bind(c, &req) {
		return
	}
	h.locked(func(s *session.Session) {
		reply(c, s, s.SetNetwork(req.Network))
	})
}

// Undo 没有可撤销的内容不是错误，applied 为 false
func (h *EditorHandler) Undo(c *gin.Context) {
	h.locked(func(s *session.Session) {
		applied := s.Undo()
		response.Success(c, gin.H{"applied": applied, "state": s.State()})
	})
}

// Redo 没有可重做的内容不是错误，applied 为 false
func (h *EditorHandler) Redo(c *gin.Context) {
	h.locked(func(s *session.Session) {
		applied := s.Redo()
		response.Success(c, gin.H{"applied": applied, "state": s.State()})
	})
}

// Records 某一类记录 (inputs / outputs) 的字段路由
type Records struct {
	editor *EditorHandler
	target session.Target
}

func (h *EditorHandler) Records(target session.Target) *Records {
	return &Records{editor: h, target: target}
}

func parseIndex(c *gin.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, errno.ErrBind.WithMessage(fmt.Sprintf("invalid index %q", c.Param("index")))
	}
	return index, nil
}

// withIndex 解析下标后在锁内执行 fn
func (r *Records) withIndex(c *gin.Context, fn func(s *session.Session, index int) error) {
	index, err := parseIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	r.editor.locked(func(s *session.Session) {
		reply(c, s, fn(s, index))
	})
}

// SetField PUT /:index/fields/:name
func (r *Records) SetField(c *gin.Context) {
	var req request.FieldRequest
	if !bind(c, &req) {
		return
	}
	r.withIndex(c, func(s *session.Session, index int) error {
		return s.SetField(r.target, index, c.Param("name"), req.Slots...)
	})
}

// SetEntry PUT /:index/fields/:name/entries
func (r *Records) SetEntry(c *gin.Context) {
	var req request.EntryRequest
	if !bind(c, &req) {
		return
	}
	r.withIndex(c, func(s *session.Session, index int) error {
		return s.SetEntry(r.target, index, c.Param("name"), req.Key, req.Value)
	})
}

// RemoveEntry DELETE /:index/fields/:name/entries
func (r *Records) RemoveEntry(c *gin.Context) {
	var req request.EntryRequest
	if !bind(c, &req) {
		return
	}
	r.withIndex(c, func(s *session.Session, index int) error {
		return s.RemoveEntry(r.target, index, c.Param("name"), req.Key)
	})
}

// RenameEntry POST /:index/fields/:name/entries/rename
func (r *Records) RenameEntry(c *gin.Context) {
	var req request.RenameRequest
	if !bind(c, &req) {
		return
	}
	r.withIndex(c, func(s *session.Session, index int) error {
		return s.RenameEntry(r.target, index, c.Param("name"), req.OldKey, req.NewKey)
	})
}

// SetDraft PUT /:index/fields/:name/draft/:half
func (r *Records) SetDraft(c *gin.Context) {
	var half edit.Half
	switch c.Param("half") {
	case "key":
		half = edit.KeyHalf
	case "value":
		half = edit.ValueHalf
	default:
		response.Error(c, errno.ErrBind.WithMessage("draft half must be key or value"))
		return
	}

	var req request.FieldRequest
	if !bind(c, &req) {
		return
	}
	r.withIndex(c, func(s *session.Session, index int) error {
		return s.SetDraft(r.target, index, c.Param("name"), half, req.Slots...)
	})
}

// CommitDraft POST /:index/fields/:name/draft/commit，草稿不完整时 committed 为 false
func (r *Records) CommitDraft(c *gin.Context) {
	index, err := parseIndex(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	r.editor.locked(func(s *session.Session) {
		committed, err := s.CommitDraft(r.target, index, c.Param("name"))
		if err != nil {
			response.ErrorWithData(c, err, s.State())
			return
		}
		response.Success(c, gin.H{"committed": committed, "state": s.State()})
	})
}
