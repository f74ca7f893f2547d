package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// EditorMetrics 编辑会话的业务指标
type EditorMetrics struct {
	EditsTotal      *prometheus.CounterVec
	HistoryTotal    *prometheus.CounterVec
	RejectedTotal   *prometheus.CounterVec
	HistoryLength   prometheus.Gauge
	HistoryPosition prometheus.Gauge
}

// Editor Global Metrics Instance，未注册时照常计数
var Editor = &EditorMetrics{
	EditsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "psbt_editor_edits_total",
		Help: "Edits applied to the document, by target",
	}, []string{"target"}),
	HistoryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "psbt_editor_history_actions_total",
		Help: "Undo and redo requests, by outcome",
	}, []string{"action", "outcome"}),
	RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "psbt_editor_rejected_input_total",
		Help: "Text that failed to decode, by error code",
	}, []string{"code"}),
	HistoryLength: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "psbt_editor_history_length",
		Help: "Number of slots in the edit history",
	}),
	HistoryPosition: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "psbt_editor_history_position",
		Help: "Current position of the edit history cursor",
	}),
}

func registerEditorMetrics(r prometheus.Registerer) {
	r.MustRegister(
		Editor.EditsTotal,
		Editor.HistoryTotal,
		Editor.RejectedTotal,
		Editor.HistoryLength,
		Editor.HistoryPosition,
	)
}

// ObserveEdit 记录一次已应用的修改，target 为 document / input / output
func (m *EditorMetrics) ObserveEdit(target string) {
	m.EditsTotal.WithLabelValues(target).Inc()
}

// ObserveHistory 记录一次撤销/重做请求
func (m *EditorMetrics) ObserveHistory(action string, ok bool) {
	outcome := "applied"
	if !ok {
		outcome = "empty"
	}
	m.HistoryTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveRejected 记录一次解码失败
func (m *EditorMetrics) ObserveRejected(code int) {
	m.RejectedTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// SetHistory 更新历史日志的长度与位置
func (m *EditorMetrics) SetHistory(length, position int) {
	m.HistoryLength.Set(float64(length))
	m.HistoryPosition.Set(float64(position))
}
