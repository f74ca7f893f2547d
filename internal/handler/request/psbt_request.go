package request

// LoadRequest 加载 base64 编码的 PSBT
type LoadRequest struct {
	Psbt string `json:"psbt" binding:"required"`
}

// FieldRequest 标量字段的文本框内容，空字符串表示清除
type FieldRequest struct {
	Slots []string `json:"slots" binding:"required,min=1,max=2"`
}

// EntryRequest 键值条目；删除时只需要 key
type EntryRequest struct {
	Key   []string `json:"key" binding:"required,min=1,max=2"`
	Value []string `json:"value" binding:"omitempty,max=2"`
}

// RenameRequest 修改条目的 key
type RenameRequest struct {
	OldKey []string `json:"old_key" binding:"required,min=1,max=2"`
	NewKey []string `json:"new_key" binding:"required,min=1,max=2"`
}

// NetworkRequest 切换地址展示使用的网络
type NetworkRequest struct {
	Network string `json:"network" binding:"required,btcnetwork"`
}
