package converter

// TextConverter 定义文本转换器接口
type TextConverter interface {
	TradToSim(text string) string // 将繁体中文转换为简体
}

// Passthrough 不做任何转换，用于关闭繁简转换时
type Passthrough struct{}

// TradToSim 原样返回
func (Passthrough) TradToSim(text string) string {
	return text
}
