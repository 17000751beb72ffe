package vision

// ONNXConfig параметры модели сегментации.
type ONNXConfig struct {
	ModelPath    string
	InputSize    int      // сторона квадратного входа сети
	NMSThreshold float64  // порог IoU для подавления дублей
	OutputNames  []string // предсказания и прототипы масок
}

func (c *ONNXConfig) setDefaults() {
	if c.InputSize <= 0 {
		c.InputSize = 640
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold > 1 {
		c.NMSThreshold = 0.45
	}
	if len(c.OutputNames) != 2 {
		c.OutputNames = []string{"output0", "output1"}
	}
}
