package progress

// NoopProgress ничего не выводит.
type NoopProgress struct{}

// NewNoOp создаёт NoopProgress.
func NewNoOp() Progress {
	return &NoopProgress{}
}

func (p *NoopProgress) Start(string)         {}
func (p *NoopProgress) Update(int64, string) {}
func (p *NoopProgress) SetTotal(int64)       {}
func (p *NoopProgress) Finish()              {}
