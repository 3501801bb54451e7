package install

// Progress receives one-line status updates while installs run.
type Progress interface {
	Info(msg string)
	Succeed(msg string)
	Fail(msg string)
	Warn(msg string)
}

// NopProgress discards every update.
type NopProgress struct{}

func (NopProgress) Info(string)    {}
func (NopProgress) Succeed(string) {}
func (NopProgress) Fail(string)    {}
func (NopProgress) Warn(string)    {}
