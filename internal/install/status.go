package install

// Status is the outcome of one dependency install.
type Status string

const (
	StatusNotInstalled Status = "notInstalled"
	StatusInstalled    Status = "installed"
	StatusFailed       Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// Marker is the glyph used in report headers.
func (s Status) Marker() string {
	switch s {
	case StatusInstalled:
		return "✔"
	case StatusFailed:
		return "✘"
	default:
		return "➜"
	}
}
