package setup

import (
	"io"
	"os"
	"time"

	"github.com/kashifsb/envsetup/internal/install"
)

// DefaultConfigFile is the dependency file looked up when none is given.
const DefaultConfigFile = "envsetup.yaml"

// Options controls one envsetup run.
type Options struct {
	// Config file
	ConfigPath string
	Systems    []string

	// Runtime options
	Headless   bool
	ReportPath string
	Jobs       int
	Timeout    time.Duration
	NoOpen     bool

	// Streams; nil means the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Collaborators; nil means the production implementation.
	Executor install.Executor
	Launcher install.Launcher
	Environ  func() []string
}

func NewOptions() Options {
	return Options{
		ConfigPath: DefaultConfigFile,
		Jobs:       1,
	}
}

func (o *Options) applyDefaults() {
	if o.ConfigPath == "" {
		o.ConfigPath = DefaultConfigFile
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Executor == nil {
		o.Executor = install.NewShellExecutor()
	}
	if o.Launcher == nil {
		o.Launcher = install.BrowserLauncher{}
	}
	if o.Environ == nil {
		o.Environ = os.Environ
	}
}
