// Package install decides, runs and reports the installation of a single
// dependency.
package install

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/report"
	"github.com/kashifsb/envsetup/pkg/logger"
)

// Orchestrator installs one dependency. It is used once; callers may run
// several orchestrators concurrently.
type Orchestrator struct {
	dep    config.ResolvedDependency
	global bool

	executor   Executor
	dispatcher *Dispatcher
	progress   Progress
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	openLinks  bool
	timeout    time.Duration

	status Status
	report *report.Report
	err    error
	log    *logger.ContextLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithExecutor(e Executor) Option {
	return func(o *Orchestrator) { o.executor = e }
}

// WithDispatcher shares a link dispatcher between orchestrators so the
// caller can wait for every launch at exit.
func WithDispatcher(d *Dispatcher) Option {
	return func(o *Orchestrator) { o.dispatcher = d }
}

// WithLauncher launches links through l with a private dispatcher.
func WithLauncher(l Launcher) Option {
	return func(o *Orchestrator) { o.dispatcher = NewDispatcher(l) }
}

func WithProgress(p Progress) Option {
	return func(o *Orchestrator) { o.progress = p }
}

// WithOutput sets the streams the install command inherits.
func WithOutput(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		o.stdin = stdin
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithOpenLinks disables launching resource links when false, whatever the
// dependency asks for.
func WithOpenLinks(open bool) Option {
	return func(o *Orchestrator) { o.openLinks = open }
}

// WithTimeout bounds the install command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New prepares the install of dep under cfg. The report starts in the not
// installed state.
func New(cfg *config.ResolvedConfig, dep config.ResolvedDependency, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dep:       dep,
		global:    cfg.AutoinstallEnabled(),
		executor:  NewShellExecutor(),
		progress:  NopProgress{},
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		openLinks: true,
		status:    StatusNotInstalled,
		report:    report.New(dep.Name),
		log:       logger.Component("install").With("dependency", dep.Name),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.dispatcher == nil {
		o.dispatcher = NewDispatcher(BrowserLauncher{})
	}

	o.report.SetHeader(header(StatusNotInstalled, dep.Name))
	o.report.SetIntro(skippedIntro(dep.Name, false))
	return o
}

func (o *Orchestrator) Name() string {
	return o.dep.Name
}

func (o *Orchestrator) Dependency() config.ResolvedDependency {
	return o.dep
}

func (o *Orchestrator) Status() Status {
	return o.status
}

func (o *Orchestrator) Report() *report.Report {
	return o.report
}

// Err returns the failure recorded by the last Run: an *ExecutionError for
// a failed install or a *SpawnError.
func (o *Orchestrator) Err() error {
	return o.err
}

// Run installs or explains the dependency, then renders its instructions
// and resources. Only a *SpawnError is returned; a command that exits
// nonzero is recorded in the report and Status.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := time.Now()
	defer logger.LogDuration("install "+o.dep.Name, start)

	if err := o.runScript(ctx); err != nil {
		return err
	}
	o.renderInstructions()
	o.openResources()
	return nil
}

func (o *Orchestrator) runScript(ctx context.Context) error {
	name := o.dep.Name
	plan := Decide(o.dep, o.global)
	o.log.Debug("Planned install", "run", plan.Run, "reason", string(plan.Reason))

	if plan.Run {
		o.progress.Info("auto installing " + name)

		if err := o.execute(ctx); err != nil {
			o.report.SetHeader(header(StatusFailed, name))
			o.report.SetIntro(failedIntro(name))
			o.report.AddError(errorText(err))

			var spawnErr *SpawnError
			if errors.As(err, &spawnErr) {
				o.err = spawnErr
				o.log.Error("Install command could not start", "error", err)
				return spawnErr
			}

			o.err = err
			o.status = StatusFailed
			o.progress.Fail(failedMessage(name))
			o.report.AddInfo("run the following script to install " + name)
			o.log.Warn("Install command failed", "error", err)
		} else {
			o.status = StatusInstalled
			o.progress.Succeed("auto installed " + name)
			o.report.SetHeader(header(StatusInstalled, name))
			o.report.SetIntro(installedIntro(name))
			o.report.AddInfo(name + " was auto installed by running the following script")
			o.log.Info("Installed dependency")
		}
	} else {
		sudo := plan.Reason == ReasonSudo
		if sudo {
			o.progress.Warn(skippedMessage(name, true))
		}
		o.status = StatusNotInstalled
		o.report.SetHeader(header(StatusNotInstalled, name))
		o.report.SetIntro(skippedIntro(name, sudo))
		if o.dep.HasInstall() {
			o.report.AddInfo("please run the following script to install " + name)
		}
	}

	if plan.Script != "" {
		o.report.AddInfo(plan.Script)
	}
	return nil
}

// execute runs the install command, streaming stderr live while keeping a
// copy for the report.
func (o *Orchestrator) execute(ctx context.Context) error {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var captured bytes.Buffer
	err := o.executor.Run(ctx, Command{
		Script: o.dep.Install,
		Dir:    o.dep.Cwd,
		Shell:  true,
		Stdin:  o.stdin,
		Stdout: o.stdout,
		Stderr: io.MultiWriter(o.stderr, &captured),
	})
	if err == nil {
		return nil
	}

	var spawnErr *SpawnError
	if errors.As(err, &spawnErr) {
		return spawnErr
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		execErr = &ExecutionError{Code: -1, Err: err}
	}
	execErr.Stderr = strings.TrimSpace(captured.String())
	return execErr
}

func (o *Orchestrator) renderInstructions() {
	if o.dep.Instructions == "" {
		return
	}
	o.report.AddInfo(strings.TrimSpace(o.dep.Instructions))
}

func (o *Orchestrator) openResources() {
	if len(o.dep.Resources) == 0 {
		return
	}
	o.report.AddInfo(resourcesBlock(o.dep))

	if !o.dep.OpenEnabled() || !o.openLinks {
		return
	}
	o.dispatcher.Dispatch(o.dep.Resources...)
}

// errorText prefers the command's own stderr over the Go error.
func errorText(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) && execErr.Stderr != "" {
		return execErr.Stderr
	}
	return err.Error()
}
