package install

import (
	"fmt"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/kashifsb/envsetup/pkg/logger"
)

// Launcher opens a resource link for the user.
type Launcher interface {
	Open(url string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(url string) error

func (f LauncherFunc) Open(url string) error {
	return f(url)
}

// BrowserLauncher opens links in the default browser.
type BrowserLauncher struct{}

func (BrowserLauncher) Open(url string) error {
	return browser.OpenURL(url)
}

// Dispatcher launches links without waiting on them. Wait blocks until
// every dispatched launch has returned.
type Dispatcher struct {
	launcher Launcher
	group    errgroup.Group
	log      *logger.ContextLogger
}

func NewDispatcher(launcher Launcher) *Dispatcher {
	return &Dispatcher{launcher: launcher, log: logger.Component("launcher")}
}

// Dispatch hands every url to the launcher concurrently and returns
// immediately.
func (d *Dispatcher) Dispatch(urls ...string) {
	for _, url := range urls {
		d.group.Go(func() error {
			if err := d.launcher.Open(url); err != nil {
				d.log.Warn("Failed to open link", "url", url, "error", err)
				return fmt.Errorf("open %s: %w", url, err)
			}
			d.log.Debug("Opened link", "url", url)
			return nil
		})
	}
}

// Wait returns the first launch error, if any.
func (d *Dispatcher) Wait() error {
	return d.group.Wait()
}
