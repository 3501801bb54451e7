package install

import (
	"fmt"
	"strings"

	"github.com/kashifsb/envsetup/internal/config"
	"github.com/kashifsb/envsetup/internal/report"
)

// Reason explains why a dependency is or is not auto installed.
type Reason string

const (
	ReasonEligible  Reason = "eligible"
	ReasonNoCommand Reason = "no install command"
	ReasonDisabled  Reason = "autoinstall disabled"
	ReasonSudo      Reason = "requires sudo"
)

// Plan is the decision taken for one dependency before anything runs.
type Plan struct {
	Run    bool
	Reason Reason
	Script string
}

// Decide computes whether dep is auto installed. Auto install is effective
// only when an install command exists and both the dependency and the
// global config allow it; a sudo dependency is never run.
func Decide(dep config.ResolvedDependency, globalAutoinstall bool) Plan {
	plan := Plan{Script: ManualScript(dep)}

	switch {
	case !dep.HasInstall():
		plan.Reason = ReasonNoCommand
	case !dep.AutoinstallEnabled() || !globalAutoinstall:
		plan.Reason = ReasonDisabled
	case dep.Sudo:
		plan.Reason = ReasonSudo
	default:
		plan.Run = true
		plan.Reason = ReasonEligible
	}
	return plan
}

// ManualScript renders the install command as a fenced sh block, or ""
// when there is no command.
func ManualScript(dep config.ResolvedDependency) string {
	if !dep.HasInstall() {
		return ""
	}
	script := strings.TrimSpace(dep.Install)
	if dep.Sudo {
		script = "sudo su\n" + script
	}
	return report.Fence("sh", script)
}

func header(status Status, name string) string {
	return fmt.Sprintf("### %s %s", status.Marker(), name)
}

func installedIntro(name string) string {
	return fmt.Sprintf("_successfully auto installed %s_ \\\n_**you do not need to do anything for %s**_\n\n#### Report", name, name)
}

func failedIntro(name string) string {
	return fmt.Sprintf("_%s_ \\\n_**please install %s manually**_\n\n#### Instructions", failedMessage(name), name)
}

func skippedIntro(name string, sudo bool) string {
	return fmt.Sprintf("_%s_ \\\n_**please install %s manually**_\n\n#### Instructions", skippedMessage(name, sudo), name)
}

func failedMessage(name string) string {
	return "failed to auto install " + name
}

func skippedMessage(name string, sudo bool) string {
	if sudo {
		return name + " was not auto installed because it requires sudo privileges"
	}
	return name + " was not auto installed"
}

func resourcesBlock(dep config.ResolvedDependency) string {
	additional := ""
	if dep.HasInstall() {
		additional = "additional "
	}
	links := "link"
	if len(dep.Resources) > 1 {
		links = "links"
	}
	return fmt.Sprintf("#### Resources\n\nyou can find %sinstallation instructions for %s at the %s below\n\n%s",
		additional, dep.Name, links, strings.Join(dep.Resources, "\n\n"))
}
