package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportMarkdownOrder(t *testing.T) {
	r := New("git")
	r.SetHeader("### ✘ git")
	r.SetIntro("_failed to auto install git_")
	r.AddInfo("run the following script to install git")
	r.AddInfo(Fence("sh", "brew install git"))
	r.AddError("exit status 1\n")

	want := "### ✘ git\n\n" +
		"_failed to auto install git_\n\n" +
		"run the following script to install git\n\n" +
		"```sh\nbrew install git\n```\n\n" +
		"#### Errors\n\n" +
		"```\nexit status 1\n```"
	assert.Equal(t, want, r.Markdown())
}

func TestReportEmpty(t *testing.T) {
	assert.Empty(t, New("git").Markdown())
}

func TestReportAccessorsCopy(t *testing.T) {
	r := New("git")
	r.AddInfo("one")

	infos := r.Infos()
	infos[0] = "changed"

	assert.Equal(t, []string{"one"}, r.Infos())
	assert.Empty(t, r.Errors())
}

func TestDocumentSortsSystemsAndReports(t *testing.T) {
	d := NewDocument("demo")

	zsh := New("zsh")
	zsh.SetHeader("### ➜ zsh")
	git := New("git")
	git.SetHeader("### ✔ git")
	jq := New("jq")
	jq.SetHeader("### ✔ jq")

	d.Add("shell", zsh)
	d.Add("base", jq)
	d.Add("base", git)

	want := "# demo\n\n## base\n\n### ✔ git\n\n### ✔ jq\n\n## shell\n\n### ➜ zsh\n"
	assert.Equal(t, want, d.Markdown())
}

func TestDocumentEmpty(t *testing.T) {
	assert.Empty(t, NewDocument("").Markdown())
}
