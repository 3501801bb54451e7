package report

import (
	"sort"
	"strings"
)

// Section groups the reports of one system.
type Section struct {
	System  string
	Reports []*Report
}

// Document is the Markdown report for a whole run.
type Document struct {
	Title    string
	sections map[string]*Section
}

func NewDocument(title string) *Document {
	return &Document{Title: title, sections: make(map[string]*Section)}
}

// Add files r under system.
func (d *Document) Add(system string, r *Report) {
	section, ok := d.sections[system]
	if !ok {
		section = &Section{System: system}
		d.sections[system] = section
	}
	section.Reports = append(section.Reports, r)
}

// Sections returns the systems in sorted order, each with its reports
// sorted by dependency name.
func (d *Document) Sections() []Section {
	names := make([]string, 0, len(d.sections))
	for name := range d.sections {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Section, 0, len(names))
	for _, name := range names {
		section := *d.sections[name]
		section.Reports = append([]*Report(nil), section.Reports...)
		sort.SliceStable(section.Reports, func(i, j int) bool {
			return section.Reports[i].Name() < section.Reports[j].Name()
		})
		out = append(out, section)
	}
	return out
}

func (d *Document) Markdown() string {
	var blocks []string
	if d.Title != "" {
		blocks = append(blocks, "# "+d.Title)
	}
	for _, section := range d.Sections() {
		blocks = append(blocks, "## "+section.System)
		for _, r := range section.Reports {
			if md := r.Markdown(); md != "" {
				blocks = append(blocks, md)
			}
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
