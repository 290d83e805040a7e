// Package runner drives a checking run: it discovers instance plans,
// resolves each one's template, and aggregates every violation per
// document without stopping at the first failure.
package runner

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/plancheck/internal/conformance"
	"github.com/dgallion1/plancheck/internal/config"
	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/dgallion1/plancheck/internal/lint"
	"github.com/dgallion1/plancheck/internal/outline"
	"github.com/dgallion1/plancheck/internal/parser"
)

// Report is the aggregated result for one instance document.
type Report struct {
	File       string                  `json:"file"`
	Violations []conformance.Violation `json:"violations,omitempty"`
	Issues     []lint.Issue            `json:"issues,omitempty"`
	Err        string                  `json:"error,omitempty"` // Parse or read failure; checks were aborted.
}

// Failed reports whether the document failed the check.
func (r Report) Failed() bool {
	return r.Err != "" || len(r.Violations) > 0 || len(r.Issues) > 0
}

// Message renders the aggregated failure report, one finding per line.
func (r Report) Message() string {
	if !r.Failed() {
		return fmt.Sprintf("%s: ok", r.File)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "While checking %q:", r.File)
	if r.Err != "" {
		b.WriteString("\n  ")
		b.WriteString(r.Err)
	}
	for _, v := range r.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.Message())
	}
	for _, i := range r.Issues {
		b.WriteString("\n  ")
		b.WriteString(i.Message())
	}
	return b.String()
}

// Check runs the structural and field comparisons of one parsed plan
// against one parsed template.
func Check(tmpl, plan *doctree.Document, opt conformance.Optionality) []conformance.Violation {
	violations := conformance.Compare(outline.Extract(tmpl), outline.Extract(plan), opt)
	violations = append(violations,
		conformance.CompareFields(outline.Fields(tmpl), outline.Fields(plan), opt)...)
	return violations
}

// Runner checks every discovered plan document against its template.
type Runner struct {
	cfg config.Config
	opt conformance.Optionality
	log *slog.Logger
}

func New(cfg config.Config, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, opt: cfg.Optionality(), log: log}
}

// Run discovers and checks all plan documents, strictly one at a time
// in discovery order. The global template is parsed once and reused by
// every plan without a co-located override. Per-document failures land
// in the reports; only a broken global template or glob aborts the run.
func (r *Runner) Run() ([]Report, error) {
	global, err := ParseFile(r.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("global template %s: %w", r.cfg.TemplatePath, err)
	}

	files, err := filepath.Glob(r.cfg.PlanGlob)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", r.cfg.PlanGlob, err)
	}

	return r.checkAll(files, global), nil
}

// RunFiles checks an explicit list of plan documents instead of the
// configured glob. Template resolution works the same way.
func (r *Runner) RunFiles(files []string) ([]Report, error) {
	global, err := ParseFile(r.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("global template %s: %w", r.cfg.TemplatePath, err)
	}
	return r.checkAll(files, global), nil
}

func (r *Runner) checkAll(files []string, global *doctree.Document) []Report {
	reports := make([]Report, 0, len(files))
	for _, file := range files {
		rep := r.checkPlan(file, global)
		r.log.Info("checked plan",
			"file", file,
			"violations", len(rep.Violations),
			"issues", len(rep.Issues),
			"failed", rep.Failed(),
		)
		reports = append(reports, rep)
	}
	return reports
}

func (r *Runner) checkPlan(file string, global *doctree.Document) Report {
	rep := Report{File: file}

	raw, err := os.ReadFile(file)
	if err != nil {
		rep.Err = fmt.Sprintf("read: %s", err)
		return rep
	}

	tmpl := global
	if local := localTemplate(filepath.Dir(file)); local != "" {
		localDoc, err := ParseFile(local)
		if err != nil {
			rep.Err = fmt.Sprintf("local template %s: %s", local, err)
			return rep
		}
		r.log.Debug("using local template", "file", file, "template", local)
		tmpl = localDoc
	}

	p, err := parser.ForFile(file)
	if err != nil {
		rep.Err = err.Error()
		return rep
	}
	plan, err := p.Parse(bytes.NewReader(raw), file)
	if err != nil {
		rep.Err = fmt.Sprintf("parse: %s", err)
		return rep
	}

	rep.Violations = Check(tmpl, plan, r.opt)
	if parser.IsTextFormat(file) {
		rep.Issues = lint.Check(file, string(raw), r.cfg.LineLimit)
	}
	return rep
}

// templateBasenames are the co-located override names checked in order.
var templateBasenames = []string{
	"template.rst", "template.txt", "template.md", "template.markdown",
	"template.html", "template.htm", "template.docx", "template.pdf",
}

// localTemplate returns the path of a template co-located with a plan,
// or "" when the directory has none.
func localTemplate(dir string) string {
	for _, name := range templateBasenames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// ParseFile reads and parses one document from disk.
func ParseFile(path string) (*doctree.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, path)
}
