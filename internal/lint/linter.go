package lint

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
	"tips-content-service/internal/utils"
)

// Severity classifies a finding. Errors break the published site, warnings degrade it.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names. Findings carry their snake_case form as rule id.
const (
	RuleEmptyPermalink           = "EmptyPermalink"
	RuleDuplicatePermalink       = "DuplicatePermalink"
	RuleMissingTitle             = "MissingTitle"
	RuleUnbalancedCodeFence      = "UnbalancedCodeFence"
	RuleUnknownLayout            = "UnknownLayout"
	RuleUnknownType              = "UnknownType"
	RuleUnknownSidenav           = "UnknownSidenav"
	RuleMissingOrder             = "MissingOrder"
	RuleDanglingExcerptSeparator = "DanglingExcerptSeparator"
	RuleBrokenInternalLink       = "BrokenInternalLink"
)

// Document is one corpus entry the way the rules see it.
type Document struct {
	Meta models.DocumentMeta
	Body string
}

type Finding struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Permalink  string   `json:"permalink"`
	SourcePath string   `json:"sourcePath"`
	Message    string   `json:"message"`
}

type Report struct {
	CheckedDocuments int       `json:"checkedDocuments"`
	ErrorCount       int       `json:"errorCount"`
	WarningCount     int       `json:"warningCount"`
	Findings         []Finding `json:"findings"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// Linter runs consistency rules over a document corpus.
type Linter struct {
	*environment.Env

	// Sidenavs is the allow-list of known side navigation partials.
	// The sidenav rule is skipped when the list is empty.
	Sidenavs []string
}

func newFinding(rule string, severity Severity, meta models.DocumentMeta, format string, args ...any) Finding {
	return Finding{
		Rule:       utils.ToSnakeCase(rule),
		Severity:   severity,
		Permalink:  meta.Permalink,
		SourcePath: meta.SourcePath,
		Message:    fmt.Sprintf(format, args...),
	}
}

// LintDocuments runs every rule over the given documents and aggregates the findings.
//
// Corpus-wide rules (permalink presence and uniqueness) run first, then the
// per-document rules in a fixed order, so reports are stable across runs.
func (l *Linter) LintDocuments(documents []Document) Report {
	findings := make([]Finding, 0)

	findings = append(findings, l.checkPermalinks(documents)...)

	knownPermalinks := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		if len(d.Meta.Permalink) == 0 {
			continue
		}
		knownPermalinks[normalizePermalink(d.Meta.Permalink)] = struct{}{}
	}

	for _, d := range documents {
		findings = append(findings, l.checkDocument(d, knownPermalinks)...)
	}

	report := Report{
		CheckedDocuments: len(documents),
		Findings:         findings,
		GeneratedAt:      time.Now(),
	}

	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			report.ErrorCount++
		case SeverityWarning:
			report.WarningCount++
		}
	}

	l.LogDebugf(logging.GetLogTypeLint(), "checked %d documents: %d errors, %d warnings", report.CheckedDocuments, report.ErrorCount, report.WarningCount)

	return report
}

func (l *Linter) checkPermalinks(documents []Document) []Finding {
	findings := make([]Finding, 0)

	firstSource := make(map[string]string, len(documents))
	for _, d := range documents {
		if len(strings.TrimSpace(d.Meta.Permalink)) == 0 {
			findings = append(findings, newFinding(RuleEmptyPermalink, SeverityError, d.Meta, "document has no permalink"))
			continue
		}

		if first, ok := firstSource[d.Meta.Permalink]; ok {
			findings = append(findings, newFinding(RuleDuplicatePermalink, SeverityError, d.Meta, "permalink %s is already used by %s", d.Meta.Permalink, first))
			continue
		}

		firstSource[d.Meta.Permalink] = d.Meta.SourcePath
	}

	return findings
}

func (l *Linter) checkDocument(d Document, knownPermalinks map[string]struct{}) []Finding {
	findings := make([]Finding, 0)

	if d.Meta.Published && len(strings.TrimSpace(d.Meta.Title)) == 0 {
		findings = append(findings, newFinding(RuleMissingTitle, SeverityError, d.Meta, "published document has no title"))
	}

	if !balancedCodeFences(d.Body) {
		findings = append(findings, newFinding(RuleUnbalancedCodeFence, SeverityError, d.Meta, "document has an unclosed code fence"))
	}

	switch d.Meta.Layout {
	case models.LayoutTips, models.LayoutBlog:
	default:
		findings = append(findings, newFinding(RuleUnknownLayout, SeverityError, d.Meta, "unknown layout %q", d.Meta.Layout))
	}

	if d.Meta.Type != models.TypeMarkdown {
		findings = append(findings, newFinding(RuleUnknownType, SeverityWarning, d.Meta, "unknown document type %q", d.Meta.Type))
	}

	if len(l.Sidenavs) > 0 && len(d.Meta.Sidenav) > 0 && !slices.Contains(l.Sidenavs, d.Meta.Sidenav) {
		findings = append(findings, newFinding(RuleUnknownSidenav, SeverityWarning, d.Meta, "sidenav %q is not a known side navigation", d.Meta.Sidenav))
	}

	if d.Meta.Published && d.Meta.Layout == models.LayoutTips && len(d.Meta.Order) == 0 {
		findings = append(findings, newFinding(RuleMissingOrder, SeverityWarning, d.Meta, "published tips document has no order sort key"))
	}

	if len(d.Meta.ExcerptSeparator) > 0 && !strings.Contains(d.Body, d.Meta.ExcerptSeparator) {
		findings = append(findings, newFinding(RuleDanglingExcerptSeparator, SeverityWarning, d.Meta, "excerpt separator %q never occurs in the body", d.Meta.ExcerptSeparator))
	}

	findings = append(findings, l.checkInternalLinks(d, knownPermalinks)...)

	return findings
}

// checkInternalLinks reports site-absolute link targets that resolve to no known permalink.
//
// Only proper Markdown links count. Fenced code blocks, inline code and plain
// text that merely looks like a link never produce findings because the
// targets are taken from the parsed AST, not from a text scan.
func (l *Linter) checkInternalLinks(d Document, knownPermalinks map[string]struct{}) []Finding {
	findings := make([]Finding, 0)

	for _, target := range extractLinkTargets(d.Body) {
		if !strings.HasPrefix(target, "/") {
			continue
		}

		normalized := normalizePermalink(target)

		// the site root always resolves
		if normalized == "/" {
			continue
		}

		if _, ok := knownPermalinks[normalized]; ok {
			continue
		}

		findings = append(findings, newFinding(RuleBrokenInternalLink, SeverityWarning, d.Meta, "link target %s matches no known permalink", target))
	}

	return findings
}

// extractLinkTargets parses body as GFM Markdown and collects the destinations of all links.
func extractLinkTargets(body string) []string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	source := []byte(body)
	root := md.Parser().Parse(text.NewReader(source))

	var targets []string
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if link, ok := node.(*ast.Link); ok {
			targets = append(targets, string(link.Destination))
		}

		return ast.WalkContinue, nil
	})

	return targets
}

// normalizePermalink strips fragment and query parts and the trailing slash
// so link targets and stored permalinks compare equal.
func normalizePermalink(link string) string {
	if cut := strings.IndexAny(link, "#?"); cut >= 0 {
		link = link[:cut]
	}

	if len(link) > 1 {
		link = strings.TrimSuffix(link, "/")
	}

	return link
}

// balancedCodeFences reports whether every opened backtick or tilde code fence is closed again.
//
// The scan follows the CommonMark rules that matter for whole-document
// balance: a fence opens with a run of three or more backticks or tildes
// indented at most three spaces, and closes at the next line carrying at
// least as long a run of the same character and nothing else. Everything
// between open and close is fence content, including lines that look like
// fences of the other kind.
func balancedCodeFences(body string) bool {
	var (
		inFence   bool
		fenceChar byte
		fenceLen  int
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(line, " ")

		indent := len(line) - len(trimmed)
		if indent > 3 {
			continue
		}

		if len(trimmed) < 3 {
			continue
		}

		c := trimmed[0]
		if c != '`' && c != '~' {
			continue
		}

		run := 0
		for run < len(trimmed) && trimmed[run] == c {
			run++
		}
		if run < 3 {
			continue
		}

		if !inFence {
			inFence = true
			fenceChar = c
			fenceLen = run
			continue
		}

		// a closing fence carries no info string and matches the opening kind
		if c == fenceChar && run >= fenceLen && len(strings.TrimSpace(trimmed[run:])) == 0 {
			inFence = false
		}
	}

	return !inFence
}
