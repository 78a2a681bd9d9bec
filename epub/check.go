package epub

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IssueSeverity distinguishes hard failures from advisory findings.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ItemIssue is one problem found in a document item.
type ItemIssue struct {
	Name     string
	Severity IssueSeverity
	Problem  string
}

// Report is the result of checking a translated book against its original.
type Report struct {
	OriginalItems   int
	TranslatedItems int

	OriginalNav   []string
	TranslatedNav []string

	DuplicateNames []string
	ItemIssues     []ItemIssue
}

// ItemCountMatch reports whether the two books carry the same number of resources.
func (r *Report) ItemCountMatch() bool {
	return r.OriginalItems == r.TranslatedItems
}

// NavMatch reports whether the navigation file sets are identical.
func (r *Report) NavMatch() bool {
	if len(r.OriginalNav) != len(r.TranslatedNav) {
		return false
	}
	for i := range r.OriginalNav {
		if r.OriginalNav[i] != r.TranslatedNav[i] {
			return false
		}
	}
	return true
}

// Errors returns the hard failures among the item issues.
func (r *Report) Errors() []ItemIssue {
	var errs []ItemIssue
	for _, issue := range r.ItemIssues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// OK reports whether the translated book is structurally sound: matching
// item counts and navigation files, no duplicate entries, no item errors.
func (r *Report) OK() bool {
	return r.ItemCountMatch() && r.NavMatch() && len(r.DuplicateNames) == 0 && len(r.Errors()) == 0
}

// Print writes a human-readable version of the report.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "items: original %d, translated %d\n", r.OriginalItems, r.TranslatedItems)
	if !r.NavMatch() {
		fmt.Fprintf(w, "navigation files differ: %v vs %v\n", r.OriginalNav, r.TranslatedNav)
	}
	for _, name := range r.DuplicateNames {
		fmt.Fprintf(w, "duplicate entry: %s\n", name)
	}
	for _, issue := range r.ItemIssues {
		fmt.Fprintf(w, "[%s] %s: %s\n", issue.Severity, issue.Name, issue.Problem)
	}
	if r.OK() {
		fmt.Fprintln(w, "book is structurally valid")
	} else {
		fmt.Fprintln(w, "book has structural problems")
	}
}

// Check validates a translated book against its original: item counts must
// match, navigation files must be unchanged, entries must be unique, and
// every document item must still parse as a complete HTML document.
func Check(original, translated *Book) *Report {
	report := &Report{
		OriginalItems:   len(original.Resources),
		TranslatedItems: len(translated.Resources),
		OriginalNav:     sortedNav(original),
		TranslatedNav:   sortedNav(translated),
	}

	seen := make(map[string]bool)
	for _, res := range translated.Resources {
		if seen[res.Name] {
			report.DuplicateNames = append(report.DuplicateNames, res.Name)
		}
		seen[res.Name] = true
	}

	for _, name := range translated.DocumentNames() {
		res := translated.Resource(name)
		if res == nil {
			report.ItemIssues = append(report.ItemIssues, ItemIssue{
				Name: name, Severity: SeverityError, Problem: "listed in manifest but missing from archive",
			})
			continue
		}
		report.ItemIssues = append(report.ItemIssues, checkDocument(name, res.Data)...)
	}

	return report
}

// checkDocument validates one document item's content. Element presence is
// checked on the raw bytes because the HTML parser synthesizes html and body
// elements whether or not the source markup carried them.
func checkDocument(name string, data []byte) []ItemIssue {
	if len(bytes.TrimSpace(data)) == 0 {
		return []ItemIssue{{Name: name, Severity: SeverityError, Problem: "empty content"}}
	}

	var issues []ItemIssue
	lower := bytes.ToLower(data)
	if !bytes.Contains(lower, []byte("<html")) {
		issues = append(issues, ItemIssue{Name: name, Severity: SeverityError, Problem: "missing <html> element"})
	} else if !bytes.Contains(lower, []byte("<body")) {
		issues = append(issues, ItemIssue{Name: name, Severity: SeverityWarning, Problem: "missing <body> element"})
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		issues = append(issues, ItemIssue{Name: name, Severity: SeverityError, Problem: fmt.Sprintf("failed to parse: %v", err)})
		return issues
	}
	if strings.TrimSpace(doc.Find("body").Text()) == "" {
		issues = append(issues, ItemIssue{Name: name, Severity: SeverityWarning, Problem: "no visible text"})
	}
	return issues
}

func sortedNav(book *Book) []string {
	nav := append([]string(nil), book.NavNames()...)
	sort.Strings(nav)
	return nav
}
