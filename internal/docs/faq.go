// Package docs checks the structural health of the FAQ document: the
// table of contents and the question sections must stay in sync, and no
// answer may be left unwritten.
package docs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Issue types reported by Check.
const (
	// IssueMissingHeading is a ToC entry pointing at no question heading.
	IssueMissingHeading = "missing_heading"
	// IssueUnreferencedHeading is a question heading absent from the ToC.
	IssueUnreferencedHeading = "unreferenced_heading"
	// IssueDuplicateReference is a question heading referenced more than
	// once from the ToC.
	IssueDuplicateReference = "duplicate_reference"
	// IssueEmptyAnswer is a question section with no body text.
	IssueEmptyAnswer = "empty_answer"
	// IssuePlaceholderAnswer is a question section whose body is only a
	// placeholder ("TBD").
	IssuePlaceholderAnswer = "placeholder_answer"
)

// Issue is a single FAQ defect.
type Issue struct {
	Type     string `json:"type"`
	Anchor   string `json:"anchor,omitempty"`
	Question string `json:"question,omitempty"`
	Line     int    `json:"line,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// questionPrefix marks a question heading. Coarser headings group
// questions and are not themselves ToC targets.
const questionPrefix = "### "

// tocLink matches in-document markdown links: [text](#anchor).
var tocLink = regexp.MustCompile(`\[[^\]]+\]\(#([^)]+)\)`)

// anchorStrip removes the characters GitHub drops when deriving anchors.
var anchorStrip = regexp.MustCompile(`[^\p{L}\p{N} -]`)

// AnchorFor derives the GitHub-style anchor for a heading title:
// lowercase, punctuation stripped, spaces to hyphens.
func AnchorFor(title string) string {
	a := strings.ToLower(strings.TrimSpace(title))
	a = anchorStrip.ReplaceAllString(a, "")
	return strings.ReplaceAll(a, " ", "-")
}

// heading is one question heading with its answer body.
type heading struct {
	title  string
	anchor string
	line   int
	body   []string
}

// CheckFile runs the checks against a FAQ file on disk.
func CheckFile(path string) ([]Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FAQ: %w", err)
	}
	defer f.Close()
	return Check(f)
}

// Check scans a FAQ document and reports structural issues. A healthy
// document yields an empty slice.
func Check(r io.Reader) ([]Issue, error) {
	refs := make(map[string]int)    // anchor -> reference count
	refLine := make(map[string]int) // anchor -> first ToC line
	var headings []heading
	var current *heading

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.HasPrefix(line, questionPrefix) {
			title := strings.TrimSpace(strings.TrimPrefix(line, questionPrefix))
			headings = append(headings, heading{title: title, anchor: AnchorFor(title), line: lineNum})
			current = &headings[len(headings)-1]
			continue
		}
		if strings.HasPrefix(line, "#") {
			// A coarser heading ends the current answer section.
			current = nil
			continue
		}

		if current != nil {
			current.body = append(current.body, line)
			continue
		}

		// Outside question sections every in-document link is a ToC entry.
		for _, m := range tocLink.FindAllStringSubmatch(line, -1) {
			anchor := m[1]
			refs[anchor]++
			if _, ok := refLine[anchor]; !ok {
				refLine[anchor] = lineNum
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading FAQ: %w", err)
	}

	var issues []Issue

	known := make(map[string]bool, len(headings))
	for _, h := range headings {
		known[h.anchor] = true
	}
	for anchor, count := range refs {
		if !known[anchor] {
			issues = append(issues, Issue{Type: IssueMissingHeading, Anchor: anchor, Line: refLine[anchor]})
			continue
		}
		if count > 1 {
			issues = append(issues, Issue{Type: IssueDuplicateReference, Anchor: anchor, Line: refLine[anchor], Count: count})
		}
	}

	for _, h := range headings {
		if refs[h.anchor] == 0 {
			issues = append(issues, Issue{Type: IssueUnreferencedHeading, Anchor: h.anchor, Question: h.title, Line: h.line})
		}
		switch classifyAnswer(h.body) {
		case IssueEmptyAnswer:
			issues = append(issues, Issue{Type: IssueEmptyAnswer, Anchor: h.anchor, Question: h.title, Line: h.line})
		case IssuePlaceholderAnswer:
			issues = append(issues, Issue{Type: IssuePlaceholderAnswer, Anchor: h.anchor, Question: h.title, Line: h.line})
		}
	}

	sortIssues(issues)
	return issues, nil
}

// classifyAnswer returns the issue type for a deficient answer body, or
// "" for a healthy one.
func classifyAnswer(body []string) string {
	var text []string
	for _, line := range body {
		if s := strings.TrimSpace(line); s != "" {
			text = append(text, s)
		}
	}
	if len(text) == 0 {
		return IssueEmptyAnswer
	}
	if len(text) == 1 && strings.EqualFold(strings.TrimSuffix(text[0], "."), "tbd") {
		return IssuePlaceholderAnswer
	}
	return ""
}

func sortIssues(issues []Issue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Type < issues[j].Type
	})
}
