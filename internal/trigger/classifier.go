// Package trigger classifies PR comments that request Jira issue creation
// and extracts structured creation details from free-form comment text.
package trigger

import (
	"fmt"
	"regexp"
	"strings"
)

// creationPatterns are the phrases that mark a comment as a creation request.
var creationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)create\s+jira`),
	regexp.MustCompile(`(?i)make\s+jira`),
	regexp.MustCompile(`(?i)new\s+jira`),
	regexp.MustCompile(`(?i)jira\s+issue`),
	regexp.MustCompile(`(?i)create\s+issue`),
	regexp.MustCompile(`(?i)create\s+ticket`),
}

var (
	summaryPattern = regexp.MustCompile(`(?i)summary[:\s]+([^\n\r]+)`)
	typePattern    = regexp.MustCompile(`(?i)type[:\s]+(bug|task|story|epic)`)
	labelsPattern  = regexp.MustCompile(`(?i)labels?[:\s]+([^\n\r]+)`)
)

// baseLabel is attached to every issue created from a pull request.
const baseLabel = "github-pr"

// Details holds the Jira creation fields extracted from a comment.
type Details struct {
	Summary     string
	Description string
	IssueType   string
	Labels      []string
}

// IsCreationRequest reports whether a comment asks for a Jira issue to be
// created. It is a case-insensitive OR over a fixed set of phrases, nothing
// smarter.
func IsCreationRequest(text string) bool {
	for _, pattern := range creationPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractDetails derives Jira creation details from a comment and the pull
// request it was posted on. Absent structured fields fall back to defaults
// taken from the PR itself; this function never fails.
func ExtractDetails(comment, prTitle, prBody string, prNumber int, prURL string) Details {
	summary := "[GitHub PR] " + prTitle
	if m := summaryPattern.FindStringSubmatch(comment); m != nil {
		summary = strings.TrimSpace(m[1])
	}

	issueType := "Task"
	if m := typePattern.FindStringSubmatch(comment); m != nil {
		issueType = titleCase(m[1])
	}

	labels := []string{baseLabel}
	if m := labelsPattern.FindStringSubmatch(comment); m != nil {
		for _, label := range strings.Split(m[1], ",") {
			labels = append(labels, strings.TrimSpace(label))
		}
	}

	parts := []string{"Created from GitHub Pull Request\n"}
	if prNumber > 0 {
		parts = append(parts, fmt.Sprintf("**Original PR:** [#%d %s](%s)\n", prNumber, prTitle, prURL))
	}
	if prBody != "" {
		parts = append(parts, fmt.Sprintf("**PR Description:**\n%s\n", prBody))
	}
	parts = append(parts, fmt.Sprintf("**Comment that triggered creation:**\n%s", comment))

	return Details{
		Summary:     summary,
		Description: strings.Join(parts, "\n"),
		IssueType:   issueType,
		Labels:      labels,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
