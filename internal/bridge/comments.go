package bridge

import (
	"fmt"
	"strings"

	"github.com/clintrovert/praxis/pkg/types"
)

// FormatFoundSimilarComment builds the PR comment posted when an existing
// issue likely covers the request.
func FormatFoundSimilarComment(result *types.MatchResult, browseURL string) string {
	var sb strings.Builder

	sb.WriteString("🔍 **Found similar existing Jira issue:**\n\n")
	sb.WriteString(fmt.Sprintf("[%s](%s) - %s\n\n", result.Issue.Key, browseURL, result.Issue.Summary))
	sb.WriteString(fmt.Sprintf("**Similarity score:** %.1f%%\n", result.Score*100))
	sb.WriteString(fmt.Sprintf("**Matched fields:** %s\n\n", strings.Join(result.MatchedFields, ", ")))
	sb.WriteString("Please check if this existing issue covers your request before creating a new one.")

	return sb.String()
}

// FormatCreatedComment builds the PR comment posted after creating an issue.
func FormatCreatedComment(issue *types.Issue, browseURL string) string {
	typeName := "Unknown"
	if issue.Type != nil {
		typeName = issue.Type.Name
	}

	labels := "None"
	if len(issue.Labels) > 0 {
		labels = strings.Join(issue.Labels, ", ")
	}

	var sb strings.Builder

	sb.WriteString("✅ **Created Jira issue:**\n\n")
	sb.WriteString(fmt.Sprintf("[%s](%s) - %s\n\n", issue.Key, browseURL, issue.Summary))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", typeName))
	sb.WriteString(fmt.Sprintf("**Labels:** %s", labels))

	return sb.String()
}

// FormatErrorComment builds the best-effort PR comment posted when processing
// fails after the webhook response has already returned.
func FormatErrorComment(err error) string {
	var sb strings.Builder

	sb.WriteString("❌ **Error creating Jira issue:**\n\n")
	sb.WriteString(err.Error())
	sb.WriteString("\n\nPlease check the server logs or try again later.")

	return sb.String()
}
