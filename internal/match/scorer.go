// Package match scores free text against cached Jira issues using weighted
// token-sort fuzzy similarity.
package match

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/clintrovert/praxis/pkg/types"
)

// Field weights for the combined score. They intentionally sum above 1;
// the combined score is capped at 1.0.
const (
	summaryWeight     = 0.7
	descriptionWeight = 0.3
	labelsWeight      = 0.2
)

// Score rates one issue against the query text. It returns nil when the
// combined score falls below threshold. MatchedFields lists the fields whose
// individual ratio clears the same threshold, independent of their weighted
// contribution.
func Score(query string, issue *types.Issue, threshold float64) *types.MatchResult {
	summaryScore := tokenSortRatio(query, issue.Summary)

	descriptionScore := 0.0
	if issue.Description != "" {
		descriptionScore = tokenSortRatio(query, issue.Description)
	}

	labelsScore := 0.0
	if len(issue.Labels) > 0 {
		labelsScore = tokenSortRatio(query, strings.Join(issue.Labels, " "))
	}

	combined := summaryScore*summaryWeight + descriptionScore*descriptionWeight + labelsScore*labelsWeight
	if combined > 1.0 {
		combined = 1.0
	}

	if combined < threshold {
		return nil
	}

	matchedFields := []string{}
	if summaryScore >= threshold {
		matchedFields = append(matchedFields, "summary")
	}
	if descriptionScore >= threshold {
		matchedFields = append(matchedFields, "description")
	}
	if labelsScore >= threshold {
		matchedFields = append(matchedFields, "labels")
	}

	return &types.MatchResult{
		Score:         combined,
		Issue:         issue,
		MatchedFields: matchedFields,
	}
}

// FindSimilar scans issues linearly and returns the matches that clear
// threshold, sorted by score descending. Ties keep their input order. It never
// refreshes the cache; callers decide when the data is fresh enough.
func FindSimilar(issues []*types.Issue, query string, threshold float64) []*types.MatchResult {
	results := make([]*types.MatchResult, 0, len(issues))
	for _, issue := range issues {
		if result := Score(query, issue, threshold); result != nil {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

func tokenSortRatio(a, b string) float64 {
	return float64(fuzzy.TokenSortRatio(strings.ToLower(a), strings.ToLower(b))) / 100
}
