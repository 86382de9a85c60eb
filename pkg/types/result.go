package types

// Processing actions returned by the bridge.
const (
	ActionCreated      = "created"
	ActionFoundSimilar = "found_similar"
	ActionSkipped      = "skipped"
)

// MatchResult is the outcome of scoring one cached issue against a query.
type MatchResult struct {
	Score         float64  `json:"score"`
	Issue         *Issue   `json:"issue"`
	MatchedFields []string `json:"matched_fields"`
}

// ProcessingResult describes what the bridge did with a PR comment.
type ProcessingResult struct {
	Action     string  `json:"action"`
	Issue      *Issue  `json:"issue,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}
