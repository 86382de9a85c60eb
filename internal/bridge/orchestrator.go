// Package bridge decides, for each triggering PR comment, whether to create a
// new Jira issue or point at a likely duplicate already in the project.
package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/praxis/internal/jira"
	"github.com/clintrovert/praxis/internal/match"
	"github.com/clintrovert/praxis/internal/trigger"
	"github.com/clintrovert/praxis/pkg/types"
)

// DefaultThreshold is the similarity cutoff used when none is configured.
const DefaultThreshold = 0.7

// Orchestrator ties classification, cache freshness, similarity scoring and
// the create-or-report decision together.
type Orchestrator struct {
	issues     IssueService
	pulls      PullRequestService
	cache      *jira.Cache
	projectKey string
	threshold  float64
	logger     *zap.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	issues IssueService,
	pulls PullRequestService,
	cache *jira.Cache,
	projectKey string,
	threshold float64,
	logger *zap.Logger,
) *Orchestrator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Orchestrator{
		issues:     issues,
		pulls:      pulls,
		cache:      cache,
		projectKey: projectKey,
		threshold:  threshold,
		logger:     logger,
	}
}

// Threshold returns the configured similarity cutoff
func (o *Orchestrator) Threshold() float64 {
	return o.threshold
}

// Cache returns the issue cache the orchestrator keeps fresh
func (o *Orchestrator) Cache() *jira.Cache {
	return o.cache
}

// ProcessComment runs the full decision procedure for one PR comment. Errors
// from external collaborators propagate to the caller; the webhook path wraps
// this with ReportError, the manual path surfaces them directly.
func (o *Orchestrator) ProcessComment(ctx context.Context, prNumber int, comment string) (*types.ProcessingResult, error) {
	if !trigger.IsCreationRequest(comment) {
		o.logger.Info("comment does not request jira creation", zap.Int("pr_number", prNumber))
		return &types.ProcessingResult{
			Action: types.ActionSkipped,
			Reason: "No Jira creation request found",
		}, nil
	}

	pr, err := o.pulls.GetPullRequest(ctx, prNumber)
	if err != nil {
		return nil, err
	}

	details := trigger.ExtractDetails(comment, pr.Title, pr.Body, pr.Number, o.pulls.PullRequestURL(pr.Number))

	if o.cache.NeedsSync() {
		o.logger.Info("issue cache stale, syncing")
		if err := o.cache.Sync(ctx); err != nil {
			return nil, err
		}
	}

	searchText := details.Summary + " " + details.Description
	matches := match.FindSimilar(o.cache.AllItems(), searchText, o.threshold)

	if len(matches) > 0 {
		best := matches[0]
		o.logger.Info("found similar issue",
			zap.String("key", best.Issue.Key),
			zap.Float64("score", best.Score),
		)

		body := FormatFoundSimilarComment(best, o.issues.BrowseURL(best.Issue.Key))
		if _, err := o.pulls.AddComment(ctx, prNumber, body); err != nil {
			return nil, err
		}

		return &types.ProcessingResult{
			Action:     types.ActionFoundSimilar,
			Issue:      best.Issue,
			Similarity: best.Score,
		}, nil
	}

	req := &types.CreateIssueRequest{
		Summary:     details.Summary,
		Description: details.Description,
		IssueType:   details.IssueType,
		ProjectKey:  o.projectKey,
		Labels:      details.Labels,
	}

	issue, err := o.issues.CreateIssue(ctx, req)
	if err != nil {
		return nil, err
	}

	o.cache.InsertCreated(issue)

	body := FormatCreatedComment(issue, o.issues.BrowseURL(issue.Key))
	if _, err := o.pulls.AddComment(ctx, prNumber, body); err != nil {
		return nil, err
	}

	o.logger.Info("created jira issue from comment",
		zap.Int("pr_number", prNumber),
		zap.String("key", issue.Key),
	)

	return &types.ProcessingResult{
		Action: types.ActionCreated,
		Issue:  issue,
	}, nil
}

// ReportError posts a best-effort error comment on the PR. A failure to post
// is logged and swallowed; the original error still belongs to the caller.
func (o *Orchestrator) ReportError(ctx context.Context, prNumber int, procErr error) {
	if _, err := o.pulls.AddComment(ctx, prNumber, FormatErrorComment(procErr)); err != nil {
		o.logger.Error("failed to add error comment",
			zap.Int("pr_number", prNumber),
			zap.Error(err),
			zap.NamedError("original_error", procErr),
		)
	}
}

// SyncNow forces a cache refresh regardless of staleness
func (o *Orchestrator) SyncNow(ctx context.Context) error {
	if err := o.cache.Sync(ctx); err != nil {
		return fmt.Errorf("forced sync: %w", err)
	}
	return nil
}
