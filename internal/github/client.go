package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/praxis/pkg/types"
)

// ErrPullRequestNotFound is returned when the requested PR does not exist in
// the configured repository.
var ErrPullRequestNotFound = errors.New("pull request not found")

// Client wraps GitHub API operations for a single repository
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
	owner     string
	repo      string
}

// NewClient creates a new GitHub client bound to one owner/repo
func NewClient(accessToken, owner, repo string, logger *zap.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		apiClient: github.NewClient(tc),
		logger:    logger,
		owner:     owner,
		repo:      repo,
	}
}

// GetPullRequest retrieves a pull request by number. A missing PR is reported
// as ErrPullRequestNotFound so callers can format a message without parsing
// error text.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*types.PullRequest, error) {
	pr, resp, err := c.apiClient.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("pull request #%d: %w", number, ErrPullRequestNotFound)
		}
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}

	return transformPullRequest(pr), nil
}

// ListPullRequests retrieves pull requests filtered by state (open, closed, all)
func (c *Client) ListPullRequests(ctx context.Context, state string) ([]*types.PullRequest, error) {
	prs, _, err := c.apiClient.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State: state,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	results := make([]*types.PullRequest, 0, len(prs))
	for _, pr := range prs {
		results = append(results, transformPullRequest(pr))
	}

	return results, nil
}

// ListComments retrieves the conversation comments on a pull request
func (c *Client) ListComments(ctx context.Context, number int) ([]*types.Comment, error) {
	comments, _, err := c.apiClient.Issues.ListComments(ctx, c.owner, c.repo, number, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for #%d: %w", number, err)
	}

	results := make([]*types.Comment, 0, len(comments))
	for _, comment := range comments {
		results = append(results, transformComment(comment, number))
	}

	return results, nil
}

// AddComment posts a comment on the pull request conversation
func (c *Client) AddComment(ctx context.Context, number int, body string) (*types.Comment, error) {
	comment, _, err := c.apiClient.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment to #%d: %w", number, err)
	}

	c.logger.Info("added pull request comment",
		zap.Int("pr_number", number),
		zap.Int64("comment_id", comment.GetID()),
	)

	return transformComment(comment, number), nil
}

// PullRequestURL returns the web link for a pull request number
func (c *Client) PullRequestURL(number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.owner, c.repo, number)
}

// transformPullRequest converts a GitHub API pull request to the local type
func transformPullRequest(pr *github.PullRequest) *types.PullRequest {
	result := &types.PullRequest{
		ID:        pr.GetID(),
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     pr.GetState(),
		CreatedAt: pr.GetCreatedAt().Time,
		HTMLURL:   pr.GetHTMLURL(),
	}

	if pr.User != nil {
		result.User = &types.GitHubUser{Login: pr.User.GetLogin()}
	}
	if pr.Head != nil {
		result.Head = &types.Branch{Ref: pr.Head.GetRef(), SHA: pr.Head.GetSHA()}
	}
	if pr.Base != nil {
		result.Base = &types.Branch{Ref: pr.Base.GetRef(), SHA: pr.Base.GetSHA()}
	}

	return result
}

// transformComment converts a GitHub API issue comment to the local type
func transformComment(comment *github.IssueComment, prNumber int) *types.Comment {
	result := &types.Comment{
		ID:                comment.GetID(),
		Body:              comment.GetBody(),
		CreatedAt:         comment.GetCreatedAt().Time,
		PullRequestNumber: prNumber,
	}

	if comment.User != nil {
		result.User = &types.GitHubUser{Login: comment.User.GetLogin()}
	}

	return result
}
