package bridge

import (
	"context"

	"github.com/clintrovert/praxis/pkg/types"
)

// IssueService is the narrow Jira capability the bridge consumes. Concrete
// implementations are injected at startup.
type IssueService interface {
	SearchIssues(ctx context.Context) ([]*types.Issue, error)
	CreateIssue(ctx context.Context, req *types.CreateIssueRequest) (*types.Issue, error)
	GetBoards(ctx context.Context) ([]*types.Board, error)
	BrowseURL(key string) string
}

// PullRequestService is the narrow GitHub capability the bridge consumes.
type PullRequestService interface {
	GetPullRequest(ctx context.Context, number int) (*types.PullRequest, error)
	ListPullRequests(ctx context.Context, state string) ([]*types.PullRequest, error)
	ListComments(ctx context.Context, number int) ([]*types.Comment, error)
	AddComment(ctx context.Context, number int, body string) (*types.Comment, error)
	PullRequestURL(number int) string
}
