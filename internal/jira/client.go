package jira

import (
	"context"
	"fmt"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/clintrovert/praxis/pkg/types"
)

// maxSyncResults bounds how many issues a single sync fetches.
const maxSyncResults = 1000

// Client wraps Jira API client functionality
type Client struct {
	client     *jira.Client
	logger     *zap.Logger
	baseURL    string
	projectKey string
}

// NewClient creates a new Jira client
func NewClient(baseURL, username, apiToken, projectKey string, logger *zap.Logger) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		client:     client,
		logger:     logger,
		baseURL:    baseURL,
		projectKey: projectKey,
	}, nil
}

// SearchIssues retrieves all issues in the configured project, most recently
// updated first, bounded to the first maxSyncResults.
func (c *Client) SearchIssues(ctx context.Context) ([]*types.Issue, error) {
	jql := fmt.Sprintf("project = %s ORDER BY updated DESC", c.projectKey)

	issues, _, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
		MaxResults: maxSyncResults,
		Fields: []string{
			"id", "key", "summary", "description", "status",
			"issuetype", "project", "assignee", "reporter",
			"created", "updated", "labels",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	results := make([]*types.Issue, 0, len(issues))
	for i := range issues {
		results = append(results, transformIssue(&issues[i]))
	}

	return results, nil
}

// CreateIssue creates a new issue and returns the full snapshot of what Jira
// stored, re-fetched by key.
func (c *Client) CreateIssue(ctx context.Context, req *types.CreateIssueRequest) (*types.Issue, error) {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: req.ProjectKey},
		Summary:     req.Summary,
		Description: req.Description,
		Type:        jira.IssueType{Name: req.IssueType},
		Labels:      req.Labels,
	}
	if req.Assignee != "" {
		fields.Assignee = &jira.User{Name: req.Assignee}
	}
	if req.Priority != "" {
		fields.Priority = &jira.Priority{Name: req.Priority}
	}

	created, _, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	issue, err := c.GetIssue(ctx, created.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created issue %s: %w", created.Key, err)
	}

	c.logger.Info("created jira issue", zap.String("key", issue.Key))

	return issue, nil
}

// GetIssue retrieves a single issue by key
func (c *Client) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	issue, _, err := c.client.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", key, err)
	}

	return transformIssue(issue), nil
}

// GetBoards retrieves the boards attached to the configured project
func (c *Client) GetBoards(ctx context.Context) ([]*types.Board, error) {
	list, _, err := c.client.Board.GetAllBoardsWithContext(ctx, &jira.BoardListOptions{
		ProjectKeyOrID: c.projectKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get boards: %w", err)
	}

	boards := make([]*types.Board, 0, len(list.Values))
	for _, board := range list.Values {
		boards = append(boards, &types.Board{
			ID:         board.ID,
			Name:       board.Name,
			Type:       board.Type,
			ProjectKey: c.projectKey,
		})
	}

	return boards, nil
}

// BrowseURL returns the browse link for an issue key
func (c *Client) BrowseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", c.baseURL, key)
}

// transformIssue converts a Jira API issue to the local snapshot type
func transformIssue(issue *jira.Issue) *types.Issue {
	result := &types.Issue{
		ID:  issue.ID,
		Key: issue.Key,
	}

	if issue.Fields == nil {
		return result
	}

	result.Summary = issue.Fields.Summary
	result.Description = issue.Fields.Description
	result.Created = time.Time(issue.Fields.Created)
	result.Updated = time.Time(issue.Fields.Updated)
	result.Labels = issue.Fields.Labels

	if issue.Fields.Status != nil {
		result.Status = &types.Status{
			Name:        issue.Fields.Status.Name,
			CategoryKey: issue.Fields.Status.StatusCategory.Key,
		}
	}

	if issue.Fields.Type.Name != "" {
		result.Type = &types.IssueType{Name: issue.Fields.Type.Name}
	}

	if issue.Fields.Project.Key != "" {
		result.Project = &types.Project{
			Key:  issue.Fields.Project.Key,
			Name: issue.Fields.Project.Name,
		}
	}

	if issue.Fields.Assignee != nil {
		result.Assignee = &types.User{
			DisplayName:  issue.Fields.Assignee.DisplayName,
			EmailAddress: issue.Fields.Assignee.EmailAddress,
		}
	}

	if issue.Fields.Reporter != nil {
		result.Reporter = &types.User{
			DisplayName:  issue.Fields.Reporter.DisplayName,
			EmailAddress: issue.Fields.Reporter.EmailAddress,
		}
	}

	return result
}
