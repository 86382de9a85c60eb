package types

import (
	"time"
)

// GitHubUser identifies a GitHub user.
type GitHubUser struct {
	Login string `json:"login"`
}

// Branch identifies one side of a pull request.
type Branch struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// PullRequest is a snapshot of a GitHub pull request.
type PullRequest struct {
	ID        int64       `json:"id"`
	Number    int         `json:"number"`
	Title     string      `json:"title"`
	Body      string      `json:"body,omitempty"`
	User      *GitHubUser `json:"user,omitempty"`
	Head      *Branch     `json:"head,omitempty"`
	Base      *Branch     `json:"base,omitempty"`
	State     string      `json:"state"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
	HTMLURL   string      `json:"html_url,omitempty"`
}

// Comment is a comment on a pull request thread.
type Comment struct {
	ID                int64       `json:"id"`
	Body              string      `json:"body"`
	User              *GitHubUser `json:"user,omitempty"`
	CreatedAt         time.Time   `json:"created_at,omitempty"`
	PullRequestNumber int         `json:"pull_request_number,omitempty"`
}
