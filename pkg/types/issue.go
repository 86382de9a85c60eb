package types

import (
	"time"
)

// Status describes the workflow state of a Jira issue.
type Status struct {
	Name        string `json:"name"`
	CategoryKey string `json:"category_key"`
}

// IssueType describes the kind of a Jira issue (Bug, Task, Story, Epic).
type IssueType struct {
	Name string `json:"name"`
}

// Project identifies the Jira project an issue belongs to.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User identifies a Jira user.
type User struct {
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address"`
}

// Issue is an immutable snapshot of a Jira issue as fetched from the API.
type Issue struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Type        *IssueType `json:"type,omitempty"`
	Project     *Project   `json:"project,omitempty"`
	Assignee    *User      `json:"assignee,omitempty"`
	Reporter    *User      `json:"reporter,omitempty"`
	Created     time.Time  `json:"created,omitempty"`
	Updated     time.Time  `json:"updated,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
}

// Board represents a Jira board.
type Board struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	ProjectKey string `json:"project_key,omitempty"`
}

// CreateIssueRequest carries the fields needed to create a new Jira issue.
type CreateIssueRequest struct {
	Summary     string   `json:"summary"`
	IssueType   string   `json:"issue_type"`
	ProjectKey  string   `json:"project_key"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}
