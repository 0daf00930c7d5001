package models

import "time"

const (
	StateOpened = "opened"
	StateClosed = "closed"

	StateEventClose = "close"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Milestone struct {
	Title string `json:"title"`
}

// Issue is a project issue as returned by GitLab. IID is the project scoped number.
type Issue struct {
	IID         int        `json:"iid"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	Description string     `json:"description"`
	Labels      []string   `json:"labels"`
	Assignee    *User      `json:"assignee"`
	Milestone   *Milestone `json:"milestone"`
	Author      User       `json:"author"`
	CreatedAt   time.Time  `json:"created_at"`
	WebURL      string     `json:"web_url"`
}

// Note is a comment on an issue.
type Note struct {
	ID        int       `json:"id"`
	Author    User      `json:"author"`
	Body      string    `json:"body"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueFilter narrows ListIssues server side.
type IssueFilter struct {
	State      string
	Labels     []string
	AssigneeID *int
}

// NewIssue carries the fields accepted when creating an issue.
type NewIssue struct {
	Title       string
	Description *string
	Labels      []string
	AssigneeID  *int
}

// IssueUpdate is a partial update: nil fields are left untouched server side.
type IssueUpdate struct {
	Title       *string
	Description *string
	Labels      *[]string
	AssigneeID  *int
	StateEvent  *string
}

// IsEmpty reports whether the update would not change anything.
func (u IssueUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Labels == nil && u.AssigneeID == nil && u.StateEvent == nil
}
