package models

import "time"

type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
	Description       string `json:"description"`
}

// Job is a CI job. Only failed jobs are listed by this tool.
type Job struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Stage     string     `json:"stage"`
	Status    string     `json:"status"`
	Ref       string     `json:"ref"`
	CreatedAt *time.Time `json:"created_at"`
	WebURL    string     `json:"web_url"`
}

type Snippet struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	WebURL   string `json:"web_url"`
}

// NewSnippet carries the fields accepted when creating a project snippet.
type NewSnippet struct {
	Title    string
	FileName string
	Content  string
}
