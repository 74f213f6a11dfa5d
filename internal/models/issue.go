package models

// IssueRecord is the payload submitted to the issue creation API
type IssueRecord struct {
	Title     string   `json:"title"`
	Body      *string  `json:"body,omitempty"`
	Labels    []string `json:"labels"`
	Assignee  *string  `json:"assignee,omitempty"`
	Milestone *int     `json:"milestone,omitempty"`
}

// CreatedIssue is what the remote side reports back after creation
type CreatedIssue struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
