package domain

import "time"

// ReportStatusOpen is the status the store assigns to new reports.
const ReportStatusOpen = "open"

// IssueType is an operator-defined category of reportable problem.
type IssueType struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// NewReport is the insert payload for a report.
type NewReport struct {
	WaterpuntID string `json:"waterpunt_id"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
}

// Report is a stored issue report. ID, CreatedAt and Status are assigned by the store.
type Report struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	WaterpuntID string    `json:"waterpunt_id"`
	IssueType   string    `json:"issue_type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}
