package model

import "redmine-planner.com/redmine-planner/pkg/constants"

// BatchResult is the aggregate answer of a log batch submission.
type BatchResult struct {
	Status constants.BatchStatus `json:"status"`
	Logged int                   `json:"logged"`
	Errors []string              `json:"errors,omitempty"`
	Error  string                `json:"error,omitempty"`
}
