package constants

type TaskState string

const (
	StatePending TaskState = "PENDING"
	StatePaused  TaskState = "PAUSED"
	StateLogged  TaskState = "LOGGED"
)

type BatchStatus string

const (
	BatchSuccess        BatchStatus = "success"
	BatchPartialSuccess BatchStatus = "partial_success"
	BatchError          BatchStatus = "error"
)

const (
	// DefaultActivityID is Redmine's "Development" activity.
	DefaultActivityID     = 9
	DefaultRDFunctionTeam = "N/A"
	// RDFunctionTeamFieldID is the time entry custom field carrying the R&D function team.
	RDFunctionTeamFieldID = 93
	FallbackTaskName      = "Unknown Task"
	DefaultPlannedHours   = 8.0

	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)
