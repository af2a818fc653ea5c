package model

import "time"

const (
	DefaultRedmineURL        = "http://localhost:3000/"
	DefaultAlertTime         = "17:00"
	DefaultAutoLogTime       = "18:00"
	DefaultCalendarStartTime = "06:00"
	DefaultCalendarEndTime   = "21:00"
)

// Settings is the single row of user preferences kept by the backend.
type Settings struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	APIKey            string    `json:"api_key"`
	RedmineURL        string    `json:"redmine_url"`
	AlertTime         string    `gorm:"size:5" json:"alert_time"`
	AutoLogTime       string    `gorm:"size:5" json:"auto_log_time"`
	CalendarStartTime string    `gorm:"size:5" json:"calendar_start_time"`
	CalendarEndTime   string    `gorm:"size:5" json:"calendar_end_time"`
	UpdatedAt         time.Time `json:"-"`
}

func DefaultSettings() Settings {
	s := Settings{}
	s.ApplyDefaults()
	return s
}

func (s *Settings) ApplyDefaults() {
	if s.RedmineURL == "" {
		s.RedmineURL = DefaultRedmineURL
	}
	if s.AlertTime == "" {
		s.AlertTime = DefaultAlertTime
	}
	if s.AutoLogTime == "" {
		s.AutoLogTime = DefaultAutoLogTime
	}
	if s.CalendarStartTime == "" {
		s.CalendarStartTime = DefaultCalendarStartTime
	}
	if s.CalendarEndTime == "" {
		s.CalendarEndTime = DefaultCalendarEndTime
	}
}

func (s Settings) Configured() bool {
	return s.APIKey != "" && s.RedmineURL != ""
}
