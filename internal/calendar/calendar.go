// Package calendar lays logged time entries out as blocks on a day grid.
package calendar

import (
	"math"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// DefaultStartTime is where an entry without a start time is placed.
const DefaultStartTime = "09:00"

var (
	lunchStart = clock{12, 0}
	lunchEnd   = clock{13, 0}
)

type clock struct{ hour, minute int }

func (c clock) on(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.hour, c.minute, 0, 0, day.Location())
}

type Block struct {
	EntryID   int
	Title     string
	Start     time.Time
	End       time.Time
	Hours     float64
	ProjectID int
	IssueID   *int
}

// Blocks places every entry on its day. An entry that starts before noon and
// runs past it is stretched by an hour so it skips the lunch break. Entries
// with unparsable dates or times are dropped.
func Blocks(entries []model.TimeEntry, loc *time.Location) []Block {
	blocks := make([]Block, 0, len(entries))
	for _, e := range entries {
		startTime := e.StartTime
		if startTime == "" {
			startTime = DefaultStartTime
		}

		start, err := time.ParseInLocation(constants.DateLayout+" "+constants.ClockLayout, e.SpentOn+" "+startTime, loc)
		if err != nil {
			log.WithError(err).WithField("time_entry_id", e.ID).Warn("skipping time entry with invalid date")
			continue
		}

		end := start.Add(time.Duration(e.Hours * float64(time.Hour)))
		if noon := lunchStart.on(start); start.Before(noon) && end.After(noon) {
			end = end.Add(time.Hour)
		}

		blocks = append(blocks, Block{
			EntryID:   e.ID,
			Title:     Title(e),
			Start:     start,
			End:       end,
			Hours:     e.Hours,
			ProjectID: e.ProjectID,
			IssueID:   e.Issue,
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start.Before(blocks[j].Start) })
	return blocks
}

func Title(e model.TimeEntry) string {
	label := e.Comments
	if label == "" {
		label = e.Project
	}
	return strconv.FormatFloat(e.Hours, 'f', -1, 64) + "h - " + label
}

type Band struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Background returns the shaded bands of a working day; weekends have none.
func Background(day time.Time) []Band {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return nil
	}
	return []Band{
		{Name: "morning", Start: clock{6, 0}.on(day), End: clock{7, 30}.on(day)},
		{Name: "lunch", Start: lunchStart.on(day), End: lunchEnd.on(day)},
		{Name: "evening", Start: clock{18, 30}.on(day), End: clock{21, 0}.on(day)},
	}
}

// SelectionHours converts a selected span into hours, minus any overlap with
// the lunch break, rounded to one decimal.
func SelectionHours(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}

	span := end.Sub(start)
	overlapStart, overlapEnd := lunchStart.on(start), lunchEnd.on(start)
	if start.After(overlapStart) {
		overlapStart = start
	}
	if end.Before(overlapEnd) {
		overlapEnd = end
	}
	if overlapStart.Before(overlapEnd) {
		span -= overlapEnd.Sub(overlapStart)
	}

	return math.Round(span.Hours()*10) / 10
}

// Window is the visible part of the day grid.
type Window struct {
	Start string
	End   string
}

func WindowFrom(s model.Settings) Window {
	s.ApplyDefaults()
	return Window{Start: s.CalendarStartTime, End: s.CalendarEndTime}
}

// Totals sums logged hours per spent_on day.
func Totals(blocks []Block) map[string]float64 {
	totals := make(map[string]float64)
	for _, b := range blocks {
		totals[b.Start.Format(constants.DateLayout)] += b.Hours
	}
	return totals
}
