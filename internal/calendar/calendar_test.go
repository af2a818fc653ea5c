package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "redmine-planner.com/redmine-planner/pkg/models"
)

func hm(t time.Time) string {
	return t.Format("15:04")
}

func TestBlocks_LunchGap(t *testing.T) {
	blocks := Blocks([]model.TimeEntry{
		{ID: 1, SpentOn: "2026-10-19", Hours: 4, Comments: "Review"},
		{ID: 2, SpentOn: "2026-10-19", StartTime: "13:00", Hours: 2.5, Project: "Core"},
		{ID: 3, SpentOn: "2026-10-19", StartTime: "08:00", Hours: 4},
	}, time.UTC)

	require.Len(t, blocks, 3)

	assert.Equal(t, 3, blocks[0].EntryID)
	assert.Equal(t, "12:00", hm(blocks[0].End), "ending exactly at noon does not cross lunch")

	assert.Equal(t, 1, blocks[1].EntryID)
	assert.Equal(t, "09:00", hm(blocks[1].Start))
	assert.Equal(t, "14:00", hm(blocks[1].End))
	assert.Equal(t, "4h - Review", blocks[1].Title)

	assert.Equal(t, "15:30", hm(blocks[2].End))
	assert.Equal(t, "2.5h - Core", blocks[2].Title)
}

func TestBlocks_SkipsInvalidDate(t *testing.T) {
	blocks := Blocks([]model.TimeEntry{{ID: 1, SpentOn: "not a date", Hours: 1}}, time.UTC)

	assert.Empty(t, blocks)
}

func TestBackground_WeekdaysOnly(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	bands := Background(monday)

	require.Len(t, bands, 3)
	assert.Equal(t, "lunch", bands[1].Name)
	assert.Equal(t, "12:00", hm(bands[1].Start))
	assert.Equal(t, "13:00", hm(bands[1].End))
	assert.Equal(t, "07:30", hm(bands[0].End))
	assert.Equal(t, "18:30", hm(bands[2].Start))

	assert.Empty(t, Background(monday.AddDate(0, 0, 5)))
}

func TestSelectionHours_DeductsLunch(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4.0, SelectionHours(day.Add(10*time.Hour), day.Add(15*time.Hour)))
	assert.Equal(t, 0.5, SelectionHours(day.Add(11*time.Hour+30*time.Minute), day.Add(12*time.Hour+30*time.Minute)))
	assert.Equal(t, 2.0, SelectionHours(day.Add(8*time.Hour), day.Add(10*time.Hour)))
	assert.Equal(t, 0.0, SelectionHours(day.Add(10*time.Hour), day.Add(9*time.Hour)))
}

func TestWindowFrom_Defaults(t *testing.T) {
	assert.Equal(t, Window{Start: "06:00", End: "21:00"}, WindowFrom(model.Settings{}))
	assert.Equal(t, Window{Start: "07:00", End: "21:00"}, WindowFrom(model.Settings{CalendarStartTime: "07:00"}))
}

func TestTotals(t *testing.T) {
	blocks := Blocks([]model.TimeEntry{
		{ID: 1, SpentOn: "2026-10-19", Hours: 2},
		{ID: 2, SpentOn: "2026-10-19", Hours: 1.5},
		{ID: 3, SpentOn: "2026-10-20", Hours: 8},
	}, time.UTC)

	assert.Equal(t, map[string]float64{"2026-10-19": 3.5, "2026-10-20": 8}, Totals(blocks))
}
