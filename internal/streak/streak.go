package streak

import (
	"sort"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/models"
)

// Result holds the derived streak values for one habit. It is ephemeral and
// recomputed on demand; Best is always >= Current.
type Result struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Compute calculates the current and best streaks from a completion record.
// It is a total function: a nil or empty record yields {0, 0}. The reference
// date is injected so results are deterministic under test.
//
// A streak is a run of calendar-consecutive days marked done. Frozen days
// bridge gaps inside a run without adding to its length. The current streak
// is the run anchored at today, or at yesterday when today is still pending
// (no entry, or only a frozen marker); anything older counts as broken.
func Compute(record models.CompletionRecord, today time.Time) Result {
	if len(record) == 0 {
		return Result{}
	}

	frozen := make(map[string]bool)
	var doneDays []string
	for day, entry := range record {
		if entry.Frozen {
			frozen[day] = true
		}
		if entry.Status == constants.StatusDone {
			doneDays = append(doneDays, day)
		}
	}
	if len(doneDays) == 0 {
		return Result{}
	}

	// Newest first
	sort.Sort(sort.Reverse(sort.StringSlice(doneDays)))

	best := 0
	run := 0
	firstRun := 0 // length of the run containing the most recent done day
	var prev time.Time
	for i, day := range doneDays {
		d, err := time.Parse(constants.DateFormat, day)
		if err != nil {
			continue
		}
		if i == 0 {
			run = 1
		} else if connected(d, prev, frozen) {
			run++
		} else {
			if firstRun == 0 {
				firstRun = run
			}
			if run > best {
				best = run
			}
			run = 1
		}
		prev = d
	}
	if firstRun == 0 {
		firstRun = run
	}
	if run > best {
		best = run
	}

	current := 0
	if anchored(doneDays[0], record, frozen, today) {
		current = firstRun
	}
	if current > best {
		best = current
	}

	return Result{Current: current, Best: best}
}

// connected reports whether the older done day joins the newer one in a
// single run: exactly one day apart, or separated only by frozen days.
func connected(older, newer time.Time, frozen map[string]bool) bool {
	gap := int(newer.Sub(older).Hours() / 24)
	if gap == 1 {
		return true
	}
	if gap < 1 {
		return false
	}
	for d := older.AddDate(0, 0, 1); d.Before(newer); d = d.AddDate(0, 0, 1) {
		if !frozen[d.Format(constants.DateFormat)] {
			return false
		}
	}
	return true
}

// anchored reports whether the most recent done day still reaches today:
// every day after it up to yesterday must be frozen, and today must be done,
// pending (no entry), or itself frozen. A missed or skipped entry for today
// breaks the streak.
func anchored(latestDone string, record models.CompletionRecord, frozen map[string]bool, today time.Time) bool {
	todayStr := today.Format(constants.DateFormat)
	if latestDone == todayStr {
		return true
	}
	latest, err := time.Parse(constants.DateFormat, latestDone)
	if err != nil {
		return false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !latest.Before(day) {
		return false
	}
	for d := latest.AddDate(0, 0, 1); d.Before(day); d = d.AddDate(0, 0, 1) {
		if !frozen[d.Format(constants.DateFormat)] {
			return false
		}
	}
	entry, ok := record[todayStr]
	if !ok {
		// Today is pending; the run ending yesterday still counts
		return true
	}
	return entry.Frozen && entry.Status != constants.StatusMissed && entry.Status != constants.StatusSkipped
}

// DatesInRange produces daysBack consecutive calendar dates ending at and
// including the given day, oldest first. Consumed by the calendar grids.
func DatesInRange(daysBack int, today time.Time) []string {
	if daysBack <= 0 {
		return []string{}
	}
	dates := make([]string, 0, daysBack)
	for i := daysBack - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format(constants.DateFormat))
	}
	return dates
}
