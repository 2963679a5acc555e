package recurrence

import (
	"time"

	"task-planner/internal/model"
)

// Rule identifies a recurrence cadence. Anything outside the recognized
// set, including a rule applied to the wrong occurrence kind, expands to
// nothing rather than erroring.
type Rule string

const (
	None    Rule = "none"
	Daily   Rule = "daily"
	Weekly  Rule = "weekly"
	Weekday Rule = "weekday" // events only
	Monthly Rule = "monthly" // tasks only
	Yearly  Rule = "yearly"  // tasks only
)

// Expansion horizons. Windows are fixed and inclusive: a series is
// materialized once at creation time and simply runs out when its horizon
// does.
const (
	dailyHorizonDays     = 365
	weeklyHorizonWeeks   = 52
	weekdayHorizonDays   = 90
	dayOfWeekHorizonDays = 84
	monthlyHorizonMonths = 12
	yearlyHorizonYears   = 5
)

// Day-name rules (events only), e.g. "monday" repeats on every Monday
// inside the horizon.
var dayNames = map[Rule]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Expand materializes the future dates a rule produces for an anchor date.
// It is pure and deterministic, touches no storage, and performs no
// ownership checks. The anchor date itself is never emitted; the monthly
// rollback (see expandMonthly) is the one case where an emitted date can
// coincide with it.
func Expand(kind model.Kind, anchor time.Time, rule Rule) []time.Time {
	switch kind {
	case model.KindTask:
		return expandTask(anchor, rule)
	case model.KindEvent:
		return expandEvent(anchor, rule)
	default:
		return nil
	}
}

func expandTask(anchor time.Time, rule Rule) []time.Time {
	switch rule {
	case Daily:
		return expandDaily(anchor)
	case Weekly:
		return expandWeekly(anchor)
	case Monthly:
		return expandMonthly(anchor)
	case Yearly:
		return expandYearly(anchor)
	default:
		return nil
	}
}

func expandEvent(anchor time.Time, rule Rule) []time.Time {
	switch rule {
	case Daily:
		return expandDaily(anchor)
	case Weekly:
		return expandWeekly(anchor)
	case Weekday:
		return expandWeekdays(anchor)
	default:
		if target, ok := dayNames[rule]; ok {
			return expandDayOfWeek(anchor, target)
		}
		return nil
	}
}

func expandDaily(anchor time.Time) []time.Time {
	out := make([]time.Time, 0, dailyHorizonDays)
	for i := 1; i <= dailyHorizonDays; i++ {
		out = append(out, anchor.AddDate(0, 0, i))
	}
	return out
}

func expandWeekly(anchor time.Time) []time.Time {
	out := make([]time.Time, 0, weeklyHorizonWeeks)
	for i := 1; i <= weeklyHorizonWeeks; i++ {
		out = append(out, anchor.AddDate(0, 0, 7*i))
	}
	return out
}

func expandWeekdays(anchor time.Time) []time.Time {
	var out []time.Time
	for i := 1; i <= weekdayHorizonDays; i++ {
		d := anchor.AddDate(0, 0, i)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}

func expandDayOfWeek(anchor time.Time, target time.Weekday) []time.Time {
	var out []time.Time
	for i := 1; i <= dayOfWeekHorizonDays; i++ {
		d := anchor.AddDate(0, 0, i)
		if d.Weekday() == target {
			out = append(out, d)
		}
	}
	return out
}

// expandMonthly emits the anchor's day-of-month in each of the next twelve
// months. When that day does not exist in a target month, the emitted date
// is day 1 of the target month minus one day, i.e. the last day of the
// month before it. For a Jan 31 anchor the February slot therefore lands
// back on Jan 31 and the March/April slots both land on Mar 31; this
// rollback is long-standing observable behavior and is kept as is.
func expandMonthly(anchor time.Time) []time.Time {
	out := make([]time.Time, 0, monthlyHorizonMonths)
	for i := 1; i <= monthlyHorizonMonths; i++ {
		month := int(anchor.Month()) + i
		year := anchor.Year()
		if month > 12 {
			month -= 12
			year++
		}
		d := time.Date(year, time.Month(month), anchor.Day(), 0, 0, 0, 0, anchor.Location())
		if d.Month() != time.Month(month) {
			// time.Date normalized an out-of-range day into the next
			// month; roll back to the day before the target month starts.
			d = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, anchor.Location()).AddDate(0, 0, -1)
		}
		out = append(out, d)
	}
	return out
}

// expandYearly emits the anchor's month and day in each of the next five
// years. A Feb 29 anchor has no literal counterpart in non-leap years;
// those slots clamp to Feb 28.
func expandYearly(anchor time.Time) []time.Time {
	out := make([]time.Time, 0, yearlyHorizonYears)
	for i := 1; i <= yearlyHorizonYears; i++ {
		year := anchor.Year() + i
		d := time.Date(year, anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
		if d.Month() != anchor.Month() {
			d = time.Date(year, anchor.Month()+1, 1, 0, 0, 0, 0, anchor.Location()).AddDate(0, 0, -1)
		}
		out = append(out, d)
	}
	return out
}
