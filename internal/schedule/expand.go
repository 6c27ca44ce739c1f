package schedule

import (
	"sort"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
)

// ExpandRule chops one rule's window on the given date into fixed-duration
// slots. The caller guarantees the rule is active and matches the date's
// weekday. A trailing window shorter than the duration is discarded, never
// emitted. An inverted window yields zero slots.
//
// Rules that overlap each other can emit duplicate slots; the expander does
// not deduplicate across rules.
func ExpandRule(rule domain.AvailabilityRule, date Date, loc *time.Location, duration time.Duration) ([]domain.Slot, error) {
	startTOD, err := ParseTimeOfDay(rule.StartTime)
	if err != nil {
		return nil, err
	}

	windowStart := date.At(startTOD, loc)

	var windowEnd time.Time
	if rule.EndTime == domain.MidnightSentinel {
		windowEnd = date.NextMidnight(loc)
	} else {
		endTOD, err := ParseTimeOfDay(rule.EndTime)
		if err != nil {
			return nil, err
		}
		windowEnd = date.At(endTOD, loc)
	}

	var slots []domain.Slot
	for current := windowStart; current.Before(windowEnd); {
		candidateEnd := current.Add(duration)
		if candidateEnd.After(windowEnd) {
			break
		}
		slots = append(slots, domain.Slot{Start: current, End: candidateEnd})
		current = candidateEnd
	}
	return slots, nil
}

// FilterBooked drops candidates whose start instant lies inside any
// appointment's [start, end). A slot starting exactly at an appointment's
// end is free.
func FilterBooked(slots []domain.Slot, appointments []domain.Appointment) []domain.Slot {
	out := slots[:0]
	for _, s := range slots {
		blocked := false
		for i := range appointments {
			if appointments[i].Blocks(s.Start) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, s)
		}
	}
	return out
}

// FilterPast keeps only slots starting strictly after now.
func FilterPast(slots []domain.Slot, now time.Time) []domain.Slot {
	out := slots[:0]
	for _, s := range slots {
		if s.Start.After(now) {
			out = append(out, s)
		}
	}
	return out
}

// SortSlots orders slots by ascending start time.
func SortSlots(slots []domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
}
