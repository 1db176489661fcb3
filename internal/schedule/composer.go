package schedule

import (
	"errors"
	"sort"
)

const (
	// ReturningVisit is the short appointment offered to known patients.
	ReturningVisit = SlotWidth
	// NewVisit is the long appointment offered on a first encounter.
	NewVisit = 2 * SlotWidth
)

var (
	ErrBadDuration = errors.New("duration must be a positive multiple of the slot width")
)

// DurationFor selects the appointment duration from the returning flag.
// This is the only signal callers may use; it is a lookup, not a heuristic.
func DurationFor(isReturning bool) (minutes int) {
	if isReturning {
		return int(ReturningVisit.Minutes())
	}
	return int(NewVisit.Minutes())
}

// CandidateWindows derives every bookable window of the given duration (in
// minutes) from a free-slot view. A duration of k slot widths yields one
// window per run of k exactly chained slots, sliding one slot at a time, so
// overlapping windows within a day are all offered. Runs never cross a date
// or doctor boundary. An empty result means no availability.
func CandidateWindows(slots []AtomicSlot, durationMin int) ([]Window, error) {
	width := int(SlotWidth.Minutes())
	if durationMin <= 0 || durationMin%width != 0 {
		return nil, ErrBadDuration
	}
	k := durationMin / width

	free := make([]AtomicSlot, 0, len(slots))
	for _, s := range slots {
		if s.Status == SlotFree {
			free = append(free, s)
		}
	}

	sort.Slice(free, func(i, j int) bool {
		if free[i].DoctorID != free[j].DoctorID {
			return free[i].DoctorID < free[j].DoctorID
		}
		if free[i].Date != free[j].Date {
			return free[i].Date < free[j].Date
		}
		return free[i].StartTime < free[j].StartTime
	})

	var windows []Window
	for i := 0; i+k <= len(free); i++ {
		run := free[i : i+k]
		if !chained(run) {
			continue
		}
		windows = append(windows, makeWindow(run))
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Date != windows[j].Date {
			return windows[i].Date < windows[j].Date
		}
		return windows[i].StartTime < windows[j].StartTime
	})

	return windows, nil
}

// chained reports whether the run is same-doctor, same-day and each slot's
// end meets the next slot's start exactly.
func chained(run []AtomicSlot) bool {
	for i := 1; i < len(run); i++ {
		prev, cur := run[i-1], run[i]
		if cur.DoctorID != prev.DoctorID || cur.Date != prev.Date {
			return false
		}
		if prev.EndTime != cur.StartTime {
			return false
		}
	}
	return true
}

func makeWindow(run []AtomicSlot) Window {
	first, last := run[0], run[len(run)-1]
	w := Window{
		DoctorID:   first.DoctorID,
		DoctorName: first.DoctorName,
		Location:   first.Location,
		Date:       first.Date,
		StartTime:  first.StartTime,
		EndTime:    last.EndTime,
		Slots:      make([]SlotRef, 0, len(run)),
	}
	for _, s := range run {
		w.Slots = append(w.Slots, SlotRef{
			DoctorID:  s.DoctorID,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	return w
}

// BuildWindow reconstructs the window a caller selected from its boundary
// times, synthesizing the composing slot refs. The reservation itself is the
// authoritative availability check.
func BuildWindow(doctorID, date, startTime, endTime string) (Window, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return Window{}, ErrWindowMismatch
	}
	end, err := parseClock(endTime)
	if err != nil {
		return Window{}, ErrWindowMismatch
	}
	if doctorID == "" || date == "" || !end.After(start) {
		return Window{}, ErrWindowMismatch
	}

	span := end.Sub(start)
	if span%SlotWidth != 0 {
		return Window{}, ErrWindowMismatch
	}

	w := Window{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
	}
	for t := start; t.Before(end); t = t.Add(SlotWidth) {
		w.Slots = append(w.Slots, SlotRef{
			DoctorID:  doctorID,
			Date:      date,
			StartTime: t.Format(clockLayout),
			EndTime:   t.Add(SlotWidth).Format(clockLayout),
		})
	}
	return w, nil
}
