package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(doctorID, date, start, end string) AtomicSlot {
	return AtomicSlot{
		DoctorID:   doctorID,
		DoctorName: "Dr. Rao",
		Location:   "Velachery",
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Status:     SlotFree,
	}
}

func TestDurationFor(t *testing.T) {
	assert.Equal(t, 30, DurationFor(true))
	assert.Equal(t, 60, DurationFor(false))
}

func TestCandidateWindows_AtomicWidthReturnsEverySlot(t *testing.T) {
	slots := []AtomicSlot{
		slot("D001", "2025-01-11", "10:00", "10:30"),
		slot("D001", "2025-01-10", "09:30", "10:00"),
		slot("D001", "2025-01-10", "09:00", "09:30"),
	}

	windows, err := CandidateWindows(slots, 30)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	// Sorted by (date, start_time) regardless of input order.
	assert.Equal(t, "2025-01-10", windows[0].Date)
	assert.Equal(t, "09:00", windows[0].StartTime)
	assert.Equal(t, "09:30", windows[1].StartTime)
	assert.Equal(t, "2025-01-11", windows[2].Date)

	for _, w := range windows {
		assert.Len(t, w.Slots, 1)
	}
}

func TestCandidateWindows_PairsChainedSlots(t *testing.T) {
	slots := []AtomicSlot{
		slot("D001", "2025-01-10", "09:00", "09:30"),
		slot("D001", "2025-01-10", "09:30", "10:00"),
	}

	windows, err := CandidateWindows(slots, 60)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	w := windows[0]
	assert.Equal(t, "09:00", w.StartTime)
	assert.Equal(t, "10:00", w.EndTime)
	require.Len(t, w.Slots, 2)
	assert.Equal(t, "09:30", w.Slots[1].StartTime)
}

func TestCandidateWindows_SlidingOverlapWithinRun(t *testing.T) {
	// A run of three chained slots yields two overlapping 60-minute windows.
	slots := []AtomicSlot{
		slot("D001", "2025-01-10", "09:00", "09:30"),
		slot("D001", "2025-01-10", "09:30", "10:00"),
		slot("D001", "2025-01-10", "10:00", "10:30"),
	}

	windows, err := CandidateWindows(slots, 60)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, "09:00", windows[0].StartTime)
	assert.Equal(t, "10:00", windows[0].EndTime)
	assert.Equal(t, "09:30", windows[1].StartTime)
	assert.Equal(t, "10:30", windows[1].EndTime)
}

func TestCandidateWindows_RunLengthProperty(t *testing.T) {
	// run_length >= k yields run_length-k+1 windows, else zero.
	cases := []struct {
		runLength int
		k         int
		want      int
	}{
		{1, 2, 0},
		{2, 2, 1},
		{5, 2, 4},
		{5, 3, 3},
		{2, 3, 0},
	}

	for _, tc := range cases {
		var slots []AtomicSlot
		start := 9 * 60
		for i := 0; i < tc.runLength; i++ {
			s := clockFromMinutes(start + i*30)
			e := clockFromMinutes(start + (i+1)*30)
			slots = append(slots, slot("D001", "2025-01-10", s, e))
		}

		windows, err := CandidateWindows(slots, tc.k*30)
		require.NoError(t, err)
		assert.Len(t, windows, tc.want, "run=%d k=%d", tc.runLength, tc.k)
	}
}

func TestCandidateWindows_GapBreaksTheChain(t *testing.T) {
	slots := []AtomicSlot{
		slot("D001", "2025-01-10", "09:00", "09:30"),
		slot("D001", "2025-01-10", "10:00", "10:30"), // 09:30 is booked
	}

	windows, err := CandidateWindows(slots, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestCandidateWindows_NeverMergesAcrossDatesOrDoctors(t *testing.T) {
	slots := []AtomicSlot{
		slot("D001", "2025-01-10", "16:30", "17:00"),
		slot("D001", "2025-01-11", "09:00", "09:30"),
		slot("D002", "2025-01-10", "17:00", "17:30"),
	}

	windows, err := CandidateWindows(slots, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestCandidateWindows_IgnoresBookedSlots(t *testing.T) {
	booked := slot("D001", "2025-01-10", "09:30", "10:00")
	booked.Status = SlotBooked

	slots := []AtomicSlot{
		slot("D001", "2025-01-10", "09:00", "09:30"),
		booked,
	}

	windows, err := CandidateWindows(slots, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)

	singles, err := CandidateWindows(slots, 30)
	require.NoError(t, err)
	require.Len(t, singles, 1)
	assert.Equal(t, "09:00", singles[0].StartTime)
}

func TestCandidateWindows_BadDuration(t *testing.T) {
	slots := []AtomicSlot{slot("D001", "2025-01-10", "09:00", "09:30")}

	for _, d := range []int{0, -30, 45} {
		_, err := CandidateWindows(slots, d)
		assert.ErrorIs(t, err, ErrBadDuration, "duration=%d", d)
	}
}

func TestCandidateWindows_EmptyInputIsNotAnError(t *testing.T) {
	windows, err := CandidateWindows(nil, 60)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestBuildWindow(t *testing.T) {
	w, err := BuildWindow("D001", "2025-01-10", "09:00", "10:00")
	require.NoError(t, err)
	require.Len(t, w.Slots, 2)
	assert.Equal(t, "09:00", w.Slots[0].StartTime)
	assert.Equal(t, "09:30", w.Slots[0].EndTime)
	assert.Equal(t, "09:30", w.Slots[1].StartTime)
	assert.Equal(t, "10:00", w.Slots[1].EndTime)
}

func TestBuildWindow_RejectsMalformedBoundaries(t *testing.T) {
	cases := []struct {
		name             string
		doctor, date     string
		start, end       string
	}{
		{"end before start", "D001", "2025-01-10", "10:00", "09:00"},
		{"not a slot multiple", "D001", "2025-01-10", "09:00", "09:45"},
		{"empty doctor", "", "2025-01-10", "09:00", "10:00"},
		{"empty date", "D001", "", "09:00", "10:00"},
		{"unparseable time", "D001", "2025-01-10", "morning", "10:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildWindow(tc.doctor, tc.date, tc.start, tc.end)
			assert.ErrorIs(t, err, ErrWindowMismatch)
		})
	}
}

func clockFromMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
