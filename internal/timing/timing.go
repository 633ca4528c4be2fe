// Package timing provides functionality for computing song start times
// within a concert window.
package timing

import (
	"time"

	"github.com/bandstand-io/bandstand/internal/domain"
)

// Recalculate assigns back-to-back start times to all songs, beginning
// at concertStart. Start times are derived state: the same input always
// produces the same schedule. An empty slice is a no-op.
func Recalculate(songs []domain.Song, concertStart time.Time) {
	cursor := concertStart
	for i := range songs {
		start := cursor
		songs[i].StartTime = &start
		cursor = cursor.Add(time.Duration(songs[i].DurationSeconds()) * time.Second)
	}
}

// RecalculateFrom reflows start times from index onward and leaves
// earlier songs untouched. The start time for index is derived from the
// previous song's start time plus its duration; index 0 behaves like
// Recalculate. Used after a manual edit of one song's start time so
// only the suffix moves. Out-of-range indices and an unscheduled
// prefix are no-ops.
func RecalculateFrom(songs []domain.Song, index int, concertStart time.Time) {
	if index >= len(songs) {
		return
	}
	if index <= 0 {
		Recalculate(songs, concertStart)
		return
	}
	prev := &songs[index-1]
	if prev.StartTime == nil {
		return
	}
	cursor := prev.StartTime.Add(time.Duration(prev.DurationSeconds()) * time.Second)
	for i := index; i < len(songs); i++ {
		start := cursor
		songs[i].StartTime = &start
		cursor = cursor.Add(time.Duration(songs[i].DurationSeconds()) * time.Second)
	}
}

// AddBreaks schedules songs back-to-back with a fixed pause after every
// song except the last. If concertEnd is set and the last song would
// end after it, the schedule falls back to DistributeEvenly so the set
// still fits the window.
func AddBreaks(songs []domain.Song, concertStart time.Time, concertEnd *time.Time, breakMinutes int) {
	if len(songs) == 0 {
		return
	}
	pause := time.Duration(breakMinutes) * time.Minute
	cursor := concertStart
	for i := range songs {
		start := cursor
		songs[i].StartTime = &start
		cursor = cursor.Add(time.Duration(songs[i].DurationSeconds()) * time.Second)
		if i < len(songs)-1 {
			cursor = cursor.Add(pause)
		}
	}
	if concertEnd != nil && cursor.After(*concertEnd) {
		DistributeEvenly(songs, concertStart, *concertEnd)
	}
}

// DistributeEvenly spreads songs across the window between concertStart
// and concertEnd. When the set is longer than the window, effective
// durations are compressed proportionally so the last song still ends
// by concertEnd; stored durations are never modified. Otherwise each
// song gets an equal slot of the window regardless of its duration.
func DistributeEvenly(songs []domain.Song, concertStart, concertEnd time.Time) {
	n := len(songs)
	if n == 0 {
		return
	}
	window := concertEnd.Sub(concertStart).Seconds()
	if window <= 0 {
		return
	}

	total := 0.0
	for i := range songs {
		total += float64(songs[i].DurationSeconds())
	}

	if total > window {
		scale := window / total
		elapsed := 0.0
		for i := range songs {
			start := concertStart.Add(time.Duration(elapsed * float64(time.Second)))
			songs[i].StartTime = &start
			elapsed += float64(songs[i].DurationSeconds()) * scale
		}
		return
	}

	slot := window / float64(n)
	for i := range songs {
		start := concertStart.Add(time.Duration(float64(i) * slot * float64(time.Second)))
		songs[i].StartTime = &start
	}
}
