package domain

import "time"

// Song represents a single entry in a setlist. The duration is stored as
// separate minute and second components; StartTime is derived by the
// timing engine and never entered by hand.
type Song struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	DurationMin int        `json:"duration_min" bson:"duration_min"`
	DurationSec int        `json:"duration_sec" bson:"duration_sec"`
	BPM         int        `json:"bpm,omitempty" bson:"bpm,omitempty"`
	Key         string     `json:"key,omitempty" bson:"key,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty" bson:"start_time,omitempty"`
}

// DurationSeconds returns the song duration as a total number of seconds.
// Negative components are treated as zero.
func (s *Song) DurationSeconds() int {
	min, sec := s.DurationMin, s.DurationSec
	if min < 0 {
		min = 0
	}
	if sec < 0 {
		sec = 0
	}
	return min*60 + sec
}

// Setlist represents an ordered collection of songs for a concert.
// Timing is enabled when ConcertDate is set; ConcertEnd and BreakMinutes
// are optional scheduling parameters.
type Setlist struct {
	ID           string     `json:"id" bson:"_id"`
	GroupID      string     `json:"group_id" bson:"group_id"`
	Name         string     `json:"name" bson:"name"`
	Songs        []Song     `json:"songs" bson:"songs"`
	ConcertDate  *time.Time `json:"concert_date,omitempty" bson:"concert_date,omitempty"`
	ConcertEnd   *time.Time `json:"concert_end,omitempty" bson:"concert_end,omitempty"`
	BreakMinutes int        `json:"break_minutes,omitempty" bson:"break_minutes,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// TotalDuration returns the summed duration of all songs in seconds.
// It is computed on demand and never stored.
func (s *Setlist) TotalDuration() int {
	total := 0
	for i := range s.Songs {
		total += s.Songs[i].DurationSeconds()
	}
	return total
}

// TimingEnabled reports whether the setlist has a concert date and can
// therefore be scheduled.
func (s *Setlist) TimingEnabled() bool {
	return s.ConcertDate != nil
}

// SongIndex returns the position of the song with the given id, or -1.
func (s *Setlist) SongIndex(songID string) int {
	for i := range s.Songs {
		if s.Songs[i].ID == songID {
			return i
		}
	}
	return -1
}
