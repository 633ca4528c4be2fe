package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
	"github.com/bandstand-io/bandstand/internal/timing"
)

// Schedule modes accepted by SetlistService.Schedule.
const (
	// ScheduleSequential walks songs back to back from the concert start.
	ScheduleSequential = "sequential"
	// ScheduleBreaks inserts the setlist's break minutes between songs,
	// falling back to even distribution when the concert end is exceeded.
	ScheduleBreaks = "breaks"
	// ScheduleEven spreads songs across the start-to-end window.
	ScheduleEven = "even"
)

// SetlistInput carries the caller-editable setlist fields. Update
// replaces all of them; a nil time clears the corresponding date.
type SetlistInput struct {
	Name         string
	ConcertDate  *time.Time
	ConcertEnd   *time.Time
	BreakMinutes int
}

// SongInput carries the caller-editable song fields.
type SongInput struct {
	Title       string
	DurationMin int
	DurationSec int
	BPM         int
	Key         string
}

// SetlistService manages setlists and their songs for a group.
type SetlistService struct {
	store *store.Store
	hub   *Hub
}

func NewSetlistService(s *store.Store, hub *Hub) *SetlistService {
	return &SetlistService{store: s, hub: hub}
}

// Create stores a new, empty setlist.
func (s *SetlistService) Create(ctx context.Context, groupID string, in SetlistInput) (*domain.Setlist, error) {
	if groupID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: group id and name are required", ErrInvalidInput)
	}
	if in.BreakMinutes < 0 {
		return nil, fmt.Errorf("%w: break minutes must not be negative", ErrInvalidInput)
	}

	now := time.Now().UTC()
	set := &domain.Setlist{
		ID:           uuid.New().String(),
		GroupID:      groupID,
		Name:         in.Name,
		Songs:        []domain.Song{},
		ConcertDate:  in.ConcertDate,
		ConcertEnd:   in.ConcertEnd,
		BreakMinutes: in.BreakMinutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.save(ctx, set, ActionCreated); err != nil {
		return nil, err
	}
	slog.Info("Created setlist", "setlistID", set.ID, "groupID", groupID, "name", set.Name)
	return set, nil
}

// List returns the group's setlists, upcoming concerts first; setlists
// without a concert date follow in creation order.
func (s *SetlistService) List(ctx context.Context, groupID string) ([]domain.Setlist, error) {
	sets, err := s.store.Setlists.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list setlists: %w", err)
	}
	sort.SliceStable(sets, func(i, j int) bool {
		di, dj := sets[i].ConcertDate, sets[j].ConcertDate
		switch {
		case di != nil && dj != nil:
			return di.Before(*dj)
		case di != nil:
			return true
		case dj != nil:
			return false
		default:
			return sets[i].CreatedAt.Before(sets[j].CreatedAt)
		}
	})
	return sets, nil
}

// Get returns one setlist of the group.
func (s *SetlistService) Get(ctx context.Context, groupID, id string) (*domain.Setlist, error) {
	return s.get(ctx, groupID, id)
}

// Update replaces the setlist's name and concert parameters. Songs are
// untouched, except that removing the concert date clears all start
// times: a setlist without a date has no schedule.
func (s *SetlistService) Update(ctx context.Context, groupID, id string, in SetlistInput) (*domain.Setlist, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.BreakMinutes < 0 {
		return nil, fmt.Errorf("%w: break minutes must not be negative", ErrInvalidInput)
	}

	set, err := s.get(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	set.Name = in.Name
	set.ConcertDate = in.ConcertDate
	set.ConcertEnd = in.ConcertEnd
	set.BreakMinutes = in.BreakMinutes
	if set.ConcertDate == nil {
		for i := range set.Songs {
			set.Songs[i].StartTime = nil
		}
	}
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

// Delete removes a setlist.
func (s *SetlistService) Delete(ctx context.Context, groupID, id string) error {
	set, err := s.get(ctx, groupID, id)
	if err != nil {
		return err
	}
	if err := s.store.Setlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete setlist: %w", err)
	}
	s.hub.Publish(Event{GroupID: set.GroupID, Kind: KindSetlist, Action: ActionDeleted, EntityID: id})
	return nil
}

// AddSong appends a song. If the setlist is already scheduled the new
// song is slotted in right after the previous one.
func (s *SetlistService) AddSong(ctx context.Context, groupID, setlistID string, in SongInput) (*domain.Setlist, error) {
	song, err := newSong(in)
	if err != nil {
		return nil, err
	}
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	set.Songs = append(set.Songs, song)
	reflowFrom(set, len(set.Songs)-1)
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

// UpdateSong replaces a song's editable fields, keeping its scheduled
// start. Later songs are reflowed when the duration change shifts them.
func (s *SetlistService) UpdateSong(ctx context.Context, groupID, setlistID, songID string, in SongInput) (*domain.Setlist, error) {
	song, err := newSong(in)
	if err != nil {
		return nil, err
	}
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	idx := set.SongIndex(songID)
	if idx < 0 {
		return nil, fmt.Errorf("song %s: %w", songID, store.ErrNotFound)
	}
	song.ID = songID
	song.StartTime = set.Songs[idx].StartTime
	set.Songs[idx] = song
	reflowFrom(set, idx+1)
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

// RemoveSong deletes a song and closes the gap in the schedule.
func (s *SetlistService) RemoveSong(ctx context.Context, groupID, setlistID, songID string) (*domain.Setlist, error) {
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	idx := set.SongIndex(songID)
	if idx < 0 {
		return nil, fmt.Errorf("song %s: %w", songID, store.ErrNotFound)
	}
	set.Songs = append(set.Songs[:idx], set.Songs[idx+1:]...)
	reflowFrom(set, idx)
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

// Reorder moves the song at position from to position to.
func (s *SetlistService) Reorder(ctx context.Context, groupID, setlistID string, from, to int) (*domain.Setlist, error) {
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	n := len(set.Songs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: positions must be within 0..%d", ErrInvalidInput, n-1)
	}
	if from != to {
		song := set.Songs[from]
		set.Songs = append(set.Songs[:from], set.Songs[from+1:]...)
		set.Songs = append(set.Songs[:to], append([]domain.Song{song}, set.Songs[to:]...)...)
		reflowFrom(set, min(from, to))
	}
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

// ImportSongs appends copies of another setlist's songs. Copies get
// fresh ids and no start times; run Schedule to time them.
func (s *SetlistService) ImportSongs(ctx context.Context, groupID, setlistID, sourceID string) (*domain.Setlist, error) {
	if setlistID == sourceID {
		return nil, fmt.Errorf("%w: cannot import a setlist into itself", ErrInvalidInput)
	}
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	source, err := s.get(ctx, groupID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("source setlist: %w", err)
	}
	for _, song := range source.Songs {
		song.ID = uuid.New().String()
		song.StartTime = nil
		set.Songs = append(set.Songs, song)
	}
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	slog.Info("Imported songs", "setlistID", setlistID, "sourceID", sourceID, "count", len(source.Songs))
	return set, nil
}

// Schedule computes start times for every song using the given mode.
func (s *SetlistService) Schedule(ctx context.Context, groupID, setlistID, mode string) (*domain.Setlist, error) {
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	if !set.TimingEnabled() {
		return nil, ErrTimingDisabled
	}

	switch mode {
	case ScheduleSequential:
		timing.Recalculate(set.Songs, *set.ConcertDate)
	case ScheduleBreaks:
		timing.AddBreaks(set.Songs, *set.ConcertDate, set.ConcertEnd, set.BreakMinutes)
	case ScheduleEven:
		if set.ConcertEnd == nil {
			return nil, fmt.Errorf("%w: even distribution requires a concert end time", ErrInvalidInput)
		}
		timing.DistributeEvenly(set.Songs, *set.ConcertDate, *set.ConcertEnd)
	default:
		return nil, fmt.Errorf("%w: unknown schedule mode %q", ErrInvalidInput, mode)
	}

	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	slog.Info("Scheduled setlist", "setlistID", setlistID, "mode", mode, "songs", len(set.Songs))
	return set, nil
}

// SetSongStart overrides one song's start time and reflows the songs
// after it.
func (s *SetlistService) SetSongStart(ctx context.Context, groupID, setlistID, songID string, at time.Time) (*domain.Setlist, error) {
	set, err := s.get(ctx, groupID, setlistID)
	if err != nil {
		return nil, err
	}
	if !set.TimingEnabled() {
		return nil, ErrTimingDisabled
	}
	idx := set.SongIndex(songID)
	if idx < 0 {
		return nil, fmt.Errorf("song %s: %w", songID, store.ErrNotFound)
	}
	start := at
	set.Songs[idx].StartTime = &start
	timing.RecalculateFrom(set.Songs, idx+1, *set.ConcertDate)
	if err := s.save(ctx, set, ActionUpdated); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *SetlistService) get(ctx context.Context, groupID, id string) (*domain.Setlist, error) {
	set, err := s.store.Setlists.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get setlist: %w", err)
	}
	if set.GroupID != groupID {
		return nil, fmt.Errorf("setlist %s: %w", id, store.ErrNotFound)
	}
	return set, nil
}

func (s *SetlistService) save(ctx context.Context, set *domain.Setlist, action string) error {
	set.UpdatedAt = time.Now().UTC()
	if err := s.store.Setlists.Save(ctx, set.ID, set); err != nil {
		return fmt.Errorf("save setlist: %w", err)
	}
	s.hub.Publish(Event{GroupID: set.GroupID, Kind: KindSetlist, Action: action, EntityID: set.ID})
	return nil
}

func newSong(in SongInput) (domain.Song, error) {
	if in.Title == "" {
		return domain.Song{}, fmt.Errorf("%w: song title is required", ErrInvalidInput)
	}
	if in.DurationMin < 0 || in.DurationSec < 0 || in.DurationSec > 59 {
		return domain.Song{}, fmt.Errorf("%w: song duration is out of range", ErrInvalidInput)
	}
	return domain.Song{
		ID:          uuid.New().String(),
		Title:       in.Title,
		DurationMin: in.DurationMin,
		DurationSec: in.DurationSec,
		BPM:         in.BPM,
		Key:         in.Key,
	}, nil
}

// reflowFrom recomputes start times from index on, but only for
// setlists that are timed and already scheduled.
func reflowFrom(set *domain.Setlist, index int) {
	if !set.TimingEnabled() || len(set.Songs) == 0 || set.Songs[0].StartTime == nil {
		return
	}
	timing.RecalculateFrom(set.Songs, index, *set.ConcertDate)
}
