package model

import "fmt"

// MaxTracks is the number of tracks a station can hold
const MaxTracks = 8

// Track is one branch of the chain leading away from the engine
type Track struct {
	DominoIDs []DominoID
	Owner     *PlayerID // nil while the track is open to anyone
	Public    bool      // set by the public track policy, never cleared within a round
}

// Len returns the number of dominoes on the track
func (t *Track) Len() int {
	return len(t.DominoIDs)
}

// Tail returns the domino at the exposed end of the track
func (t *Track) Tail() (DominoID, bool) {
	if len(t.DominoIDs) == 0 {
		return 0, false
	}
	return t.DominoIDs[len(t.DominoIDs)-1], true
}

// OwnedBy returns true if the track belongs to the player
func (t *Track) OwnedBy(playerID PlayerID) bool {
	return t.Owner != nil && *t.Owner == playerID
}

// OpenTo returns true if the player may extend the track
func (t *Track) OpenTo(playerID PlayerID) bool {
	return t.Owner == nil || t.Public || *t.Owner == playerID
}

// Clone returns a deep copy of the track
func (t *Track) Clone() Track {
	clone := Track{
		DominoIDs: append([]DominoID(nil), t.DominoIDs...),
		Public:    t.Public,
	}
	if t.Owner != nil {
		owner := *t.Owner
		clone.Owner = &owner
	}
	return clone
}

// Station is the table state for a round: the engine and the tracks branching from it
type Station struct {
	Engine DominoID
	Tracks []Track
}

// NewStation creates an empty station rooted at the given engine
func NewStation(engine DominoID) *Station {
	return &Station{
		Engine: engine,
		Tracks: []Track{},
	}
}

// AddTrack starts a new track with the given domino and returns its index.
// Content legality is the caller's responsibility.
func (s *Station) AddTrack(dominoID DominoID, owner *PlayerID) int {
	track := Track{DominoIDs: []DominoID{dominoID}}
	if owner != nil {
		o := *owner
		track.Owner = &o
	}
	s.Tracks = append(s.Tracks, track)
	return len(s.Tracks) - 1
}

// AddToTrack appends a domino to the tail of the track at trackIndex
func (s *Station) AddToTrack(dominoID DominoID, trackIndex int) error {
	if err := s.checkIndex(trackIndex); err != nil {
		return err
	}
	s.Tracks[trackIndex].DominoIDs = append(s.Tracks[trackIndex].DominoIDs, dominoID)
	return nil
}

// RemoveTrailingDomino removes the domino if it is the tail of a track.
// A track left empty is deleted, which shifts the index of every later track.
func (s *Station) RemoveTrailingDomino(dominoID DominoID) bool {
	for i := range s.Tracks {
		tail, ok := s.Tracks[i].Tail()
		if !ok || tail != dominoID {
			continue
		}
		ids := s.Tracks[i].DominoIDs
		s.Tracks[i].DominoIDs = ids[:len(ids)-1]
		if len(s.Tracks[i].DominoIDs) == 0 {
			s.Tracks = append(s.Tracks[:i], s.Tracks[i+1:]...)
		}
		return true
	}
	return false
}

// FindTrackIndexByDomino returns the index of the track holding the domino
func (s *Station) FindTrackIndexByDomino(dominoID DominoID) (int, bool) {
	for i := range s.Tracks {
		for _, id := range s.Tracks[i].DominoIDs {
			if id == dominoID {
				return i, true
			}
		}
	}
	return -1, false
}

// FindTrackByOwner returns the index of the track owned by the player
func (s *Station) FindTrackByOwner(playerID PlayerID) (int, bool) {
	for i := range s.Tracks {
		if s.Tracks[i].OwnedBy(playerID) {
			return i, true
		}
	}
	return -1, false
}

// ExposedEndOf returns the tail domino of the track at trackIndex
func (s *Station) ExposedEndOf(trackIndex int) (DominoID, error) {
	if err := s.checkIndex(trackIndex); err != nil {
		return 0, err
	}
	tail, ok := s.Tracks[trackIndex].Tail()
	if !ok {
		return 0, fmt.Errorf("%w: track %d is empty", ErrInvariantViolation, trackIndex)
	}
	return tail, nil
}

// IsFull returns true if no more tracks can be started
func (s *Station) IsFull() bool {
	return len(s.Tracks) >= MaxTracks
}

// Contains returns true if the domino is the engine or sits on a track
func (s *Station) Contains(dominoID DominoID) bool {
	if dominoID == s.Engine {
		return true
	}
	_, ok := s.FindTrackIndexByDomino(dominoID)
	return ok
}

// DominoIDs returns every domino on the tracks in track order, excluding the engine
func (s *Station) DominoIDs() []DominoID {
	var ids []DominoID
	for i := range s.Tracks {
		ids = append(ids, s.Tracks[i].DominoIDs...)
	}
	return ids
}

// ChainLength counts every chain position including the engine at the root
func (s *Station) ChainLength() int {
	n := 1
	for i := range s.Tracks {
		n += s.Tracks[i].Len()
	}
	return n
}

// Clone returns a deep copy of the station
func (s *Station) Clone() *Station {
	clone := &Station{
		Engine: s.Engine,
		Tracks: make([]Track, len(s.Tracks)),
	}
	for i := range s.Tracks {
		clone.Tracks[i] = s.Tracks[i].Clone()
	}
	return clone
}

func (s *Station) checkIndex(trackIndex int) error {
	if trackIndex < 0 || trackIndex >= len(s.Tracks) {
		return fmt.Errorf("%w: track index %d out of range (%d tracks)", ErrInvariantViolation, trackIndex, len(s.Tracks))
	}
	return nil
}
