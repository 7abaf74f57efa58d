// Package reconcile merges provisional per-player stations into the
// canonical station and computes what changed between snapshots.
//
// Every merge works on a clone of canon and hands back the merged station;
// on error the caller's canon is untouched.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/dominotrain/internal/model"
)

// Engine performs station reconciliation
type Engine struct {
	logger *slog.Logger
}

// New creates a new reconciliation Engine
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// MergeGroupTurn folds every player's group-turn tracks into canon, players
// in the given order and tracks in their own order. Tracks a turn station
// inherited from canon are not copied again.
func (e *Engine) MergeGroupTurn(canon *model.Station, order []model.PlayerID, turnStations map[model.PlayerID]*model.Station) (*model.Station, error) {
	merged := canon.Clone()
	base := len(canon.Tracks)

	for _, playerID := range order {
		turn, ok := turnStations[playerID]
		if !ok {
			continue
		}
		if err := checkSameRound(canon, turn); err != nil {
			return nil, err
		}
		if len(turn.Tracks) < base {
			return nil, fmt.Errorf("%w: turn station of %s lost canonical tracks (%d < %d)",
				model.ErrInvariantViolation, playerID, len(turn.Tracks), base)
		}
		for i := base; i < len(turn.Tracks); i++ {
			merged.Tracks = append(merged.Tracks, turn.Tracks[i].Clone())
		}
	}

	if len(merged.Tracks) > model.MaxTracks {
		return nil, fmt.Errorf("%w: group merge produced %d tracks", model.ErrInvariantViolation, len(merged.Tracks))
	}

	e.logger.Debug("group turn merged",
		slog.Int("tracks_before", base),
		slog.Int("tracks_after", len(merged.Tracks)),
	)
	return merged, nil
}

// MergeIndividualTurn appends the acting player's provisional additions to
// canon: new tails on existing tracks, then any new tracks.
func (e *Engine) MergeIndividualTurn(canon, turn *model.Station) (*model.Station, error) {
	if err := checkSameRound(canon, turn); err != nil {
		return nil, err
	}
	if len(turn.Tracks) < len(canon.Tracks) {
		return nil, fmt.Errorf("%w: turn station has %d tracks, canon has %d",
			model.ErrInvariantViolation, len(turn.Tracks), len(canon.Tracks))
	}

	merged := canon.Clone()
	for i := range merged.Tracks {
		have := merged.Tracks[i].DominoIDs
		want := turn.Tracks[i].DominoIDs
		if len(want) < len(have) {
			return nil, fmt.Errorf("%w: track %d shrank from %d to %d",
				model.ErrInvariantViolation, i, len(have), len(want))
		}
		for j := range have {
			if have[j] != want[j] {
				return nil, fmt.Errorf("%w: track %d diverged at position %d", model.ErrInvariantViolation, i, j)
			}
		}
		merged.Tracks[i].DominoIDs = append(have, want[len(have):]...)
	}

	added := len(turn.Tracks) - len(canon.Tracks)
	if added > 1 {
		e.logger.Error("more than one track added in a single turn",
			slog.Int("tracks_added", added),
		)
	}
	for i := len(canon.Tracks); i < len(turn.Tracks); i++ {
		merged.Tracks = append(merged.Tracks, turn.Tracks[i].Clone())
	}

	if len(merged.Tracks) > model.MaxTracks {
		return nil, fmt.Errorf("%w: individual merge produced %d tracks", model.ErrInvariantViolation, len(merged.Tracks))
	}
	return merged, nil
}

// SyncAllTurnStationsFromCanon gives every player a fresh deep copy of canon
func (e *Engine) SyncAllTurnStationsFromCanon(canon *model.Station, players []model.PlayerID) map[model.PlayerID]*model.Station {
	turnStations := make(map[model.PlayerID]*model.Station, len(players))
	for _, playerID := range players {
		turnStations[playerID] = canon.Clone()
	}
	return turnStations
}

// DiffAgainstPriorSnapshot returns the ids placed between prior and next:
// every id of a track that is new, and the grown tail of every existing one.
// A track that vanished or shrank means the two views diverged.
func (e *Engine) DiffAgainstPriorSnapshot(prior, next *model.Station) ([]model.DominoID, error) {
	if len(next.Tracks) < len(prior.Tracks) {
		return nil, fmt.Errorf("%w: snapshot lost tracks (%d < %d)",
			model.ErrInvariantViolation, len(next.Tracks), len(prior.Tracks))
	}

	newIDs := []model.DominoID{}
	for i := range next.Tracks {
		ids := next.Tracks[i].DominoIDs
		if i >= len(prior.Tracks) {
			newIDs = append(newIDs, ids...)
			continue
		}
		suffix := len(ids) - len(prior.Tracks[i].DominoIDs)
		if suffix < 0 {
			return nil, fmt.Errorf("%w: negative suffix %d on track %d", model.ErrInvariantViolation, suffix, i)
		}
		newIDs = append(newIDs, ids[len(ids)-suffix:]...)
	}
	return newIDs, nil
}

func checkSameRound(canon, turn *model.Station) error {
	if turn.Engine != canon.Engine {
		return fmt.Errorf("%w: turn station rooted at %d, canon at %d",
			model.ErrInvariantViolation, turn.Engine, canon.Engine)
	}
	return nil
}
