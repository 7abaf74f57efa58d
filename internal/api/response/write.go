package response

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// JSON writes a JSON response. Views are per player and change with every
// move, so nothing is cached.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// View writes one player's projection of a session
func View(w http.ResponseWriter, status int, view *game.PlayerView) {
	JSON(w, status, PlayerViewFromGame(view))
}

// Record writes a finished game
func Record(w http.ResponseWriter, record *model.GameRecord) {
	JSON(w, http.StatusOK, GameRecordFromModel(record))
}

// Records writes finished games, most recently completed first
func Records(w http.ResponseWriter, records []*model.GameRecord) {
	sorted := append([]*model.GameRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	resp := GameRecordList{Records: make([]GameRecord, len(sorted))}
	for i, record := range sorted {
		resp.Records[i] = GameRecordFromModel(record)
	}
	JSON(w, http.StatusOK, resp)
}

// NoContent writes a 204 for requests that leave nothing to show, such as leaving a session
func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
