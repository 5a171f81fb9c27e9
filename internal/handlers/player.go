package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

type playerRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// CreatePlayerHandler adds a member to the roster.
func CreatePlayerHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := EnsureGuest(w, r); err != nil {
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		p := models.Player{Name: req.Name, Avatar: strings.TrimSpace(req.Avatar)}
		if err := s.Store.CreatePlayer(r.Context(), &p); err != nil {
			s.Logger.Errorf("create player: %v", err)
			http.Error(w, "error creating player", http.StatusInternalServerError)
			return
		}

		s.changed(r.Context(), "players")
		writeJSON(w, http.StatusCreated, p)
	}
}

// UpdatePlayerHandler edits a member's display name and avatar. Identity is
// never editable.
func UpdatePlayerHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		id, err := models.ParsePlayerID(req.ID)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		if err := s.Store.UpdatePlayer(r.Context(), id, req.Name, strings.TrimSpace(req.Avatar)); err != nil {
			s.Logger.Errorf("update player %s: %v", id, err)
			http.Error(w, "error updating player", http.StatusInternalServerError)
			return
		}

		s.changed(r.Context(), "players")
		w.WriteHeader(http.StatusOK)
	}
}

// ListPlayersHandler returns the roster in join order.
func ListPlayersHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers(r.Context())
		if err != nil {
			s.Logger.Errorf("list players: %v", err)
			http.Error(w, "error listing players", http.StatusInternalServerError)
			return
		}
		if players == nil {
			players = []models.Player{}
		}
		writeJSON(w, http.StatusOK, players)
	}
}
