package handlers

import (
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/stats"
)

// playerStatView decorates the exact fold result with the rounded display
// fields. Rounding happens here, at the presentation boundary, never in
// the aggregator.
type playerStatView struct {
	stats.PlayerStat

	TotalDisplay           string  `json:"totalDisplay"`
	WinRate                float64 `json:"winRate"`
	WinRatePct             int     `json:"winRatePct"`
	SelfDrawShareOfWins    float64 `json:"selfDrawShareOfWins"`
	SelfDrawShareOfWinsPct int     `json:"selfDrawShareOfWinsPct"`
	DealtInRate            float64 `json:"dealtInRate"`
	DealtInRatePct         int     `json:"dealtInRatePct"`
}

// StatsHandler folds the whole history into the lifetime leaderboard.
func StatsHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		players, err := s.Store.ListPlayers(ctx)
		if err != nil {
			s.Logger.Errorf("list players: %v", err)
			http.Error(w, "error loading history", http.StatusInternalServerError)
			return
		}
		sessions, err := s.Store.ListSessions(ctx)
		if err != nil {
			s.Logger.Errorf("list sessions: %v", err)
			http.Error(w, "error loading history", http.StatusInternalServerError)
			return
		}
		rounds, err := s.Store.ListRounds(ctx)
		if err != nil {
			s.Logger.Errorf("list rounds: %v", err)
			http.Error(w, "error loading history", http.StatusInternalServerError)
			return
		}

		folded := stats.Compute(players, rounds, sessions)
		views := make([]playerStatView, 0, len(folded))
		for _, st := range folded {
			views = append(views, playerStatView{
				PlayerStat:             st,
				TotalDisplay:           stats.FormatSigned(st.Total),
				WinRate:                st.WinRate(),
				WinRatePct:             stats.Percent(st.WinRate()),
				SelfDrawShareOfWins:    st.SelfDrawShareOfWins(),
				SelfDrawShareOfWinsPct: stats.Percent(st.SelfDrawShareOfWins()),
				DealtInRate:            st.DealtInRate(),
				DealtInRatePct:         stats.Percent(st.DealtInRate()),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}
