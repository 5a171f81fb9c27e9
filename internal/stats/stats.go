// Package stats folds the full round history into per-player lifetime
// records. The fold is pure and tolerant: historical data predates schema
// changes, so every anomaly degrades to skip-or-zero instead of aborting.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
	"github.com/gaolinyi828/mahjong-pro/internal/tagcompat"
)

// PlayerStat is one player's lifetime accumulator across all sessions.
type PlayerStat struct {
	Player models.Player `json:"player"`

	Total       int `json:"total"`
	Rounds      int `json:"rounds"`
	Wins        int `json:"wins"`        // rounds with a positive score
	SelfDraws   int `json:"selfDraws"`   // independent counters: a seat tagged
	DiscardWins int `json:"discardWins"` // both self-draw and discard-win
	DealtIns    int `json:"dealtIns"`    // increments both
	BestRound   int `json:"bestRound"`   // highest single-round score
}

// WinRate is wins over rounds played.
func (s PlayerStat) WinRate() float64 {
	return ratio(s.Wins, s.Rounds)
}

// SelfDrawShareOfWins is self-draws over all winning outcomes
// (self-draws + discard wins). Zero when the player has no wins.
func (s PlayerStat) SelfDrawShareOfWins() float64 {
	return ratio(s.SelfDraws, s.SelfDraws+s.DiscardWins)
}

// DealtInRate is dealt-in rounds over rounds played.
func (s PlayerStat) DealtInRate() float64 {
	return ratio(s.DealtIns, s.Rounds)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Compute folds every round, joined through its owning session's roster,
// into one PlayerStat per player who appeared in at least one round. The
// result is sorted by total descending; ties keep roster order.
//
// Anomalies never abort the fold: a round whose session is gone (orphan
// data) is skipped whole, a seat whose player is off the roster is skipped,
// and unparsable scores count as zero.
func Compute(players []models.Player, rounds []models.RoundRecord, sessions []models.Session) []PlayerStat {
	byPlayer := make(map[models.PlayerID]*PlayerStat, len(players))
	for _, p := range players {
		byPlayer[p.ID] = &PlayerStat{Player: p, BestRound: math.MinInt}
	}
	bySession := make(map[models.SessionID]*models.Session, len(sessions))
	for i := range sessions {
		bySession[sessions[i].ID] = &sessions[i]
	}

	for _, r := range rounds {
		session, ok := bySession[r.SessionID]
		if !ok {
			continue // orphan round, no resolvable roster
		}
		tags := tagcompat.Normalize(r)
		for seat := 0; seat < models.NumSeats; seat++ {
			st, ok := byPlayer[session.PlayerIDs[seat]]
			if !ok {
				continue
			}
			score := r.SeatScore(seat)
			st.Total += score
			st.Rounds++
			if score > 0 {
				st.Wins++
			}
			if score > st.BestRound {
				st.BestRound = score
			}
			if tags[seat].Has(models.TagSelfDraw) {
				st.SelfDraws++
			}
			if tags[seat].Has(models.TagDiscardWin) {
				st.DiscardWins++
			}
			if tags[seat].Has(models.TagDealtIn) {
				st.DealtIns++
			}
		}
	}

	out := make([]PlayerStat, 0, len(players))
	for _, p := range players {
		if st := byPlayer[p.ID]; st.Rounds > 0 {
			out = append(out, *st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// Percent rounds a rate to the nearest integer percent for display. The
// fold itself returns exact ratios; rounding stays at this boundary.
func Percent(rate float64) int {
	return int(math.Round(rate * 100))
}

// FormatSigned renders a score the way the scoreboard shows it: wins carry
// an explicit plus sign.
func FormatSigned(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}
