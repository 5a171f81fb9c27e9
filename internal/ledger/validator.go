package ledger

import (
	"strconv"
	"strings"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// ValidatedRound is a round payload that passed score parsing and is ready
// to commit: four integers positionally aligned to the session roster, and
// four per-seat tag sets.
type ValidatedRound struct {
	Scores [models.NumSeats]int
	Tags   [models.NumSeats]models.TagSet
}

// Sum is the arithmetic total of the four seat scores. Zero under the usual
// convention; a non-zero value triggers the confirmation gate at commit.
func (v ValidatedRound) Sum() int {
	sum := 0
	for _, s := range v.Scores {
		sum += s
	}
	return sum
}

// ValidateRound turns four raw user-entered score values and four candidate
// tag sets into a commit-ready payload. Empty or non-numeric entries parse
// to 0. Tag sets are carried as-is apart from deduplication: the model
// deliberately permits any label combination per seat, and does not enforce
// cross-seat consistency (two seats may both claim dealt-in).
func ValidateRound(rawScores [models.NumSeats]string, tags [models.NumSeats]models.TagSet) ValidatedRound {
	var v ValidatedRound
	for i, raw := range rawScores {
		v.Scores[i] = parseScore(raw)
	}
	for i, ts := range tags {
		dedup := models.TagSet{}
		for _, t := range ts {
			dedup = dedup.Add(t)
		}
		v.Tags[i] = dedup
	}
	return v
}

// parseScore mirrors the score entry widget: blank means 0, a lone sign is
// a half-typed value and also means 0, anything unparsable means 0.
func parseScore(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "+" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "+"))
	if err != nil {
		return 0
	}
	return n
}
