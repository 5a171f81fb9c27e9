package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Tag is a per-seat outcome label. The wire values are the labels the club
// has always recorded; the constants give them readable names.
type Tag string

const (
	TagSelfDraw   Tag = "zimo" // winner drew the winning tile themself
	TagDiscardWin Tag = "hu"   // winner claimed another seat's discard
	TagDealtIn    Tag = "pao"  // this seat's discard fed the win
)

// KnownTags lists every label the model recognizes, in display order.
var KnownTags = []Tag{TagSelfDraw, TagDiscardWin, TagDealtIn}

// TagSet is the set of outcome labels a single seat holds in one round. A
// seat may hold zero, one, or several labels; no exclusivity is enforced.
type TagSet []Tag

// Has reports whether the set contains t.
func (s TagSet) Has(t Tag) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// Add returns the set with t included, without duplicating it.
func (s TagSet) Add(t Tag) TagSet {
	if s.Has(t) {
		return s
	}
	return append(s, t)
}

// Round is a fully validated scored hand, ready to commit. Scores are
// positionally aligned to the owning session's PlayerIDs.
type Round struct {
	ID        RoundID          `json:"id"`
	SessionID SessionID        `json:"sessionId"`
	Scores    [NumSeats]int    `json:"scores"`
	Tags      [NumSeats]TagSet `json:"tags"`
	Timestamp time.Time        `json:"timestamp"`
}

// RoundRecord is a round as read back from storage. Historical records
// predate the current schema: scores may be stored as strings, and the
// outcome labels may use any of three encodings (absent, scalar Roles,
// multi-tag Tags). Interpret the label fields through tagcompat only, and
// never interpret the record without its owning session's roster.
type RoundRecord struct {
	ID        RoundID   `json:"id"`
	SessionID SessionID `json:"sessionId"`

	// Scores is positionally aligned to the session roster. Values decode
	// as json numbers or, in old records, strings.
	Scores []any `json:"scores"`

	// Tags is the current multi-tag encoding, keyed by seat index. When
	// present it is authoritative.
	Tags map[string][]string `json:"tags,omitempty"`

	// Roles is the legacy single-label encoding, keyed by seat index.
	Roles map[string]string `json:"roles,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// SeatScore returns the seat's score as an integer. Anything unparsable
// degrades to 0; historical data must remain viewable, never fatal.
func (r RoundRecord) SeatScore(seat int) int {
	if seat < 0 || seat >= len(r.Scores) {
		return 0
	}
	switch v := r.Scores[seat].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Record converts a committed round into its storage shape.
func (r Round) Record() RoundRecord {
	scores := make([]any, NumSeats)
	tags := make(map[string][]string, NumSeats)
	for i := 0; i < NumSeats; i++ {
		scores[i] = r.Scores[i]
		labels := make([]string, 0, len(r.Tags[i]))
		for _, t := range r.Tags[i] {
			labels = append(labels, string(t))
		}
		tags[strconv.Itoa(i)] = labels
	}
	return RoundRecord{
		ID:        r.ID,
		SessionID: r.SessionID,
		Scores:    scores,
		Tags:      tags,
		Timestamp: r.Timestamp,
	}
}
