// Package tagcompat normalizes the three historical encodings of per-seat
// outcome labels into canonical tag sets.
//
// Round records have carried labels three ways over time: not at all
// (pre-tagging era), as a single scalar role per seat, and as a set of tags
// per seat. Everything downstream of storage resolves labels through
// Normalize exactly once; nothing else re-interprets the raw fields.
package tagcompat

import (
	"strconv"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// Normalize resolves a record's outcome labels into one canonical tag set
// per seat. The multi-tag encoding, when present, is authoritative and
// supersedes the scalar one. Unrecognized labels and malformed seat keys
// degrade to "no labels known"; Normalize never fails.
func Normalize(rec models.RoundRecord) [models.NumSeats]models.TagSet {
	var out [models.NumSeats]models.TagSet
	for i := range out {
		out[i] = models.TagSet{}
	}

	switch {
	case rec.Tags != nil:
		for key, labels := range rec.Tags {
			seat, ok := seatIndex(key)
			if !ok {
				continue
			}
			for _, label := range labels {
				if t, ok := knownTag(label); ok {
					out[seat] = out[seat].Add(t)
				}
			}
		}
	case rec.Roles != nil:
		for key, label := range rec.Roles {
			seat, ok := seatIndex(key)
			if !ok {
				continue
			}
			if t, ok := knownTag(label); ok {
				out[seat] = out[seat].Add(t)
			}
		}
	}

	return out
}

func seatIndex(key string) (int, bool) {
	seat, err := strconv.Atoi(key)
	if err != nil || seat < 0 || seat >= models.NumSeats {
		return 0, false
	}
	return seat, true
}

func knownTag(label string) (models.Tag, bool) {
	for _, t := range models.KnownTags {
		if string(t) == label {
			return t, true
		}
	}
	return "", false
}
