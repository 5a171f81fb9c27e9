package tagcompat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

func TestNormalizeMultiTagEncoding(t *testing.T) {
	rec := models.RoundRecord{
		Tags: map[string][]string{
			"0": {"zimo", "pao"},
			"1": {},
		},
	}

	tags := Normalize(rec)
	assert.True(t, tags[0].Has(models.TagSelfDraw))
	assert.True(t, tags[0].Has(models.TagDealtIn))
	assert.Len(t, tags[0], 2)
	assert.Empty(t, tags[1])
	assert.Empty(t, tags[2], "seats absent from the map get the empty set")
	assert.Empty(t, tags[3])
}

func TestNormalizeLegacyScalarEncoding(t *testing.T) {
	rec := models.RoundRecord{
		Roles: map[string]string{
			"0": "zimo",
			"2": "pao",
			"3": "chicken", // unrecognized role lifts to the empty set
		},
	}

	tags := Normalize(rec)
	assert.Equal(t, models.TagSet{models.TagSelfDraw}, tags[0])
	assert.Empty(t, tags[1])
	assert.Equal(t, models.TagSet{models.TagDealtIn}, tags[2])
	assert.Empty(t, tags[3])
}

func TestNormalizePreTaggingEra(t *testing.T) {
	tags := Normalize(models.RoundRecord{})
	for seat, ts := range tags {
		assert.Empty(t, ts, "seat %d", seat)
		assert.NotNil(t, ts, "seat %d", seat)
	}
}

func TestMultiTagSupersedesScalar(t *testing.T) {
	rec := models.RoundRecord{
		Tags:  map[string][]string{"1": {"hu"}},
		Roles: map[string]string{"0": "zimo"},
	}

	tags := Normalize(rec)
	assert.Empty(t, tags[0], "scalar encoding ignored when tags present")
	assert.Equal(t, models.TagSet{models.TagDiscardWin}, tags[1])
}

func TestNormalizeTotalOnMalformedInput(t *testing.T) {
	rec := models.RoundRecord{
		Tags: map[string][]string{
			"-1":  {"zimo"},
			"9":   {"hu"},
			"two": {"pao"},
			"1":   {"zimo", "zimo", "nonsense"},
		},
	}

	tags := Normalize(rec)
	assert.Empty(t, tags[0])
	assert.Equal(t, models.TagSet{models.TagSelfDraw}, tags[1], "duplicates and unknown labels drop")
	assert.Empty(t, tags[2])
	assert.Empty(t, tags[3])
}
