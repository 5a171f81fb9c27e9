package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

func TestParseScore(t *testing.T) {
	cases := map[string]int{
		"":     0,
		" ":    0,
		"-":    0, // half-typed sign toggle
		"+":    0,
		"50":   50,
		"+50":  50,
		"-20":  -20,
		" 7 ":  7,
		"abc":  0,
		"1.5":  0, // scores are whole points
		"10-5": 0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseScore(raw), "raw=%q", raw)
	}
}

func TestValidateRoundSums(t *testing.T) {
	var noTags [models.NumSeats]models.TagSet

	v := ValidateRound([4]string{"50", "-20", "-20", "-10"}, noTags)
	assert.Equal(t, [4]int{50, -20, -20, -10}, v.Scores)
	assert.Equal(t, 0, v.Sum())

	v = ValidateRound([4]string{"50", "-20", "-20", ""}, noTags)
	assert.Equal(t, [4]int{50, -20, -20, 0}, v.Scores)
	assert.Equal(t, 10, v.Sum(), "unbalanced round surfaces its sum")
}

func TestValidateRoundKeepsTagsAsEntered(t *testing.T) {
	var raw [models.NumSeats]string
	tags := [models.NumSeats]models.TagSet{
		{models.TagSelfDraw, models.TagDealtIn, models.TagSelfDraw},
		{models.TagDealtIn},
		{models.TagDealtIn}, // two seats claiming dealt-in is permitted
		nil,
	}

	v := ValidateRound(raw, tags)
	assert.Equal(t, models.TagSet{models.TagSelfDraw, models.TagDealtIn}, v.Tags[0], "duplicates collapse")
	assert.True(t, v.Tags[1].Has(models.TagDealtIn))
	assert.True(t, v.Tags[2].Has(models.TagDealtIn))
	assert.Empty(t, v.Tags[3])
}
