package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

func testPlayers(n int) []models.Player {
	names := []string{"A", "B", "C", "D", "E", "F"}
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{ID: models.NewPlayerID(), Name: names[i], JoinedAt: time.Now()}
	}
	return players
}

func sessionFor(players []models.Player) models.Session {
	s := models.Session{ID: models.NewSessionID()}
	for i := 0; i < models.NumSeats && i < len(players); i++ {
		s.PlayerIDs[i] = players[i].ID
	}
	return s
}

func record(sessionID models.SessionID, scores ...any) models.RoundRecord {
	return models.RoundRecord{
		ID:        models.NewRoundID(),
		SessionID: sessionID,
		Scores:    scores,
		Timestamp: time.Now(),
	}
}

func TestComputeBasicFold(t *testing.T) {
	players := testPlayers(2)
	session := sessionFor(players)

	rounds := []models.RoundRecord{
		record(session.ID, 10, -10),
		record(session.ID, -5, 5),
	}

	out := Compute(players, rounds, []models.Session{session})
	require.Len(t, out, 2)

	a, b := out[0], out[1]
	assert.Equal(t, "A", a.Player.Name, "sorted by total descending")
	assert.Equal(t, 5, a.Total)
	assert.Equal(t, 2, a.Rounds)
	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, 10, a.BestRound)

	assert.Equal(t, "B", b.Player.Name)
	assert.Equal(t, -5, b.Total)
	assert.Equal(t, 2, b.Rounds)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 5, b.BestRound)
}

func TestComputeSkipsOrphanRounds(t *testing.T) {
	players := testPlayers(4)
	session := sessionFor(players)

	rounds := []models.RoundRecord{
		record(session.ID, 10, -10, 0, 0),
		// Session deleted but its rounds left behind (partial batch
		// failure). The orphan contributes nothing; the fold must not crash.
		record(models.NewSessionID(), 100, -100, 0, 0),
	}

	out := Compute(players, rounds, []models.Session{session})
	require.Len(t, out, 4)
	for _, st := range out {
		assert.Equal(t, 1, st.Rounds, "orphan round invisible to %s", st.Player.Name)
	}
	assert.Equal(t, 10, out[0].Total)
}

func TestComputeSkipsUnknownPlayers(t *testing.T) {
	players := testPlayers(4)
	session := sessionFor(players)

	// Seat 3's player has been removed from the roster snapshot.
	known := players[:3]
	rounds := []models.RoundRecord{record(session.ID, 1, 2, 3, -6)}

	out := Compute(known, rounds, []models.Session{session})
	require.Len(t, out, 3)
	for _, st := range out {
		assert.NotEqual(t, players[3].ID, st.Player.ID)
	}
}

func TestComputeNormalizesLegacyScores(t *testing.T) {
	players := testPlayers(4)
	session := sessionFor(players)

	// Old records stored scores as strings, some garbage.
	rounds := []models.RoundRecord{record(session.ID, "25", "-25", "garbage", nil)}

	out := Compute(players, rounds, []models.Session{session})
	require.Len(t, out, 4)
	assert.Equal(t, 25, out[0].Total)
	total := 0
	for _, st := range out {
		total += st.Total
	}
	assert.Equal(t, 0, total, "garbage and missing scores count as zero")
}

func TestComputeCountsTagsIndependently(t *testing.T) {
	players := testPlayers(4)
	session := sessionFor(players)

	r := record(session.ID, 30, -10, -10, -10)
	r.Tags = map[string][]string{
		"0": {"zimo", "hu"}, // both counters increment
		"1": {"pao"},
		"2": {"pao"}, // two dealt-in seats in one round is allowed
	}
	legacy := record(session.ID, 0, 20, -20, 0)
	legacy.Roles = map[string]string{"1": "zimo", "2": "pao"}

	out := Compute(players, []models.RoundRecord{r, legacy}, []models.Session{session})
	require.Len(t, out, 4)

	byName := map[string]PlayerStat{}
	for _, st := range out {
		byName[st.Player.Name] = st
	}
	assert.Equal(t, 1, byName["A"].SelfDraws)
	assert.Equal(t, 1, byName["A"].DiscardWins)
	assert.Equal(t, 1, byName["B"].SelfDraws)
	assert.Equal(t, 1, byName["B"].DealtIns)
	assert.Equal(t, 2, byName["C"].DealtIns)
}

func TestComputeDropsPlayersWithNoRounds(t *testing.T) {
	players := testPlayers(5)
	session := sessionFor(players) // seats players 0..3; player E never sat

	out := Compute(players, []models.RoundRecord{record(session.ID, 0, 0, 0, 0)}, []models.Session{session})
	require.Len(t, out, 4)
	for _, st := range out {
		assert.NotEqual(t, "E", st.Player.Name)
	}
}

func TestComputeTieKeepsRosterOrder(t *testing.T) {
	players := testPlayers(4)
	session := sessionFor(players)

	out := Compute(players, []models.RoundRecord{record(session.ID, 0, 0, 0, 0)}, []models.Session{session})
	require.Len(t, out, 4)
	for i, st := range out {
		assert.Equal(t, players[i].Name, st.Player.Name, "stable tie at rank %d", i)
	}
}

func TestRates(t *testing.T) {
	st := PlayerStat{Rounds: 3, Wins: 1, SelfDraws: 1, DiscardWins: 2, DealtIns: 2}
	assert.InDelta(t, 1.0/3.0, st.WinRate(), 1e-9)
	assert.InDelta(t, 1.0/3.0, st.SelfDrawShareOfWins(), 1e-9)
	assert.InDelta(t, 2.0/3.0, st.DealtInRate(), 1e-9)

	empty := PlayerStat{}
	assert.Zero(t, empty.WinRate())
	assert.Zero(t, empty.SelfDrawShareOfWins(), "0/0 is 0, not NaN")
	assert.Zero(t, empty.DealtInRate())
}

func TestPercentAndFormat(t *testing.T) {
	assert.Equal(t, 33, Percent(1.0/3.0))
	assert.Equal(t, 67, Percent(2.0/3.0))
	assert.Equal(t, 50, Percent(0.5))
	assert.Equal(t, 0, Percent(0))

	assert.Equal(t, "+5", FormatSigned(5))
	assert.Equal(t, "-5", FormatSigned(-5))
	assert.Equal(t, "0", FormatSigned(0))
}
