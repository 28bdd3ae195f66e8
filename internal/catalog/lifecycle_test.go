package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/virtual-sportsbook/internal/feed"
)

func scheduledGame() *Game {
	return &Game{
		ExternalID: "odds-1",
		HomeTeam:   "Lakers",
		AwayTeam:   "Celtics",
		StartTime:  day(10, 19),
		Status:     StatusScheduled,
	}
}

func TestAdvanceToInProgress(t *testing.T) {
	g := scheduledGame()
	now := day(10, 20)

	finished, changed := AdvanceFromResult(g, feed.ResultRecord{
		StatusCode: feed.StatusCodeInProgress, HomeScore: 54, AwayScore: 49,
	}, now)

	assert.False(t, finished)
	require.True(t, changed)
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, 54, g.HomeScore)
	assert.Equal(t, 49, g.AwayScore)
}

func TestAdvanceToFinishedFiresOnce(t *testing.T) {
	g := scheduledGame()
	now := day(10, 22)
	rec := feed.ResultRecord{StatusCode: feed.StatusCodeFinal, HomeScore: 110, AwayScore: 102}

	finished, changed := AdvanceFromResult(g, rec, now)
	require.True(t, finished)
	require.True(t, changed)
	assert.Equal(t, StatusFinished, g.Status)
	assert.False(t, g.Unconfirmed)

	// replay do mesmo resultado: jogo terminal nunca é tocado de novo
	finished, changed = AdvanceFromResult(g, rec, now.Add(time.Minute))
	assert.False(t, finished)
	assert.False(t, changed)
}

func TestFinalScoreNeverRewritten(t *testing.T) {
	g := scheduledGame()
	now := day(10, 22)
	AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeFinal, HomeScore: 110, AwayScore: 102}, now)

	AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeFinal, HomeScore: 999, AwayScore: 0}, now.Add(time.Hour))

	assert.Equal(t, 110, g.HomeScore)
	assert.Equal(t, 102, g.AwayScore)
}

func TestInProgressScoreStaysFresh(t *testing.T) {
	g := scheduledGame()
	AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeInProgress, HomeScore: 20, AwayScore: 18}, day(10, 20))

	_, changed := AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeInProgress, HomeScore: 55, AwayScore: 50}, day(10, 21))
	require.True(t, changed)
	assert.Equal(t, 55, g.HomeScore)

	// mesmo placar: nada muda
	_, changed = AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeInProgress, HomeScore: 55, AwayScore: 50}, day(10, 21))
	assert.False(t, changed)
}

func TestScheduledRecordIsNoop(t *testing.T) {
	g := scheduledGame()

	finished, changed := AdvanceFromResult(g, feed.ResultRecord{StatusCode: feed.StatusCodeScheduled}, day(10, 12))

	assert.False(t, finished)
	assert.False(t, changed)
	assert.Equal(t, StatusScheduled, g.Status)
}

func TestShouldForceFinishOnlyAfterGrace(t *testing.T) {
	g := scheduledGame() // início 19h do dia 10
	grace := 24 * time.Hour

	assert.False(t, ShouldForceFinish(g, day(10, 23), grace))
	assert.False(t, ShouldForceFinish(g, day(11, 19), grace)) // exatamente no limite
	assert.True(t, ShouldForceFinish(g, day(11, 20), grace))

	g.Status = StatusFinished
	assert.False(t, ShouldForceFinish(g, day(12, 20), grace))
}

func TestForceFinishMarksUnconfirmed(t *testing.T) {
	g := scheduledGame()
	g.Status = StatusInProgress

	require.True(t, ForceFinish(g, day(11, 20)))
	assert.Equal(t, StatusFinished, g.Status)
	assert.True(t, g.Unconfirmed)

	// já terminal: segunda chamada não aplica
	assert.False(t, ForceFinish(g, day(11, 21)))
}

func TestCanTransitionIsMonotonic(t *testing.T) {
	assert.True(t, CanTransition(StatusScheduled, StatusInProgress))
	assert.True(t, CanTransition(StatusScheduled, StatusFinished))
	assert.True(t, CanTransition(StatusScheduled, StatusCancelled))
	assert.True(t, CanTransition(StatusInProgress, StatusFinished))

	assert.False(t, CanTransition(StatusInProgress, StatusScheduled))
	assert.False(t, CanTransition(StatusInProgress, StatusCancelled))
	assert.False(t, CanTransition(StatusFinished, StatusInProgress))
	assert.False(t, CanTransition(StatusCancelled, StatusScheduled))
}
