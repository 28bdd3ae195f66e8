package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/virtual-sportsbook/internal/feed"
)

var slateNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func testSlate() *Slate {
	return NewSlate(42, func() time.Time { return slateNow })
}

func TestOddsEventsSkipFinishedGames(t *testing.T) {
	s := testSlate()

	evs := s.OddsEvents()

	// dois jogos do slate já terminaram: só os quatro restantes são cotados
	require.Len(t, evs, 4)
	for _, ev := range evs {
		assert.Equal(t, "basketball_nba", ev.SportKey)
		require.Len(t, ev.Bookmakers, 1)
		assert.Len(t, ev.Bookmakers[0].Markets, 3)
	}
}

func TestOddsEventsSpreadSidesMirror(t *testing.T) {
	s := testSlate()

	for _, ev := range s.OddsEvents() {
		for _, mk := range ev.Bookmakers[0].Markets {
			if mk.Key != feed.MarketSpreads {
				continue
			}
			require.Len(t, mk.Outcomes, 2)
			assert.Equal(t, mk.Outcomes[0].Point, -mk.Outcomes[1].Point)
		}
	}
}

func TestScoreboardStatusesFollowClock(t *testing.T) {
	s := testSlate()

	board := s.Scoreboard(slateNow)
	require.Len(t, board.Games, 6)

	counts := map[int]int{}
	for _, g := range board.Games {
		counts[g.StatusNum]++
		switch g.StatusNum {
		case feed.StatusCodeScheduled:
			assert.Zero(t, g.HomeScore)
			assert.Zero(t, g.AwayScore)
		case feed.StatusCodeFinal:
			assert.Positive(t, g.HomeScore)
		}
	}
	assert.Equal(t, 2, counts[feed.StatusCodeScheduled])
	assert.Equal(t, 2, counts[feed.StatusCodeInProgress])
	assert.Equal(t, 2, counts[feed.StatusCodeFinal])
}

func TestScoreboardOtherDayIsEmpty(t *testing.T) {
	s := testSlate()

	board := s.Scoreboard(slateNow.AddDate(0, 0, -3))
	assert.Empty(t, board.Games)
}

func TestLiveScoresOnlyInProgress(t *testing.T) {
	s := testSlate()

	live := s.LiveScores()
	require.Len(t, live, 2)
	for _, g := range live {
		assert.Equal(t, feed.StatusCodeInProgress, g.StatusNum)
	}
}

func TestFinalScoreIsStable(t *testing.T) {
	s := testSlate()

	first := s.Scoreboard(slateNow)
	second := s.Scoreboard(slateNow)

	// placar final não flutua entre consultas
	for i, g := range first.Games {
		if g.StatusNum == feed.StatusCodeFinal {
			assert.Equal(t, g.HomeScore, second.Games[i].HomeScore)
			assert.Equal(t, g.AwayScore, second.Games[i].AwayScore)
		}
	}
}
