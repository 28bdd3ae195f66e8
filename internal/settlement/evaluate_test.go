package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/wager"
)

func finishedGame(home, away int) *catalog.Game {
	return &catalog.Game{
		ExternalID: "odds-1",
		HomeTeam:   "Lakers",
		AwayTeam:   "Celtics",
		Status:     catalog.StatusFinished,
		HomeScore:  home,
		AwayScore:  away,
	}
}

func TestEvaluateMoneyline(t *testing.T) {
	cases := []struct {
		name      string
		home      int
		away      int
		selection string
		want      Outcome
	}{
		{"home win", 110, 102, wager.PickHome, Won},
		{"home loss", 98, 102, wager.PickHome, Lost},
		{"away win", 98, 102, wager.PickAway, Won},
		{"away loss", 110, 102, wager.PickAway, Lost},
		{"tie pushes", 100, 100, wager.PickHome, Pushed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &wager.Wager{BetType: wager.Moneyline, Selection: tc.selection}
			got, err := Evaluate(w, finishedGame(tc.home, tc.away))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateSpread(t *testing.T) {
	cases := []struct {
		name      string
		home      int
		away      int
		selection string
		line      float64
		want      Outcome
	}{
		// favorito da casa -3.5: precisa vencer por 4+
		{"favorite covers", 110, 105, wager.PickHome, -3.5, Won},
		{"favorite wins but no cover", 108, 105, wager.PickHome, -3.5, Lost},
		// azarão visitante +3.5: cobre perdendo por até 3
		{"underdog covers losing", 108, 105, wager.PickAway, 3.5, Won},
		{"underdog blown out", 115, 105, wager.PickAway, 3.5, Lost},
		// linha inteira pode empatar exatamente: push
		{"whole line push", 108, 105, wager.PickHome, -3, Pushed},
		{"whole line push away", 108, 105, wager.PickAway, 3, Pushed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &wager.Wager{BetType: wager.Spread, Selection: tc.selection, LineAtPlacement: tc.line}
			got, err := Evaluate(w, finishedGame(tc.home, tc.away))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateTotal(t *testing.T) {
	cases := []struct {
		name      string
		home      int
		away      int
		selection string
		line      float64
		want      Outcome
	}{
		{"over hits", 112, 109, wager.PickOver, 220.5, Won},
		{"over misses", 105, 100, wager.PickOver, 220.5, Lost},
		{"under hits", 105, 100, wager.PickUnder, 220.5, Won},
		{"under misses", 112, 109, wager.PickUnder, 220.5, Lost},
		{"exact line pushes over", 110, 110, wager.PickOver, 220, Pushed},
		{"exact line pushes under", 110, 110, wager.PickUnder, 220, Pushed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &wager.Wager{BetType: wager.Total, Selection: tc.selection, LineAtPlacement: tc.line}
			got, err := Evaluate(w, finishedGame(tc.home, tc.away))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateUnknownBetType(t *testing.T) {
	w := &wager.Wager{BetType: "parlay", Selection: wager.PickHome}
	_, err := Evaluate(w, finishedGame(100, 90))
	assert.Error(t, err)
}

func TestProfitCents(t *testing.T) {
	// $100 a +150 → lucro $150, payout $250
	assert.Equal(t, int64(15_000), ProfitCents(10_000, 150))
	assert.Equal(t, int64(25_000), PayoutCents(10_000, 150))

	// $100 a -200 → lucro $50, payout $150
	assert.Equal(t, int64(5_000), ProfitCents(10_000, -200))
	assert.Equal(t, int64(15_000), PayoutCents(10_000, -200))

	// truncamento inteiro: $0.01 a -110 → lucro 0
	assert.Equal(t, int64(0), ProfitCents(1, -110))

	// odd zerada → lucro zero
	assert.Equal(t, int64(0), ProfitCents(10_000, 0))
}
