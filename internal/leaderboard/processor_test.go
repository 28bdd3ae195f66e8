package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

func TestProfitDelta(t *testing.T) {
	won := events.WagerSettled{Outcome: "won", StakeCents: 10_000, PayoutCents: 25_000}
	assert.Equal(t, int64(15_000), profitDelta(won))

	lost := events.WagerSettled{Outcome: "lost", StakeCents: 10_000, PayoutCents: 0}
	assert.Equal(t, int64(-10_000), profitDelta(lost))

	// push devolve o stake: lucro líquido zero, ranking intocado
	pushed := events.WagerSettled{Outcome: "pushed", StakeCents: 10_000, PayoutCents: 10_000}
	assert.Zero(t, profitDelta(pushed))

	unknown := events.WagerSettled{Outcome: "???", StakeCents: 10_000}
	assert.Zero(t, profitDelta(unknown))
}
