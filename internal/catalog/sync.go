package catalog

import (
	"time"

	"github.com/courtside/virtual-sportsbook/internal/feed"
)

// ApplyOdds mescla um registro do feed de odds num jogo já resolvido pelo matcher.
// Retorna true se algum valor de mercado mudou de fato; LastUpdated só avança
// nesse caso.
//
// A cotação canônica vem do primeiro bookmaker reportado na rodada — seleção
// determinística, sem média, pra que odds congeladas em apostas já feitas
// continuem reproduzíveis e auditáveis. A mescla é por mercado: um mercado que
// o bookmaker parou de cotar mantém a última linha conhecida em vez de zerar.
//
// Jogos já encerrados não são tocados: odds históricas não mudam retroativamente.
func ApplyOdds(g *Game, rec feed.OddsRecord, now time.Time) bool {
	if g.Terminal() {
		return false
	}
	if len(rec.Bookmakers) == 0 {
		return false
	}

	quote := mergeQuote(g.Odds, rec, rec.Bookmakers[0])
	if quote == g.Odds {
		return false
	}

	g.Odds = quote
	g.LastUpdated = now
	return true
}

// mergeQuote aplica sobre a cotação anterior os mercados presentes no
// bookmaker; cada mercado cotado é substituído por inteiro, os ausentes
// ficam como estavam. Outcomes são casados com home/away pelo nome
// normalizado do time.
func mergeQuote(prev Odds, rec feed.OddsRecord, bm feed.Bookmaker) Odds {
	home := NormalizeTeam(rec.HomeTeam)
	away := NormalizeTeam(rec.AwayTeam)

	q := prev
	for _, mk := range bm.Markets {
		switch mk.Key {
		case feed.MarketH2H:
			var ml Moneyline
			for _, out := range mk.Outcomes {
				switch NormalizeTeam(out.Name) {
				case home:
					ml.Home = out.Price
				case away:
					ml.Away = out.Price
				}
			}
			q.Moneyline = ml
		case feed.MarketSpreads:
			var sp Spread
			for _, out := range mk.Outcomes {
				switch NormalizeTeam(out.Name) {
				case home:
					sp.Home = out.Point
					sp.HomeOdds = out.Price
				case away:
					sp.Away = out.Point
					sp.AwayOdds = out.Price
				}
			}
			q.Spread = sp
		case feed.MarketTotals:
			var tt Total
			for _, out := range mk.Outcomes {
				switch out.Name {
				case "Over":
					tt.Over = out.Point
					tt.OverOdds = out.Price
				case "Under":
					tt.Under = out.Point
					tt.UnderOdds = out.Price
				}
			}
			q.Total = tt
		}
	}
	return q
}
