package feed

import "time"

// Chaves de mercado do provider de odds.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// Códigos de status do provider de resultados.
const (
	StatusCodeScheduled  = 1
	StatusCodeInProgress = 2
	StatusCodeFinal      = 3
)

// OddsRecord é um evento normalizado do feed de odds. As cotações vêm em
// formato americano (inteiro assinado); Point carrega a linha de spread/total.
type OddsRecord struct {
	ExternalID   string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Bookmakers   []Bookmaker
}

type Bookmaker struct {
	Key     string
	Markets []Market
}

type Market struct {
	Key      string // h2h | spreads | totals
	Outcomes []Outcome
}

type Outcome struct {
	Name  string // nome do time, "Over" ou "Under"
	Price int
	Point float64
}

// ResultRecord é um placar normalizado do feed de resultados.
// O espaço de ids é do provider de resultados, disjunto do feed de odds.
type ResultRecord struct {
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	StatusCode int // 1: scheduled, 2: in progress, 3: finished
}
