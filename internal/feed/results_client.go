package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Formato de wire do provider de resultados: scoreboard consultado por data.
// Exportado pelo mesmo motivo dos tipos de odds: o feed-simulator serve este payload.
type ScoreboardResponse struct {
	Date  string           `json:"date"` // YYYYMMDD
	Games []ScoreboardGame `json:"games"`
}

type ScoreboardGame struct {
	GameID    string `json:"gameId"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	StatusNum int    `json:"statusNum"` // 1: scheduled, 2: in progress, 3: finished
}

// ResultsClient consome o feed de resultados, uma consulta por data.
type ResultsClient struct {
	BaseURL string
	Retries int
	Log     *zap.Logger
	HTTP    *http.Client
}

func NewResultsClient(baseURL string, timeout time.Duration, retries int, log *zap.Logger) *ResultsClient {
	return &ResultsClient{
		BaseURL: baseURL,
		Retries: retries,
		Log:     log,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Fetch busca o scoreboard da data informada e normaliza para ResultRecord.
// O id do record vem prefixado com "res-" pra deixar explícito que o espaço de
// identificadores é do provider de resultados.
func (c *ResultsClient) Fetch(ctx context.Context, date time.Time) ([]ResultRecord, error) {
	u := fmt.Sprintf("%s/%s/scoreboard.json", c.BaseURL, date.UTC().Format("20060102"))

	body, err := getWithRetry(ctx, c.HTTP, u, c.Retries)
	if err != nil {
		return nil, fmt.Errorf("fetch results %s: %w", date.UTC().Format("20060102"), err)
	}

	var raw ScoreboardResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode scoreboard payload: %w", err)
	}

	records := make([]ResultRecord, 0, len(raw.Games))
	for _, g := range raw.Games {
		records = append(records, ResultRecord{
			ExternalID: "res-" + g.GameID,
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			HomeScore:  g.HomeScore,
			AwayScore:  g.AwayScore,
			StatusCode: g.StatusNum,
		})
	}

	c.Log.Debug("results feed fetched",
		zap.String("date", date.UTC().Format("20060102")),
		zap.Int("games", len(records)),
	)
	return records, nil
}
