package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Formato de wire do provider de odds (compatível com The Odds API v4).
// Os tipos são exportados porque o feed-simulator produz exatamente este payload.
type OddsAPIEvent struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []OddsAPIBookmaker `json:"bookmakers"`
}

type OddsAPIBookmaker struct {
	Key     string          `json:"key"`
	Title   string          `json:"title"`
	Markets []OddsAPIMarket `json:"markets"`
}

type OddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []OddsAPIOutcome `json:"outcomes"`
}

type OddsAPIOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"` // americano; float no wire, inteiro no modelo
	Point float64 `json:"point,omitempty"`
}

// OddsClient consome o feed de odds via polling HTTP.
type OddsClient struct {
	BaseURL string
	APIKey  string
	Retries int
	Log     *zap.Logger
	HTTP    *http.Client
}

func NewOddsClient(baseURL, apiKey string, timeout time.Duration, retries int, log *zap.Logger) *OddsClient {
	return &OddsClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Retries: retries,
		Log:     log,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Fetch busca a lista corrente de eventos cotados e normaliza para OddsRecord.
func (c *OddsClient) Fetch(ctx context.Context) ([]OddsRecord, error) {
	u := c.BaseURL + "?" + url.Values{
		"apiKey":     {c.APIKey},
		"regions":    {"us"},
		"markets":    {"h2h,spreads,totals"},
		"oddsFormat": {"american"},
	}.Encode()

	body, err := getWithRetry(ctx, c.HTTP, u, c.Retries)
	if err != nil {
		return nil, fmt.Errorf("fetch odds: %w", err)
	}

	var raw []OddsAPIEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode odds payload: %w", err)
	}

	records := make([]OddsRecord, 0, len(raw))
	for _, ev := range raw {
		records = append(records, normalizeOddsEvent(ev))
	}

	c.Log.Debug("odds feed fetched", zap.Int("events", len(records)))
	return records, nil
}

func normalizeOddsEvent(ev OddsAPIEvent) OddsRecord {
	rec := OddsRecord{
		ExternalID:   ev.ID,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		CommenceTime: ev.CommenceTime,
	}
	for _, bm := range ev.Bookmakers {
		b := Bookmaker{Key: bm.Key}
		for _, mk := range bm.Markets {
			m := Market{Key: mk.Key}
			for _, out := range mk.Outcomes {
				m.Outcomes = append(m.Outcomes, Outcome{
					Name:  out.Name,
					Price: int(math.Round(out.Price)),
					Point: out.Point,
				})
			}
			b.Markets = append(b.Markets, m)
		}
		rec.Bookmakers = append(rec.Bookmakers, b)
	}
	return rec
}
