package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
)

// RedisOddsCache é o write-through de odds correntes: toda aplicação de odds
// no catálogo espelha o snapshot no Redis pra leitura barata pela API.
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisOddsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisOddsCache cria o cache com TTL configurável
func NewRedisOddsCache(c *redis.Client, ttl time.Duration) *RedisOddsCache {
	return &RedisOddsCache{Client: c, TTL: ttl}
}

// key gera a chave Redis para as odds atuais de um jogo
func key(gameID string) string { return "odds:current:" + gameID }

// Snapshot é o payload gravado no cache
type Snapshot struct {
	GameID      string       `json:"gameId"`
	HomeTeam    string       `json:"homeTeam"`
	AwayTeam    string       `json:"awayTeam"`
	Odds        catalog.Odds `json:"odds"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// SetCurrent armazena o snapshot de odds do jogo com TTL definido
func (r *RedisOddsCache) SetCurrent(ctx context.Context, g *catalog.Game) error {
	b, err := json.Marshal(Snapshot{
		GameID:      g.ExternalID,
		HomeTeam:    g.HomeTeam,
		AwayTeam:    g.AwayTeam,
		Odds:        g.Odds,
		LastUpdated: g.LastUpdated,
	})
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(g.ExternalID), b, r.TTL).Err()
}

// GetCurrent lê o snapshot de odds do jogo; retorna nil sem erro no cache miss
func (r *RedisOddsCache) GetCurrent(ctx context.Context, gameID string) (*Snapshot, error) {
	b, err := r.Client.Get(ctx, key(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
