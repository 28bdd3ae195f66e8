package leaderboard

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// KeyProfit é o ZSET de lucro líquido acumulado por usuário, em centavos
const KeyProfit = "leaderboard:profit"

// Entry é uma posição do ranking
type Entry struct {
	UserID      string `json:"userId"`
	ProfitCents int64  `json:"profitCents"`
	Rank        int64  `json:"rank"` // 1-based
}

// RedisBoard encapsula o ranking de lucro no Redis
type RedisBoard struct {
	Client *redis.Client
}

func NewRedisBoard(c *redis.Client) *RedisBoard {
	return &RedisBoard{Client: c}
}

// IncrProfit soma (ou subtrai) o delta de lucro do usuário no ZSET
func (b *RedisBoard) IncrProfit(ctx context.Context, userID string, deltaCents int64) error {
	return b.Client.ZIncrBy(ctx, KeyProfit, float64(deltaCents), userID).Err()
}

// Top retorna as n primeiras posições do ranking, maior lucro primeiro
func (b *RedisBoard) Top(ctx context.Context, n int64) ([]Entry, error) {
	zs, err := b.Client.ZRevRangeWithScores(ctx, KeyProfit, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(zs))
	for i, z := range zs {
		out = append(out, Entry{
			UserID:      z.Member.(string),
			ProfitCents: int64(z.Score),
			Rank:        int64(i) + 1,
		})
	}
	return out, nil
}

// Rank retorna a posição do usuário; found=false quando nunca pontuou
func (b *RedisBoard) Rank(ctx context.Context, userID string) (Entry, bool, error) {
	rank, err := b.Client.ZRevRank(ctx, KeyProfit, userID).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	score, err := b.Client.ZScore(ctx, KeyProfit, userID).Result()
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{UserID: userID, ProfitCents: int64(score), Rank: rank + 1}, true, nil
}
