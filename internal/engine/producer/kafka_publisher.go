package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do engine, um writer por tópico.
type KafkaPublisher struct {
	GameFinished *kafka.Writer
	WagerSettled *kafka.Writer
	ManualReview *kafka.Writer
}

func NewKafkaPublisher(gameFinished, wagerSettled, manualReview *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{
		GameFinished: gameFinished,
		WagerSettled: wagerSettled,
		ManualReview: manualReview,
	}
}

func (p *KafkaPublisher) PublishGameFinished(ctx context.Context, e events.GameFinished) error {
	return write(ctx, p.GameFinished, e.GameID, e)
}

func (p *KafkaPublisher) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	return write(ctx, p.WagerSettled, e.GameID, e)
}

func (p *KafkaPublisher) PublishManualReview(ctx context.Context, e events.ManualReviewFlagged) error {
	return write(ctx, p.ManualReview, e.GameID, e)
}

// write serializa e envia com o gameId como chave de partição, preservando a
// ordem dos eventos de um mesmo jogo.
func write(ctx context.Context, w *kafka.Writer, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
