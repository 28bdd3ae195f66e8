package wager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrGameNotOpen         = errors.New("game not open for wagers")
	ErrInvalidStake        = errors.New("stake must be positive")
	ErrInvalidSelection    = errors.New("invalid selection for bet type")
	ErrOddsUnavailable     = errors.New("odds not quoted for this market")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWagerNotFound       = errors.New("wager not found")
	ErrNotCancellable      = errors.New("wager not cancellable")
)

// GameStore é a visão de catálogo usada no registro e no cancelamento.
type GameStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*catalog.Game, error)
}

// Store persiste apostas. Débito/estorno de saldo e contadores do usuário
// acontecem na mesma unidade atômica da mutação da aposta.
type Store interface {
	Get(ctx context.Context, wagerID string) (*Wager, error)
	FindByUser(ctx context.Context, userID string) ([]*Wager, error)
	// PlacePending debita o stake, incrementa contadores e insere a aposta
	// numa única transação; qualquer falha desfaz o débito.
	PlacePending(ctx context.Context, w *Wager) error
	// Cancel devolve o stake e decrementa contadores sse a aposta ainda está
	// pendente; applied=false quando a liquidação chegou antes.
	Cancel(ctx context.Context, wagerID string, at time.Time) (applied bool, err error)
}

// PlaceRequest é o pedido de registro vindo da camada de aplicação.
type PlaceRequest struct {
	UserID     string
	GameID     string
	BetType    BetType
	Selection  string
	StakeCents int64
}

// Service implementa registro e cancelamento de apostas.
type Service struct {
	Log   *zap.Logger
	Games GameStore
	Store Store
	Now   func() time.Time // opcional; default time.Now
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Place valida o pedido contra um snapshot do jogo, congela odds e linha do
// mercado escolhido e grava débito + aposta atomicamente. Apostas só são
// aceitas com o jogo scheduled e antes do horário de início.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Wager, error) {
	if req.StakeCents <= 0 {
		return nil, ErrInvalidStake
	}
	if !ValidSelection(req.BetType, req.Selection) {
		return nil, ErrInvalidSelection
	}

	g, err := s.Games.FindByExternalID(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	if g == nil {
		return nil, ErrGameNotFound
	}

	now := s.now()
	if !g.OpenForWagers(now) {
		return nil, ErrGameNotOpen
	}

	odds, line, err := freezeQuote(g, req.BetType, req.Selection)
	if err != nil {
		return nil, err
	}

	w := &Wager{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		GameID:          req.GameID,
		BetType:         req.BetType,
		Selection:       req.Selection,
		OddsAtPlacement: odds,
		LineAtPlacement: line,
		StakeCents:      req.StakeCents,
		Status:          StatusPending,
		PlacedAt:        now,
	}

	if err := s.Store.PlacePending(ctx, w); err != nil {
		return nil, err
	}

	s.Log.Info("wager placed",
		zap.String("wagerId", w.ID),
		zap.String("userId", w.UserID),
		zap.String("gameId", w.GameID),
		zap.String("betType", string(w.BetType)),
		zap.String("selection", w.Selection),
		zap.Int64("stakeCents", w.StakeCents),
		zap.Int("odds", w.OddsAtPlacement),
	)
	return w, nil
}

// Cancel desfaz uma aposta pendente antes do início do jogo: estorno integral
// e decremento dos contadores. Cancelamento e liquidação disputam a mesma
// transição de status; quem chegar depois recebe falha determinística sem
// mudança de estado.
func (s *Service) Cancel(ctx context.Context, wagerID string) error {
	w, err := s.Store.Get(ctx, wagerID)
	if err != nil {
		return fmt.Errorf("load wager: %w", err)
	}
	if w == nil {
		return ErrWagerNotFound
	}
	if w.Status != StatusPending {
		return ErrNotCancellable
	}

	g, err := s.Games.FindByExternalID(ctx, w.GameID)
	if err != nil {
		return fmt.Errorf("load game: %w", err)
	}
	if g == nil {
		return ErrGameNotFound
	}

	now := s.now()
	if g.Status != catalog.StatusScheduled || !now.Before(g.StartTime) {
		return ErrNotCancellable
	}

	applied, err := s.Store.Cancel(ctx, wagerID, now)
	if err != nil {
		return err
	}
	if !applied {
		// a liquidação venceu a corrida entre o snapshot e o commit
		return ErrNotCancellable
	}

	s.Log.Info("wager cancelled",
		zap.String("wagerId", wagerID),
		zap.String("userId", w.UserID),
		zap.Int64("refundCents", w.StakeCents),
	)
	return nil
}

// freezeQuote escolhe odds e linha do mercado no snapshot do jogo.
// Odd zerada significa mercado ainda não cotado pelo feed.
func freezeQuote(g *catalog.Game, bt BetType, selection string) (odds int, line float64, err error) {
	switch bt {
	case Moneyline:
		if selection == PickHome {
			odds = g.Odds.Moneyline.Home
		} else {
			odds = g.Odds.Moneyline.Away
		}
	case Spread:
		if selection == PickHome {
			odds, line = g.Odds.Spread.HomeOdds, g.Odds.Spread.Home
		} else {
			odds, line = g.Odds.Spread.AwayOdds, g.Odds.Spread.Away
		}
	case Total:
		if selection == PickOver {
			odds, line = g.Odds.Total.OverOdds, g.Odds.Total.Over
		} else {
			odds, line = g.Odds.Total.UnderOdds, g.Odds.Total.Under
		}
	}
	if odds == 0 {
		return 0, 0, ErrOddsUnavailable
	}
	return odds, line, nil
}
