package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/courtside/virtual-sportsbook/internal/wager"
)

// Get retorna a aposta ou nil quando não existe.
func (p *Postgres) Get(ctx context.Context, wagerID string) (*wager.Wager, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, bet_type, selection, odds_at_placement, line_at_placement,
		       stake_cents, payout_cents, status, placed_at, settled_at
		FROM wagers WHERE id=$1`, wagerID)

	w, err := scanWager(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

// FindByUser lista o histórico de apostas de um usuário, mais recentes primeiro.
func (p *Postgres) FindByUser(ctx context.Context, userID string) ([]*wager.Wager, error) {
	return p.queryWagers(ctx, `
		SELECT id, user_id, game_id, bet_type, selection, odds_at_placement, line_at_placement,
		       stake_cents, payout_cents, status, placed_at, settled_at
		FROM wagers WHERE user_id=$1 ORDER BY placed_at DESC`, userID)
}

// FindPendingByGame lista as apostas ainda pendentes de um jogo.
func (p *Postgres) FindPendingByGame(ctx context.Context, gameID string) ([]*wager.Wager, error) {
	return p.queryWagers(ctx, `
		SELECT id, user_id, game_id, bet_type, selection, odds_at_placement, line_at_placement,
		       stake_cents, payout_cents, status, placed_at, settled_at
		FROM wagers WHERE game_id=$1 AND status='pending' ORDER BY placed_at`, gameID)
}

// PlacePending grava débito do stake, contadores e a aposta nova numa única
// transação. A linha do usuário é travada com FOR UPDATE; saldo insuficiente
// aborta tudo sem mutação parcial.
func (p *Postgres) PlacePending(ctx context.Context, w *wager.Wager) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	balance, err := lockUser(ctx, tx, w.UserID)
	if err != nil {
		return err
	}
	if balance < w.StakeCents {
		return wager.ErrInsufficientBalance
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE users SET
		  balance_cents      = balance_cents - $1,
		  wagers_placed      = wagers_placed + 1,
		  total_staked_cents = total_staked_cents + $1
		WHERE id=$2`, w.StakeCents, w.UserID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wagers
		  (id, user_id, game_id, bet_type, selection, odds_at_placement, line_at_placement, stake_cents, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'pending',$9)`,
		w.ID, w.UserID, w.GameID, string(w.BetType), w.Selection,
		w.OddsAtPlacement, w.LineAtPlacement, w.StakeCents, w.PlacedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Cancel estorna o stake e decrementa os contadores sse a aposta ainda está
// pendente. O UPDATE condicional em status='pending' é a mesma fronteira de
// serialização usada pela liquidação: só uma transição terminal vence.
func (p *Postgres) Cancel(ctx context.Context, wagerID string, at time.Time) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	w, stillPending, err := lockPendingWager(ctx, tx, wagerID)
	if err != nil {
		return false, err
	}
	if !stillPending {
		return false, tx.Commit()
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wagers SET status='cancelled', settled_at=$1 WHERE id=$2`, at, wagerID); err != nil {
		return false, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE users SET
		  balance_cents      = balance_cents + $1,
		  wagers_placed      = wagers_placed - 1,
		  total_staked_cents = total_staked_cents - $1
		WHERE id=$2`, w.StakeCents, w.UserID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// SettleWin marca a aposta como ganha e credita o payout na mesma transação.
// applied=false quando a aposta já não estava pendente (execução concorrente).
func (p *Postgres) SettleWin(ctx context.Context, wagerID string, payoutCents int64) (bool, error) {
	return p.settle(ctx, wagerID, string(wager.StatusWon), func(*wager.Wager) int64 { return payoutCents }, func(tx *sql.Tx, w *wager.Wager) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE users SET
			  balance_cents        = balance_cents + $1,
			  wagers_won           = wagers_won + 1,
			  total_returned_cents = total_returned_cents + $1
			WHERE id=$2`, payoutCents, w.UserID)
		return err
	})
}

// SettleLoss marca a aposta como perdida; o stake já foi debitado no registro.
func (p *Postgres) SettleLoss(ctx context.Context, wagerID string) (bool, error) {
	return p.settle(ctx, wagerID, string(wager.StatusLost), func(*wager.Wager) int64 { return 0 }, func(tx *sql.Tx, w *wager.Wager) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE users SET wagers_lost = wagers_lost + 1 WHERE id=$1`, w.UserID)
		return err
	})
}

// SettlePush devolve o stake integral sem mexer nos contadores de vitória/derrota.
func (p *Postgres) SettlePush(ctx context.Context, wagerID string) (bool, error) {
	return p.settle(ctx, wagerID, string(wager.StatusPushed), func(w *wager.Wager) int64 { return w.StakeCents }, func(tx *sql.Tx, w *wager.Wager) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE users SET
			  balance_cents        = balance_cents + $1,
			  total_returned_cents = total_returned_cents + $1
			WHERE id=$2`, w.StakeCents, w.UserID)
		return err
	})
}

// settle executa a transição terminal + mutação de saldo como unidade atômica.
func (p *Postgres) settle(ctx context.Context, wagerID, newStatus string, payoutFor func(*wager.Wager) int64, mutateUser func(*sql.Tx, *wager.Wager) error) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	w, stillPending, err := lockPendingWager(ctx, tx, wagerID)
	if err != nil {
		return false, err
	}
	if !stillPending {
		// já liquidada/cancelada por outra execução: no-op, não erro
		return false, tx.Commit()
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wagers SET status=$1, payout_cents=$2, settled_at=NOW() WHERE id=$3`,
		newStatus, payoutFor(w), wagerID); err != nil {
		return false, err
	}

	if err = mutateUser(tx, w); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// lockPendingWager trava a linha da aposta e reconfere o status dentro da
// transação. É a reconferência exigida pelo contrato de idempotência: a decisão
// de liquidar foi tomada sobre um snapshot; o commit só vale se nada mudou.
func lockPendingWager(ctx context.Context, tx *sql.Tx, wagerID string) (*wager.Wager, bool, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, bet_type, selection, odds_at_placement, line_at_placement,
		       stake_cents, payout_cents, status, placed_at, settled_at
		FROM wagers WHERE id=$1 FOR UPDATE`, wagerID)

	w, err := scanWager(row)
	if err == sql.ErrNoRows {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return w, w.Status == wager.StatusPending, nil
}

func (p *Postgres) queryWagers(ctx context.Context, q string, args ...any) ([]*wager.Wager, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*wager.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWager(r rowScanner) (*wager.Wager, error) {
	var (
		w         wager.Wager
		betType   string
		status    string
		settledAt sql.NullTime
	)
	if err := r.Scan(&w.ID, &w.UserID, &w.GameID, &betType, &w.Selection,
		&w.OddsAtPlacement, &w.LineAtPlacement, &w.StakeCents, &w.PayoutCents, &status,
		&w.PlacedAt, &settledAt); err != nil {
		return nil, err
	}
	w.BetType = wager.BetType(betType)
	w.Status = wager.Status(status)
	if settledAt.Valid {
		t := settledAt.Time
		w.SettledAt = &t
	}
	return &w, nil
}
