package store

import (
	"context"
	"database/sql"
)

// GetOrCreateUser retorna a entrada do ledger do usuário, criando com o saldo
// inicial no primeiro contato.
func (p *Postgres) GetOrCreateUser(ctx context.Context, userID string) (*User, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx, `
		SELECT id, balance_cents, wagers_placed, wagers_won, wagers_lost, total_staked_cents, total_returned_cents
		FROM users WHERE id=$1`, userID))
	if err == sql.ErrNoRows {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO users (id, balance_cents) VALUES ($1,$2)`,
			userID, StartingBalanceCents); err != nil {
			return nil, err
		}
		u = &User{ID: userID, BalanceCents: StartingBalanceCents}
	} else if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser retorna o usuário ou nil quando não existe.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*User, error) {
	u, err := scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, balance_cents, wagers_placed, wagers_won, wagers_lost, total_staked_cents, total_returned_cents
		FROM users WHERE id=$1`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// lockUser trava a linha do usuário (FOR UPDATE) e devolve o saldo corrente,
// criando a entrada com saldo inicial se for o primeiro contato.
func lockUser(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		SELECT balance_cents FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO users (id, balance_cents) VALUES ($1,$2)`,
			userID, StartingBalanceCents); err != nil {
			return 0, err
		}
		return StartingBalanceCents, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func scanUser(r rowScanner) (*User, error) {
	var u User
	if err := r.Scan(&u.ID, &u.BalanceCents, &u.WagersPlaced, &u.WagersWon,
		&u.WagersLost, &u.TotalStakedCents, &u.TotalReturnedCents); err != nil {
		return nil, err
	}
	return &u, nil
}
