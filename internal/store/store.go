package store

import (
	"database/sql"
	"errors"
)

// StartingBalanceCents é o saldo virtual inicial creditado no primeiro contato
// de um usuário com o ledger (R$ 1000,00 em dinheiro de mentira).
const StartingBalanceCents int64 = 100_000

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// User é a entrada do ledger de um usuário: saldo e contadores agregados.
// Toda mutação de saldo é pareada 1:1 com uma transição de status de aposta
// dentro da mesma transação; o saldo nunca fica negativo.
type User struct {
	ID                 string
	BalanceCents       int64
	WagersPlaced       int
	WagersWon          int
	WagersLost         int
	TotalStakedCents   int64
	TotalReturnedCents int64
}

// Postgres implementa os stores de jogos, apostas e ledger sobre um banco Postgres.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna a instância compartilhada pelos serviços do engine.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }
