package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
)

// UpsertByExternalID insere ou atualiza o jogo pela chave estável do matcher.
// As odds vão serializadas em jsonb; ON CONFLICT garante que ingestões repetidas
// do mesmo registro não criam jogo duplicado.
func (p *Postgres) UpsertByExternalID(ctx context.Context, g *catalog.Game) error {
	oddsJSON, err := json.Marshal(g.Odds)
	if err != nil {
		return fmt.Errorf("marshal odds: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO games
		  (external_id, home_team, away_team, start_time, status, home_score, away_score, unconfirmed, odds, last_updated)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (external_id) DO UPDATE SET
		  home_team    = EXCLUDED.home_team,
		  away_team    = EXCLUDED.away_team,
		  start_time   = EXCLUDED.start_time,
		  status       = EXCLUDED.status,
		  home_score   = EXCLUDED.home_score,
		  away_score   = EXCLUDED.away_score,
		  unconfirmed  = EXCLUDED.unconfirmed,
		  odds         = EXCLUDED.odds,
		  last_updated = EXCLUDED.last_updated`,
		g.ExternalID, g.HomeTeam, g.AwayTeam, g.StartTime, string(g.Status),
		g.HomeScore, g.AwayScore, g.Unconfirmed, oddsJSON, g.LastUpdated,
	)
	return err
}

// FindByExternalID retorna o jogo ou nil quando não existe.
func (p *Postgres) FindByExternalID(ctx context.Context, externalID string) (*catalog.Game, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT external_id, home_team, away_team, start_time, status, home_score, away_score, unconfirmed, odds, last_updated
		FROM games WHERE external_id=$1`, externalID)

	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

// FindByStatus lista jogos num status específico, mais antigos primeiro.
func (p *Postgres) FindByStatus(ctx context.Context, status catalog.GameStatus) ([]*catalog.Game, error) {
	return p.queryGames(ctx, `
		SELECT external_id, home_team, away_team, start_time, status, home_score, away_score, unconfirmed, odds, last_updated
		FROM games WHERE status=$1 ORDER BY start_time`, string(status))
}

// FindActive lista o working set do monitor: jogos ainda não terminais.
func (p *Postgres) FindActive(ctx context.Context) ([]*catalog.Game, error) {
	return p.queryGames(ctx, `
		SELECT external_id, home_team, away_team, start_time, status, home_score, away_score, unconfirmed, odds, last_updated
		FROM games WHERE status IN ('scheduled','in_progress') ORDER BY start_time`)
}

// FindFinishedWithPendingWagers lista jogos encerrados que ainda referenciam
// aposta pendente — liquidação que falhou numa passada anterior é retomada a
// partir daqui. O EXISTS usa o índice parcial de apostas pendentes por jogo.
func (p *Postgres) FindFinishedWithPendingWagers(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT g.external_id FROM games g
		WHERE g.status='finished'
		  AND EXISTS (SELECT 1 FROM wagers w WHERE w.game_id = g.external_id AND w.status='pending')
		ORDER BY g.last_updated`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PruneFinishedBefore remove do working set jogos finalizados há mais tempo que
// o horizonte de retenção. Jogo com aposta ainda pendente nunca é removido:
// apagá-lo tornaria a liquidação impossível e o stake debitado ficaria preso.
// Histórico durável fica fora do escopo deste store.
func (p *Postgres) PruneFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM games
		WHERE status='finished' AND last_updated < $1
		  AND NOT EXISTS (SELECT 1 FROM wagers w WHERE w.game_id = games.external_id AND w.status='pending')`,
		cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (p *Postgres) queryGames(ctx context.Context, q string, args ...any) ([]*catalog.Game, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*catalog.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanGame(r rowScanner) (*catalog.Game, error) {
	var (
		g        catalog.Game
		status   string
		oddsJSON []byte
	)
	if err := r.Scan(&g.ExternalID, &g.HomeTeam, &g.AwayTeam, &g.StartTime,
		&status, &g.HomeScore, &g.AwayScore, &g.Unconfirmed, &oddsJSON, &g.LastUpdated); err != nil {
		return nil, err
	}
	g.Status = catalog.GameStatus(status)
	if len(oddsJSON) > 0 {
		if err := json.Unmarshal(oddsJSON, &g.Odds); err != nil {
			return nil, fmt.Errorf("unmarshal odds: %w", err)
		}
	}
	return &g, nil
}
