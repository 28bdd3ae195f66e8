package catalog

import (
	"strings"
	"time"
	"unicode"
)

// MatchKind é o resultado tipado da resolução externo → interno.
type MatchKind int

const (
	// MatchNone: nenhum candidato compatível; o chamador pode criar um Game novo.
	MatchNone MatchKind = iota
	// MatchExactID: o ExternalID armazenado bate com o id do registro do feed.
	MatchExactID
	// MatchSameDayName: par de times normalizado igual e início no mesmo dia (UTC).
	MatchSameDayName
	// MatchAmbiguous: mais de um candidato no mesmo dia; tratar como falha, nunca chutar.
	MatchAmbiguous
)

// ExternalRecord é a visão mínima de um registro de feed usada pelo matcher.
type ExternalRecord struct {
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	StartTime  time.Time
}

// MatchResult carrega o tipo de resolução e, quando houver, o jogo resolvido.
type MatchResult struct {
	Kind MatchKind
	Game *Game
}

// Match resolve um registro externo contra os candidatos ativos do catálogo.
// Função pura: sem rede e sem banco, testável isoladamente.
//
// Ordem de resolução:
//  1. igualdade exata de ExternalID;
//  2. par de times normalizado igual + início no mesmo dia-calendário (UTC) —
//     necessário porque o feed de odds e o de resultados identificam o mesmo
//     evento real com ids disjuntos;
//  3. nada casou → MatchNone.
//
// Dois jogos dos mesmos times em dias diferentes nunca são fundidos: fora da
// janela de um dia o registro é tratado como evento distinto. Mais de um
// candidato no mesmo dia é ambiguidade, não palpite.
func Match(rec ExternalRecord, candidates []*Game) MatchResult {
	for _, g := range candidates {
		if rec.ExternalID != "" && g.ExternalID == rec.ExternalID {
			return MatchResult{Kind: MatchExactID, Game: g}
		}
	}

	recHome := NormalizeTeam(rec.HomeTeam)
	recAway := NormalizeTeam(rec.AwayTeam)
	if recHome == "" || recAway == "" {
		return MatchResult{Kind: MatchNone}
	}

	var found *Game
	for _, g := range candidates {
		if NormalizeTeam(g.HomeTeam) != recHome || NormalizeTeam(g.AwayTeam) != recAway {
			continue
		}
		if !sameCalendarDay(rec.StartTime, g.StartTime) {
			continue
		}
		if found != nil {
			return MatchResult{Kind: MatchAmbiguous}
		}
		found = g
	}

	if found == nil {
		return MatchResult{Kind: MatchNone}
	}
	return MatchResult{Kind: MatchSameDayName, Game: found}
}

// NormalizeTeam reduz o nome do time a uma chave comparável entre feeds:
// minúsculas e só letras/dígitos ("LA Lakers" ≡ "L.A. Lakers").
func NormalizeTeam(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sameCalendarDay compara os dias-calendário em UTC.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
