package classify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spec-kit/service-desk/internal/domain"
)

// TierRule binds a lexicon to the priority it implies. Rules are
// evaluated in slice order; the first hit wins, so the ordering of the
// tiers is the contract, not an optimization.
type TierRule struct {
	Name     string               `json:"name"`
	Lexicon  []string             `json:"lexicon"`
	Priority domain.OrderPriority `json:"priority"`
}

// Ruleset is the full, externally overridable classification table.
type Ruleset struct {
	// Problem terms mark a message as a service request and feed the
	// multi-hit heuristic.
	Problem []string `json:"problem"`
	// Tiers are checked before any heuristic, in order.
	Tiers []TierRule `json:"tiers"`
	// Diagnostic phrasing maps to MEDIUM when no tier matched.
	Diagnostic []string `json:"diagnostic"`
	// LongLength is the character count past which a message counts as long.
	LongLength int `json:"long_length"`
	// ShoutRun is the number of consecutive capitals treated as shouting.
	ShoutRun int `json:"shout_run"`
}

// DefaultRuleset returns the curated lexicon table. Terms include the
// misspellings and regional shorthand seen in real operator chats.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Problem: []string{
			"no funciona", "no anda", "no enciende", "no prende", "no arranca",
			"no imprime", "no conecta", "no responde", "se apaga", "se cuelga",
			"se trabo", "se trabó", "se rompio", "se rompió", "roto", "rota",
			"falla", "fallando", "fallo", "falló", "error", "problema",
			"averiado", "averia", "avería", "dañado", "danado", "quemado",
			"hace ruido", "ruido raro", "perdida", "pérdida", "fuga", "gotea",
			"pantalla negra", "sin señal", "sin senal", "no da", "anda mal",
		},
		Tiers: []TierRule{
			{
				Name:     "low",
				Priority: domain.OrderPriorityLow,
				Lexicon: []string{
					"sin apuro", "no hay apuro", "sin urgencia", "no es urgente",
					"cuando puedas", "cuando pueda", "cuando tengas tiempo",
					"no corre prisa", "tranqui", "para la semana",
				},
			},
			{
				Name:     "critical",
				Priority: domain.OrderPriorityCritical,
				Lexicon: []string{
					"urgente", "urgentisimo", "urgentísimo", "emergencia",
					"no enciende", "no prende", "no arranca", "parado", "parada",
					"detenido", "todo caido", "todo caído", "quemado", "humo",
					"se incendio", "se incendió",
				},
			},
			{
				Name:     "high",
				Priority: domain.OrderPriorityHigh,
				Lexicon: []string{
					"importante", "prioridad", "prioritario", "lo antes posible",
					"cuanto antes", "apenas puedas", "hoy mismo", "para hoy",
					"necesito", "apurado", "apurada", "asap",
				},
			},
		},
		Diagnostic: []string{
			"revisar", "revision", "revisión", "chequear", "checkear",
			"verificar", "controlar", "mantenimiento", "diagnostico",
			"diagnóstico", "calibrar", "service", "consulta",
		},
		LongLength: 120,
		ShoutRun:   3,
	}
}

// LoadRuleset reads a JSON ruleset from disk, or returns the default
// table when path is empty. Zero thresholds fall back to defaults so a
// partial file stays usable.
func LoadRuleset(path string) (Ruleset, error) {
	if path == "" {
		return DefaultRuleset(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("read ruleset: %w", err)
	}
	var rs Ruleset
	if err := json.Unmarshal(raw, &rs); err != nil {
		return Ruleset{}, fmt.Errorf("parse ruleset: %w", err)
	}
	defaults := DefaultRuleset()
	if rs.LongLength <= 0 {
		rs.LongLength = defaults.LongLength
	}
	if rs.ShoutRun <= 0 {
		rs.ShoutRun = defaults.ShoutRun
	}
	return rs, nil
}
