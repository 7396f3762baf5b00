package resolve

import (
	"strings"

	"github.com/spec-kit/service-desk/internal/domain"
)

const (
	fullMatchScore    = 10
	partialWordScore  = 5
	clientWordScore   = 8
	partialWordMinLen = 4
	clientWordMinLen  = 3
)

// legalSuffixes are dropped when deriving a client's short name.
var legalSuffixes = map[string]struct{}{
	"srl": {}, "s.r.l": {}, "s.r.l.": {},
	"sa": {}, "s.a": {}, "s.a.": {}, "sas": {}, "s.a.s": {},
	"ltda": {}, "ltd": {}, "inc": {}, "llc": {},
	"cia": {}, "cía": {}, "co": {}, "y": {}, "de": {}, "del": {},
}

// EquipmentRef identifies a resolved catalog equipment entry.
type EquipmentRef struct {
	ID   string
	Name string
}

// ClientRef carries the normalized short name plus the full legal name.
type ClientRef struct {
	ShortName string
	LegalName string
}

// Match is the resolution outcome. Either side may be nil; an empty
// match is a normal result, never an error.
type Match struct {
	Equipment *EquipmentRef
	Client    *ClientRef
}

// Resolve scores every catalog entry against the text and returns the
// best equipment/client references. Ties keep the first entry seen so
// resolution is deterministic for a fixed catalog snapshot.
func Resolve(text string, entries []domain.CatalogEntry) Match {
	lowered := strings.ToLower(text)

	var (
		best      *domain.CatalogEntry
		bestScore int
		bestEquip bool
		bestCli   bool
	)

	for i := range entries {
		entry := &entries[i]
		score, equipMatch, clientMatch := scoreEntry(lowered, entry)
		if score > bestScore {
			best, bestScore = entry, score
			bestEquip, bestCli = equipMatch, clientMatch
		}
	}

	var match Match
	if best != nil && bestEquip {
		match.Equipment = &EquipmentRef{ID: best.ID, Name: best.Name}
	}
	if best != nil && bestCli {
		match.Client = clientRef(best.ClientName)
	}
	if match.Client == nil {
		match.Client = fallbackClient(lowered, entries)
	}
	return match
}

func scoreEntry(lowered string, entry *domain.CatalogEntry) (score int, equipMatch, clientMatch bool) {
	for _, field := range []string{entry.Name, entry.Brand, entry.Model} {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(field)) {
			score += fullMatchScore
			equipMatch = true
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(field)) {
			if len(word) >= partialWordMinLen && strings.Contains(lowered, word) {
				score += partialWordScore
				equipMatch = true
			}
		}
	}

	for _, word := range strings.Fields(strings.ToLower(entry.ClientName)) {
		if len(word) >= clientWordMinLen && strings.Contains(lowered, word) {
			score += clientWordScore
			clientMatch = true
		}
	}
	return score, equipMatch, clientMatch
}

// fallbackClient runs the client-only scan: pick the entry whose client
// name contains the most words mentioned in the text.
func fallbackClient(lowered string, entries []domain.CatalogEntry) *ClientRef {
	words := make([]string, 0, 8)
	for _, w := range strings.Fields(lowered) {
		if len(w) >= partialWordMinLen {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	var bestClient string
	bestHits := 0
	for i := range entries {
		client := strings.TrimSpace(entries[i].ClientName)
		if client == "" {
			continue
		}
		clientLower := strings.ToLower(client)
		hits := 0
		for _, w := range words {
			if strings.Contains(clientLower, w) {
				hits++
			}
		}
		if hits > bestHits {
			bestClient, bestHits = client, hits
		}
	}
	if bestHits == 0 {
		return nil
	}
	return clientRef(bestClient)
}

func clientRef(legalName string) *ClientRef {
	legalName = strings.TrimSpace(legalName)
	if legalName == "" {
		return nil
	}
	return &ClientRef{
		ShortName: shortClientName(legalName),
		LegalName: legalName,
	}
}

// shortClientName returns the first significant word of the legal name,
// skipping legal suffixes and connective particles.
func shortClientName(legalName string) string {
	for _, word := range strings.Fields(legalName) {
		key := strings.ToLower(strings.Trim(word, ".,"))
		if _, skip := legalSuffixes[key]; skip {
			continue
		}
		return word
	}
	return legalName
}
