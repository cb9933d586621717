// Package catalog holds the pool of candidate players for one optimization
// run. Records arrive from an input adapter (see internal/fpl), are validated
// here, and are immutable afterwards.
package catalog

import (
	"fmt"
	"sort"
)

// Position is the quota category of a player.
type Position string

const (
	Goalkeeper Position = "Goalkeeper"
	Defender   Position = "Defender"
	Midfielder Position = "Midfielder"
	Forward    Position = "Forward"
)

// Positions lists all valid positions in display order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}
	return false
}

// Record is one raw candidate row handed to Load by an input adapter.
type Record struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Club        string  `json:"club"`
	Position    string  `json:"position"`
	Price       float64 `json:"price"`
	TotalPoints float64 `json:"total_points"`
	Form        float64 `json:"form"`
}

// Player is one validated candidate with its derived score.
type Player struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Club           string   `json:"club"`
	Position       Position `json:"position"`
	Price          float64  `json:"price"`
	TotalPoints    float64  `json:"total_points"`
	Form           float64  `json:"form"`
	ExpectedPoints float64  `json:"expected_points"`
}

// DataFormatError reports a record with missing or malformed fields.
type DataFormatError struct {
	RecordID int
	Field    string
	Reason   string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("bad record %d: field %q %s", e.RecordID, e.Field, e.Reason)
}

// ValidationError reports a record that is well-formed but violates a domain
// rule, e.g. a negative price.
type ValidationError struct {
	RecordID int
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record %d: %s", e.RecordID, e.Reason)
}

// DeriveConfig holds the scoring constants applied during Load.
type DeriveConfig struct {
	// FormWeight scales the recent-form bonus added to total points.
	FormWeight float64
}

// Catalog is the immutable universe of candidates for one run.
type Catalog struct {
	players []Player
	byID    map[int]*Player
}

// Load validates records, derives expected points and returns the catalog.
// Bad records abort the load; nothing is silently dropped.
func Load(records []Record, cfg DeriveConfig) (*Catalog, error) {
	players := make([]Player, 0, len(records))
	seen := make(map[int]struct{}, len(records))

	for _, r := range records {
		if r.ID <= 0 {
			return nil, &DataFormatError{RecordID: r.ID, Field: "id", Reason: "must be a positive integer"}
		}
		if r.Name == "" {
			return nil, &DataFormatError{RecordID: r.ID, Field: "name", Reason: "is required"}
		}
		if r.Club == "" {
			return nil, &DataFormatError{RecordID: r.ID, Field: "club", Reason: "is required"}
		}
		pos := Position(r.Position)
		if !pos.Valid() {
			return nil, &DataFormatError{RecordID: r.ID, Field: "position", Reason: fmt.Sprintf("unknown value %q", r.Position)}
		}
		if r.Price < 0 {
			return nil, &ValidationError{RecordID: r.ID, Reason: fmt.Sprintf("negative price %.1f", r.Price)}
		}
		if _, dup := seen[r.ID]; dup {
			return nil, &ValidationError{RecordID: r.ID, Reason: "duplicate id"}
		}
		seen[r.ID] = struct{}{}

		players = append(players, Player{
			ID:             r.ID,
			Name:           r.Name,
			Club:           r.Club,
			Position:       pos,
			Price:          r.Price,
			TotalPoints:    r.TotalPoints,
			Form:           r.Form,
			ExpectedPoints: r.TotalPoints + cfg.FormWeight*r.Form,
		})
	}

	// Canonical ordering so every downstream pass sees the same index space.
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	byID := make(map[int]*Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}

	return &Catalog{players: players, byID: byID}, nil
}

// Players returns the candidates in ascending ID order.
func (c *Catalog) Players() []Player {
	return c.players
}

// Len returns the number of candidates.
func (c *Catalog) Len() int {
	return len(c.players)
}

// ByID returns the player with the given id, or false if absent.
func (c *Catalog) ByID(id int) (Player, bool) {
	p, ok := c.byID[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Clubs returns the distinct club labels present in the catalog.
func (c *Catalog) Clubs() []string {
	seen := make(map[string]bool)
	var clubs []string
	for _, p := range c.players {
		if !seen[p.Club] {
			seen[p.Club] = true
			clubs = append(clubs, p.Club)
		}
	}
	sort.Strings(clubs)
	return clubs
}

// CountByPosition returns how many candidates exist per position.
func (c *Catalog) CountByPosition() map[Position]int {
	counts := make(map[Position]int, len(Positions))
	for _, p := range c.players {
		counts[p.Position]++
	}
	return counts
}
