package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownPile is returned by ParsePile for identifiers it cannot decode.
var ErrUnknownPile = errors.New("unknown pile")

// PileKind names a class of pile on the table.
type PileKind string

const (
	PileStock      PileKind = "stock"
	PileWaste      PileKind = "waste"
	PileFoundation PileKind = "foundation"
	PileTableau    PileKind = "tableau"
)

// PileRef identifies one pile. Index is meaningful for foundations (0..3) and
// tableaus (0..6) only.
type PileRef struct {
	Kind  PileKind `json:"kind"`
	Index int      `json:"index"`
}

func (p PileRef) String() string {
	switch p.Kind {
	case PileFoundation, PileTableau:
		return string(p.Kind) + "-" + strconv.Itoa(p.Index)
	}
	return string(p.Kind)
}

// ParsePile decodes identifiers such as "waste", "tableau-3" or "foundation-0".
func ParsePile(s string) (PileRef, error) {
	kind, idx, hasIdx := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	switch PileKind(kind) {
	case PileStock, PileWaste:
		if hasIdx {
			return PileRef{}, fmt.Errorf("%w: %q", ErrUnknownPile, s)
		}
		return PileRef{Kind: PileKind(kind)}, nil
	case PileFoundation, PileTableau:
		n, err := strconv.Atoi(idx)
		if !hasIdx || err != nil {
			return PileRef{}, fmt.Errorf("%w: %q", ErrUnknownPile, s)
		}
		limit := NumTableaus
		if PileKind(kind) == PileFoundation {
			limit = NumFoundations
		}
		if n < 0 || n >= limit {
			return PileRef{}, fmt.Errorf("%w: %q index out of range", ErrUnknownPile, s)
		}
		return PileRef{Kind: PileKind(kind), Index: n}, nil
	}
	return PileRef{}, fmt.Errorf("%w: %q", ErrUnknownPile, s)
}

// MoveCard routes a drag from one pile to another onto the matching transition.
// cardIndex is the position of the dragged card in a source tableau and is
// ignored for other sources. Pairings with no matching move are no-ops.
func (g *Game) MoveCard(from, to PileRef, cardIndex int) bool {
	switch {
	case from.Kind == PileWaste && to.Kind == PileTableau:
		return g.MoveFromWasteToTableau(to.Index)
	case from.Kind == PileWaste && to.Kind == PileFoundation:
		return g.MoveFromWasteToFoundation(to.Index)
	case from.Kind == PileTableau && to.Kind == PileTableau:
		return g.MoveFromTableauToTableau(from.Index, to.Index, cardIndex)
	case from.Kind == PileTableau && to.Kind == PileFoundation:
		return g.MoveFromTableauToFoundation(from.Index, to.Index)
	case from.Kind == PileFoundation && to.Kind == PileTableau:
		return g.MoveFromFoundationToTableau(from.Index, to.Index)
	}
	return false
}
