package game

// ActionType names an engine transition for dispatch over a wire.
type ActionType string

const (
	ActionInitialize          ActionType = "initialize"
	ActionDraw                ActionType = "draw"
	ActionWasteToTableau      ActionType = "wasteToTableau"
	ActionWasteToFoundation   ActionType = "wasteToFoundation"
	ActionTableauToTableau    ActionType = "tableauToTableau"
	ActionTableauToFoundation ActionType = "tableauToFoundation"
	ActionFoundationToTableau ActionType = "foundationToTableau"
	ActionIncrementTime       ActionType = "incrementTime"
	ActionCheckWin            ActionType = "checkWin"
	ActionSetTimer            ActionType = "setTimer"
)

// Action is one decoded transition request.
//
// Field use by type:
//
//	wasteToTableau       To (tableau)
//	wasteToFoundation    To (foundation)
//	tableauToTableau     From, To, CardIndex
//	tableauToFoundation  From (tableau), To (foundation)
//	foundationToTableau  From (foundation), To (tableau)
//	setTimer             Running
type Action struct {
	Type      ActionType `json:"type"`
	From      int        `json:"from,omitempty"`
	To        int        `json:"to,omitempty"`
	CardIndex int        `json:"cardIndex,omitempty"`
	Running   bool       `json:"running,omitempty"`
}

// Apply runs the transition named by a and then re-checks the win condition.
// Unknown action types are no-ops. It reports whether the transition changed state.
func (g *Game) Apply(a Action) bool {
	var applied bool
	switch a.Type {
	case ActionInitialize:
		g.Initialize()
		applied = true
	case ActionDraw:
		applied = g.DrawCard()
	case ActionWasteToTableau:
		applied = g.MoveFromWasteToTableau(a.To)
	case ActionWasteToFoundation:
		applied = g.MoveFromWasteToFoundation(a.To)
	case ActionTableauToTableau:
		applied = g.MoveFromTableauToTableau(a.From, a.To, a.CardIndex)
	case ActionTableauToFoundation:
		applied = g.MoveFromTableauToFoundation(a.From, a.To)
	case ActionFoundationToTableau:
		applied = g.MoveFromFoundationToTableau(a.From, a.To)
	case ActionIncrementTime:
		applied = g.IncrementTime()
	case ActionCheckWin:
		// handled below
	case ActionSetTimer:
		applied = g.SetTimerRunning(a.Running)
	default:
		return false
	}

	if g.checkWin() {
		applied = true
	}
	return applied
}
