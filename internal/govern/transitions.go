package govern

import "github.com/quireproject/quire/internal/model"

// CanTransition reports whether a record status change is legal:
//
//	PROPOSED → ACTIVE → {CLOSED | SUPERSEDED | FALSIFIED}
//
// FALSIFIED and CLOSED are terminal. SUPERSEDED is terminal for the record
// but spawns a supersedes edge to its replacement. No transition skips
// ACTIVE, and no caller privilege reopens a terminal record.
func CanTransition(from, to model.Status) bool {
	if from == to {
		return false
	}
	switch from {
	case model.StatusProposed:
		return to == model.StatusActive
	case model.StatusActive:
		return to == model.StatusClosed || to == model.StatusSuperseded || to == model.StatusFalsified
	}
	return false
}
