package sorting

// Cycle controls how repeated header clicks move through directions.
type Cycle int

const (
	// ThreeState cycles desc → asc → none → desc. Used by the portfolio and account tables.
	ThreeState Cycle = iota
	// TwoState toggles desc ↔ asc. Used by the monitored positions table.
	TwoState
)

// State is the current sort of one table.
type State struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Click returns the state after the user clicks the header of field.
// Clicking a different column always starts at desc.
func (s State) Click(field string, cycle Cycle) State {
	if field != s.Field {
		return State{Field: field, Direction: Desc}
	}

	switch cycle {
	case TwoState:
		if s.Direction == Desc {
			return State{Field: field, Direction: Asc}
		}
		return State{Field: field, Direction: Desc}
	default:
		switch s.Direction {
		case Desc:
			return State{Field: field, Direction: Asc}
		case Asc:
			return State{Field: field, Direction: None}
		default:
			return State{Field: field, Direction: Desc}
		}
	}
}
