package invoice

// Status represents where an invoice is in its lifecycle
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// transitions is the set of allowed status edges. Paid is terminal; a sent
// invoice may be recalled to draft.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusPaid},
	StatusSent:  {StatusPaid, StatusDraft},
	StatusPaid:  {},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// AllowedTransitions lists the statuses reachable from s
func (s Status) AllowedTransitions() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}
