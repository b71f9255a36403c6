package usecase

import (
	"time"
)

// InteractionState everything one interactive session remembers between
// steps. Handlers take a state and return the next one; nothing is kept
// globally.
type InteractionState struct {
	// Query current search text
	Query string
	// LastQuery last text typed by the user, used to detect edits
	LastQuery string
	// Form pending field values for a new row, keyed by column
	Form map[string]string
	// FormField index of the column the form is asking for next
	FormField int
	// FormActive a field-by-field form is in progress
	FormActive bool
	// ConfirmPending the user submitted the form and must confirm
	ConfirmPending bool
	// FormCleared the form was just reset
	FormCleared bool
	// UpdatedAt last time a handler touched this state
	UpdatedAt time.Time
}

// NewInteractionState returns an empty state.
func NewInteractionState() InteractionState {
	return InteractionState{Form: map[string]string{}, UpdatedAt: time.Now()}
}

// Clone deep-copies the state so handlers never share the form map.
func (s InteractionState) Clone() InteractionState {
	out := s
	out.Form = make(map[string]string, len(s.Form))
	for k, v := range s.Form {
		out.Form[k] = v
	}
	return out
}

// WithQuery syncs the query the same way the search box does: a changed
// input replaces both the active and the last seen query.
func (s InteractionState) WithQuery(input string) InteractionState {
	out := s.Clone()
	if input != out.LastQuery {
		out.Query = input
		out.LastQuery = input
	}
	out.UpdatedAt = time.Now()
	return out
}

// Idle reports whether the state has not been touched for d.
func (s InteractionState) Idle(now time.Time, d time.Duration) bool {
	return now.Sub(s.UpdatedAt) > d
}

func (s InteractionState) touched() InteractionState {
	s.UpdatedAt = time.Now()
	return s
}
