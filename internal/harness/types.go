package harness

import (
	"github.com/roach88/invitations/internal/invite"
)

// Outcome of a successful step.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq   int    `json:"seq"`
	Op    string `json:"op"`
	Alias string `json:"as,omitempty"`
	Ref   string `json:"ref,omitempty"`

	// Outcome is OutcomeOK or the error code the step failed with.
	Outcome string `json:"outcome"`

	Count  *int         `json:"count,omitempty"`
	Record *RecordState `json:"record,omitempty"`
}

// RecordState is the part of a record a trace cares about. Ref is the
// record's alias, or "#<id>" when the scenario never named it.
type RecordState struct {
	Ref        string      `json:"ref"`
	Type       invite.Type `json:"type"`
	InviteSent bool        `json:"invite_sent"`
	Accepted   bool        `json:"accepted"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final lists every record in the store after the last step, by id.
	Final []RecordState `json:"final"`

	// Aliases maps each alias to the id of the record it names.
	Aliases map[string]int64 `json:"aliases"`
}

// NewResult creates a passing, empty result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Final:   []RecordState{},
		Aliases: make(map[string]int64),
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// ref returns the alias naming id, or "#<id>".
func (r *Result) ref(id int64) string {
	for alias, aliased := range r.Aliases {
		if aliased == id {
			return alias
		}
	}
	return "#" + formatID(id)
}

func (r *Result) state(rec invite.Record) RecordState {
	return RecordState{
		Ref:        r.ref(rec.ID),
		Type:       rec.Type,
		InviteSent: rec.InviteSent,
		Accepted:   rec.Accepted,
	}
}
