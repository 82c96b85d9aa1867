package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/cache"
	"github.com/roach88/invitations/internal/engine"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/registry"
	"github.com/roach88/invitations/internal/store"
	"github.com/roach88/invitations/internal/testutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	engine *engine.Engine
	result *Result
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	log *zap.Logger
}

// WithLogger routes engine logs to log. Runs are silent by default.
func WithLogger(log *zap.Logger) Option {
	return func(c *runConfig) { c.log = log }
}

// Run executes scenario against a fresh in-memory store and returns the
// result. The error is non-nil only when the run could not be set up;
// failed expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	components := registry.New()
	for _, c := range scenario.Components {
		if err := components.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register component: %w", err)
		}
	}

	clock := testutil.NewDeterministicClock()
	st, err := store.Open(":memory:", store.WithClock(clock.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		engine: engine.New(st,
			engine.WithCache(cache.NewLayer(cache.NewMemory(0), cache.WithLogger(cfg.log))),
			engine.WithComponents(components),
			engine.WithLogger(cfg.log),
		),
		result: NewResult(),
	}

	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step)
	}
	for _, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a); err != nil {
			h.result.AddError(err.Error())
		}
	}

	final, err := st.Query(ctx, queryir.Filter{InviteSent: queryir.SentAll, Accepted: queryir.AcceptedAll})
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	for _, rec := range final {
		h.result.Final = append(h.result.Final, h.result.state(rec))
	}
	return h.result, nil
}

// executeStep runs one step, traces it and checks its expect clause.
func (h *Harness) executeStep(ctx context.Context, i int, step Step) {
	ev := TraceEvent{Seq: i + 1, Op: step.Op, Alias: step.As, Ref: step.Ref}

	rec, count, err := h.invoke(ctx, step)
	switch {
	case err != nil:
		ev.Outcome = outcomeOf(err)
	case rec != nil:
		ev.Outcome = OutcomeOK
		if step.As != "" {
			h.result.Aliases[step.As] = rec.ID
		}
		state := h.result.state(*rec)
		ev.Record = &state
	default:
		ev.Outcome = OutcomeOK
		ev.Count = &count
	}
	h.result.Trace = append(h.result.Trace, ev)

	if msg := checkExpect(step.Expect, ev, err); msg != "" {
		h.result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
	}
}

// invoke dispatches step to the engine. Creating operations return the
// record, the others the affected count.
func (h *Harness) invoke(ctx context.Context, step Step) (*invite.Record, int, error) {
	e := h.engine

	switch step.Op {
	case OpAddInvitation:
		var args engine.InvitationArgs
		if err := decodeArgs(step, &args); err != nil {
			return nil, 0, err
		}
		return record(e.AddInvitation(ctx, args))

	case OpAddRequest:
		var args engine.RequestArgs
		if err := decodeArgs(step, &args); err != nil {
			return nil, 0, err
		}
		return record(e.AddRequest(ctx, args))

	case OpAcceptInvitation, OpAcceptRequest:
		var args engine.AcceptArgs
		if err := decodeArgs(step, &args); err != nil {
			return nil, 0, err
		}
		if step.Op == OpAcceptRequest {
			return count(e.AcceptRequest(ctx, args))
		}
		return count(e.AcceptInvitation(ctx, args))

	case OpDeleteAllByComponent:
		var args ComponentArgs
		if err := decodeArgs(step, &args); err != nil {
			return nil, 0, err
		}
		return count(e.DeleteAllByComponent(ctx, args.ComponentName, args.ComponentAction))
	}

	if step.Ref != "" {
		id, err := h.resolve(step.Ref)
		if err != nil {
			return nil, 0, err
		}
		switch step.Op {
		case OpSendInvitation:
			return count(e.SendInvitationByID(ctx, id))
		case OpMarkSent:
			return count(e.MarkSentByID(ctx, id))
		case OpMarkAccepted:
			return count(e.MarkAcceptedByID(ctx, id))
		case OpDeleteInvitation:
			return count(e.DeleteInvitationByID(ctx, id))
		case OpUpdateContent:
			var args struct {
				Content string `yaml:"content"`
			}
			if err := decodeArgs(step, &args); err != nil {
				return nil, 0, err
			}
			return count(e.UpdateInvitations(ctx, store.Changes{Content: &args.Content}, queryir.ByID(id)))
		}
	}

	var f queryir.Filter
	if err := decodeArgs(step, &f); err != nil {
		return nil, 0, err
	}
	switch step.Op {
	case OpMarkSent:
		return count(e.MarkSent(ctx, f))
	case OpMarkAccepted:
		return count(e.MarkAccepted(ctx, f))
	case OpDeleteInvitations:
		return count(e.DeleteInvitations(ctx, f))
	case OpDeleteRequests:
		return count(e.DeleteRequests(ctx, f))
	}
	return nil, 0, fmt.Errorf("op %s cannot run without ref", step.Op)
}

// resolve maps an alias to the id of its record.
func (h *Harness) resolve(alias string) (int64, error) {
	id, ok := h.result.Aliases[alias]
	if !ok {
		return 0, fmt.Errorf("alias %q names no record; the step defining it failed", alias)
	}
	return id, nil
}

func decodeArgs(step Step, target any) error {
	if step.Args.Kind == 0 {
		return nil
	}
	if err := step.Args.Decode(target); err != nil {
		return invite.InvalidArgument(step.Op, fmt.Sprintf("bad args: %v", err))
	}
	return nil
}

func record(r invite.Record, err error) (*invite.Record, int, error) {
	if err != nil {
		return nil, 0, err
	}
	return &r, 0, nil
}

func count(n int, err error) (*invite.Record, int, error) {
	return nil, n, err
}

// outcomeOf names a failed step's outcome by its error code.
func outcomeOf(err error) string {
	if code := invite.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}

func checkExpect(x *Expect, ev TraceEvent, err error) string {
	if x == nil {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		return ""
	}
	if x.Error != "" {
		if ev.Outcome != x.Error {
			return fmt.Sprintf("expected error %s, got %s", x.Error, ev.Outcome)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}
	if x.Count != nil && (ev.Count == nil || *ev.Count != *x.Count) {
		return fmt.Sprintf("expected count %d, got %s", *x.Count, formatCount(ev.Count))
	}
	if ev.Record != nil {
		if x.InviteSent != nil && ev.Record.InviteSent != *x.InviteSent {
			return fmt.Sprintf("expected invite_sent=%t, got %t", *x.InviteSent, ev.Record.InviteSent)
		}
		if x.Accepted != nil && ev.Record.Accepted != *x.Accepted {
			return fmt.Sprintf("expected accepted=%t, got %t", *x.Accepted, ev.Record.Accepted)
		}
	}
	return ""
}

func formatCount(n *int) string {
	if n == nil {
		return "a record"
	}
	return fmt.Sprint(*n)
}
