package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/registry"
)

// Scenario is one invitation scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Components seeds the component registry.
	Components []registry.Component `yaml:"components,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one engine operation.
type Step struct {
	Op string `yaml:"op"`

	// As names the record the step creates.
	As string `yaml:"as,omitempty"`

	// Ref names the record a by-id step addresses.
	Ref string `yaml:"ref,omitempty"`

	// Args are decoded into the operation's argument type: InvitationArgs,
	// RequestArgs, AcceptArgs, queryir.Filter or ComponentArgs.
	Args yaml.Node `yaml:"args,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks a step's outcome. Unset fields are not checked.
type Expect struct {
	// Error is the expected error code, e.g. DUPLICATE.
	Error string `yaml:"error,omitempty"`

	Count      *int  `yaml:"count,omitempty"`
	InviteSent *bool `yaml:"invite_sent,omitempty"`
	Accepted   *bool `yaml:"accepted,omitempty"`
}

// ComponentArgs are the arguments of delete_all_by_component.
type ComponentArgs struct {
	ComponentName   string `yaml:"component_name"`
	ComponentAction string `yaml:"component_action,omitempty"`
}

// Assertion runs a query after the steps and checks its result.
type Assertion struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`

	// Identity for user_invitations and user_requests, inviter for
	// invitations_from_user.
	UserID       int64  `yaml:"user_id,omitempty"`
	InviteeEmail string `yaml:"invitee_email,omitempty"`
	InviterID    int64  `yaml:"inviter_id,omitempty"`

	Filter queryir.Filter `yaml:"filter,omitempty"`

	// Expect lists aliases, or component names for registered_components.
	Expect  []string `yaml:"expect"`
	Ordered bool     `yaml:"ordered,omitempty"`
}

// Step operations.
const (
	OpAddInvitation        = "add_invitation"
	OpAddRequest           = "add_request"
	OpSendInvitation       = "send_invitation"
	OpAcceptInvitation     = "accept_invitation"
	OpAcceptRequest        = "accept_request"
	OpMarkSent             = "mark_sent"
	OpMarkAccepted         = "mark_accepted"
	OpUpdateContent        = "update_content"
	OpDeleteInvitation     = "delete_invitation"
	OpDeleteInvitations    = "delete_invitations"
	OpDeleteRequests       = "delete_requests"
	OpDeleteAllByComponent = "delete_all_by_component"
)

// Assertion queries.
const (
	QueryGetInvitations       = "get_invitations"
	QueryGetRequests          = "get_requests"
	QueryUserInvitations      = "user_invitations"
	QueryUserRequests         = "user_requests"
	QueryInvitationsFromUser  = "invitations_from_user"
	QueryRegisteredComponents = "registered_components"
)

var (
	creatingOps = []string{OpAddInvitation, OpAddRequest}
	refOps      = []string{OpSendInvitation, OpDeleteInvitation, OpUpdateContent}
	knownOps    = []string{
		OpAddInvitation, OpAddRequest, OpSendInvitation, OpAcceptInvitation,
		OpAcceptRequest, OpMarkSent, OpMarkAccepted, OpUpdateContent,
		OpDeleteInvitation, OpDeleteInvitations, OpDeleteRequests, OpDeleteAllByComponent,
	}
	knownQueries = []string{
		QueryGetInvitations, QueryGetRequests, QueryUserInvitations,
		QueryUserRequests, QueryInvitationsFromUser, QueryRegisteredComponents,
	}
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	aliases := make(map[string]bool)
	for i, step := range s.Steps {
		if err := validateStep(i, step, aliases); err != nil {
			return err
		}
		if step.As != "" {
			aliases[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, aliases); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step, aliases map[string]bool) error {
	if !slices.Contains(knownOps, step.Op) {
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	if step.As != "" {
		if !slices.Contains(creatingOps, step.Op) {
			return fmt.Errorf("steps[%d]: %s does not create a record to alias", i, step.Op)
		}
		if aliases[step.As] {
			return fmt.Errorf("steps[%d]: alias %q is already defined", i, step.As)
		}
	}
	if slices.Contains(refOps, step.Op) && step.Ref == "" {
		return fmt.Errorf("steps[%d]: ref is required for %s", i, step.Op)
	}
	if step.Ref != "" && !aliases[step.Ref] {
		return fmt.Errorf("steps[%d]: ref %q is not defined by an earlier step", i, step.Ref)
	}
	return nil
}

func validateAssertion(i int, a Assertion, aliases map[string]bool) error {
	if a.Name == "" {
		return fmt.Errorf("assertions[%d]: name is required", i)
	}
	if !slices.Contains(knownQueries, a.Query) {
		return fmt.Errorf("assertions[%d]: unknown query %q", i, a.Query)
	}
	if a.Query == QueryRegisteredComponents {
		return nil
	}
	for _, alias := range a.Expect {
		if !aliases[alias] {
			return fmt.Errorf("assertions[%d]: alias %q is not defined by any step", i, alias)
		}
	}
	return nil
}
