package registry

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// schema constrains registry files. Unknown fields are rejected.
const schema = `
#Component: {
	active:              *true | bool
	invitation_callback: *"" | string
}

components: [string]: #Component
`

// LoadFile reads a CUE registry file:
//
//	components: {
//		groups: invitation_callback: "groups_invitations"
//		friends: {active: false, invitation_callback: "friends_invitations"}
//		activity: {}
//	}
//
// active defaults to true and invitation_callback to "".
func LoadFile(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Load(path, src)
}

// Load parses registry source. filename is used in error positions.
func Load(filename string, src []byte) (*Registry, error) {
	ctx := cuecontext.New()

	s := ctx.CompileString(schema, cue.Filename("registry-schema.cue"))
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("compile registry schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = s.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	r := New()
	componentsVal := v.LookupPath(cue.ParsePath("components"))
	if !componentsVal.Exists() {
		return r, nil
	}

	iter, err := componentsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		var fields struct {
			Active             bool   `json:"active"`
			InvitationCallback string `json:"invitation_callback"`
		}
		if err := iter.Value().Decode(&fields); err != nil {
			return nil, formatCUEError(err)
		}
		c := Component{
			Name:               iter.Label(),
			Active:             fields.Active,
			InvitationCallback: fields.InvitationCallback,
		}
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// formatCUEError flattens a CUE error list into one message with positions.
func formatCUEError(err error) error {
	return fmt.Errorf("registry: %s", errors.Details(err, nil))
}
