package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "send_after_request.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "send_after_request", scenario.Name)
	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, OpAddInvitation, scenario.Steps[0].Op)
	assert.Equal(t, "i1", scenario.Steps[0].As)
	assert.Equal(t, "i1", scenario.Steps[2].Ref)
	require.NotNil(t, scenario.Steps[2].Expect)
	require.NotNil(t, scenario.Steps[2].Expect.Count)
	assert.Equal(t, 2, *scenario.Steps[2].Expect.Count)

	require.Len(t, scenario.Assertions, 3)
	assert.Equal(t, []int64{3}, scenario.Assertions[0].Filter.UserIDs)
	assert.Equal(t, queryir.AcceptedAccepted, scenario.Assertions[0].Filter.Accepted)
	assert.True(t, scenario.Assertions[0].Ordered)
}

func TestLoadScenario_Components(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "rejections.yaml"))
	require.NoError(t, err)
	require.Len(t, scenario.Components, 3)
	assert.Equal(t, "groups", scenario.Components[0].Name)
	assert.True(t, scenario.Components[0].Active)
	assert.Equal(t, "groups_invitations", scenario.Components[0].InvitationCallback)
	assert.Equal(t, invite.CodeDuplicate, invite.ErrorCode(scenario.Steps[1].Expect.Error))
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "assertion instead of assertions"
steps:
  - op: add_request
    args: { user_id: 1, component_name: c, component_action: a, item_id: 1 }
assertion: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := map[string]struct {
		doc  string
		want string
	}{
		"no name": {
			doc:  "description: d\nsteps: [{op: add_request}]\n",
			want: "name is required",
		},
		"no description": {
			doc:  "name: n\nsteps: [{op: add_request}]\n",
			want: "description is required",
		},
		"no steps": {
			doc:  "name: n\ndescription: d\n",
			want: "steps list is required",
		},
		"unknown op": {
			doc:  "name: n\ndescription: d\nsteps: [{op: invite_everyone}]\n",
			want: `unknown op "invite_everyone"`,
		},
		"alias on count op": {
			doc:  "name: n\ndescription: d\nsteps: [{op: mark_sent, as: x}]\n",
			want: "does not create a record",
		},
		"duplicate alias": {
			doc:  "name: n\ndescription: d\nsteps: [{op: add_request, as: x}, {op: add_request, as: x}]\n",
			want: `alias "x" is already defined`,
		},
		"missing ref": {
			doc:  "name: n\ndescription: d\nsteps: [{op: send_invitation}]\n",
			want: "ref is required",
		},
		"forward ref": {
			doc:  "name: n\ndescription: d\nsteps: [{op: send_invitation, ref: i1}, {op: add_invitation, as: i1}]\n",
			want: `ref "i1" is not defined`,
		},
		"unknown query": {
			doc:  "name: n\ndescription: d\nsteps: [{op: add_request}]\nassertions: [{name: a, query: everything}]\n",
			want: `unknown query "everything"`,
		},
		"unknown alias in assertion": {
			doc:  "name: n\ndescription: d\nsteps: [{op: add_request}]\nassertions: [{name: a, query: get_requests, expect: [r9]}]\n",
			want: `alias "r9" is not defined`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
