// Package harness runs invitation scenarios written in YAML against a real
// engine and compares their traces with golden files.
//
// # Scenario Format
//
//	name: send_after_request
//	description: "Sending an invitation accepts a pending request"
//	components:
//	  - name: groups
//	    active: true
//	    invitation_callback: groups_invitations
//	steps:
//	  - op: add_invitation
//	    as: i1
//	    args: { user_id: 3, inviter_id: 1, component_name: cakes, component_action: cupcakes, item_id: 1 }
//	  - op: add_request
//	    as: r1
//	    args: { user_id: 3, component_name: cakes, component_action: cupcakes, item_id: 1 }
//	  - op: send_invitation
//	    ref: i1
//	    expect: { count: 2 }
//	assertions:
//	  - name: both accepted
//	    query: get_invitations
//	    filter: { user_id: [3], accepted: accepted }
//	    expect: [i1, r1]
//
// Steps create records under an alias (as) and address existing records by
// alias (ref). A step's expect clause checks the error code, the affected
// count, or the state of the returned record. Assertions run a query and
// compare the aliases of the result with the expected set; with ordered the
// order must match as well. registered_components assertions compare
// component names instead of aliases.
//
// # Determinism
//
// Every run uses a fresh in-memory store, a memory cache and the
// deterministic clock from testutil, so ids and traces are reproducible and
// can be compared byte for byte with testdata/golden.
package harness
