// Package invite defines the record shared by every layer of the
// invitations core.
//
// A single Record type carries both invitations (an actor offering another
// actor access to an item) and requests (an actor asking for access). The
// Type field is the only discriminant; there is no second table.
//
// # Keys and identities
//
// The invitee side of a record is its Identity: a registered user id, or a
// normalised e-mail address when the invitee has no account. The Key groups
// an identity with the component, action, item and secondary item a record
// refers to. Keys drive duplicate detection and the accept cascade:
//
//	(identity, component_name, component_action, item_id, secondary_item_id)
//
// # Errors
//
// Failures are reported as *Error values with a Code. Callers branch with
// errors.Is against the Err* sentinels or with the Is* helpers; "no rows
// affected" is never an error.
package invite
