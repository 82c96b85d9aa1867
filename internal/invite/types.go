package invite

import (
	"fmt"
	"time"
)

// Type discriminates invitations from requests.
type Type string

const (
	// TypeInvite is an offer extended by an inviter.
	TypeInvite Type = "invite"

	// TypeRequest is an ask made by the requester for itself.
	TypeRequest Type = "request"
)

// Valid reports whether t is one of the known record types.
func (t Type) Valid() bool {
	return t == TypeInvite || t == TypeRequest
}

// Record is one row of the invitations table.
//
// UserID and InviteeEmail are mutually exclusive in practice: e-mail only
// invitations have UserID 0. Requests always carry a UserID and never an
// inviter.
type Record struct {
	ID              int64     `json:"id" yaml:"id"`
	UserID          int64     `json:"user_id" yaml:"user_id"`
	InviterID       int64     `json:"inviter_id" yaml:"inviter_id"`
	InviteeEmail    string    `json:"invitee_email" yaml:"invitee_email"`
	ComponentName   string    `json:"component_name" yaml:"component_name"`
	ComponentAction string    `json:"component_action" yaml:"component_action"`
	ItemID          int64     `json:"item_id" yaml:"item_id"`
	SecondaryItemID int64     `json:"secondary_item_id" yaml:"secondary_item_id"`
	Type            Type      `json:"type" yaml:"type"`
	Content         string    `json:"content" yaml:"content"`
	DateModified    time.Time `json:"date_modified" yaml:"date_modified"`
	InviteSent      bool      `json:"invite_sent" yaml:"invite_sent"`
	Accepted        bool      `json:"accepted" yaml:"accepted"`
}

// Identity returns the invitee-side identity of the record.
func (r Record) Identity() Identity {
	if r.UserID != 0 {
		return UserIdentity(r.UserID)
	}
	return EmailIdentity(r.InviteeEmail)
}

// Key returns the matching key shared by an invitation and the request it
// reconciles with.
func (r Record) Key() Key {
	return Key{
		Identity:        r.Identity(),
		ComponentName:   r.ComponentName,
		ComponentAction: r.ComponentAction,
		ItemID:          r.ItemID,
		SecondaryItemID: r.SecondaryItemID,
	}
}

// Normalize canonicalises the e-mail and forces the identity and request
// invariants. A record addressed to a user carries no e-mail.
func (r *Record) Normalize() {
	r.InviteeEmail = NormalizeEmail(r.InviteeEmail)
	if r.UserID != 0 {
		r.InviteeEmail = ""
	}
	if r.Type == TypeRequest {
		r.InviterID = 0
	}
}

// Validate checks the per-type required fields.
//
// Invitations need an invitee (user or e-mail) and a non-zero inviter.
// Requests need a user.
func (r Record) Validate() error {
	switch r.Type {
	case TypeInvite:
		if r.UserID == 0 && r.InviteeEmail == "" {
			return InvalidArgument("validate", "invitation requires user_id or invitee_email")
		}
		if r.InviterID == 0 {
			return InvalidArgument("validate", "invitation requires inviter_id")
		}
	case TypeRequest:
		if r.UserID == 0 {
			return InvalidArgument("validate", "request requires user_id")
		}
		if r.InviterID != 0 {
			return InvalidArgument("validate", "request cannot have an inviter")
		}
	default:
		return InvalidArgument("validate", fmt.Sprintf("unknown type %q", r.Type))
	}
	if r.UserID < 0 || r.InviterID < 0 {
		return InvalidArgument("validate", "ids must not be negative")
	}
	if r.UserID != 0 && r.InviteeEmail != "" {
		return InvalidArgument("validate", "user_id and invitee_email are mutually exclusive")
	}
	return nil
}

// Key identifies the logical invitation+request pair.
type Key struct {
	Identity        Identity
	ComponentName   string
	ComponentAction string
	ItemID          int64
	SecondaryItemID int64
}

// Complete reports whether the key carries everything an accept needs.
// SecondaryItemID is optional.
func (k Key) Complete() bool {
	return !k.Identity.IsZero() && k.ComponentName != "" && k.ComponentAction != "" && k.ItemID != 0
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%d/%d", k.Identity, k.ComponentName, k.ComponentAction, k.ItemID, k.SecondaryItemID)
}

// IDs returns the ids of recs in order.
func IDs(recs []Record) []int64 {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}
