package engine

import (
	"github.com/roach88/invitations/internal/invite"
)

// InvitationArgs describes an invitation to add. Set UserID for a
// registered invitee, otherwise InviteeEmail.
type InvitationArgs struct {
	UserID          int64  `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	InviteeEmail    string `json:"invitee_email,omitempty" yaml:"invitee_email,omitempty"`
	InviterID       int64  `json:"inviter_id" yaml:"inviter_id"`
	ComponentName   string `json:"component_name" yaml:"component_name"`
	ComponentAction string `json:"component_action" yaml:"component_action"`
	ItemID          int64  `json:"item_id" yaml:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id,omitempty" yaml:"secondary_item_id,omitempty"`
	Content         string `json:"content,omitempty" yaml:"content,omitempty"`

	// Send sends the invitation as part of the add.
	Send bool `json:"invite_sent,omitempty" yaml:"invite_sent,omitempty"`
}

func (a InvitationArgs) record() invite.Record {
	r := invite.Record{
		UserID:          a.UserID,
		InviterID:       a.InviterID,
		InviteeEmail:    a.InviteeEmail,
		ComponentName:   a.ComponentName,
		ComponentAction: a.ComponentAction,
		ItemID:          a.ItemID,
		SecondaryItemID: a.SecondaryItemID,
		Type:            invite.TypeInvite,
		Content:         a.Content,
	}
	r.Normalize()
	return r
}

// RequestArgs describes a request to add. Requests have no inviter.
type RequestArgs struct {
	UserID          int64  `json:"user_id" yaml:"user_id"`
	ComponentName   string `json:"component_name" yaml:"component_name"`
	ComponentAction string `json:"component_action" yaml:"component_action"`
	ItemID          int64  `json:"item_id" yaml:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id,omitempty" yaml:"secondary_item_id,omitempty"`
	Content         string `json:"content,omitempty" yaml:"content,omitempty"`

	// InviteSent is stored as given; it has no delivery meaning for
	// requests.
	InviteSent bool `json:"invite_sent,omitempty" yaml:"invite_sent,omitempty"`
}

func (a RequestArgs) record() invite.Record {
	r := invite.Record{
		UserID:          a.UserID,
		ComponentName:   a.ComponentName,
		ComponentAction: a.ComponentAction,
		ItemID:          a.ItemID,
		SecondaryItemID: a.SecondaryItemID,
		Type:            invite.TypeRequest,
		Content:         a.Content,
		InviteSent:      a.InviteSent,
	}
	r.Normalize()
	return r
}

// AcceptArgs names the key to accept. SecondaryItemID is optional.
type AcceptArgs struct {
	UserID          int64  `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	InviteeEmail    string `json:"invitee_email,omitempty" yaml:"invitee_email,omitempty"`
	ComponentName   string `json:"component_name" yaml:"component_name"`
	ComponentAction string `json:"component_action" yaml:"component_action"`
	ItemID          int64  `json:"item_id" yaml:"item_id"`
	SecondaryItemID int64  `json:"secondary_item_id,omitempty" yaml:"secondary_item_id,omitempty"`
}

// Key returns the key the accept applies to.
func (a AcceptArgs) Key() invite.Key {
	id := invite.UserIdentity(a.UserID)
	if a.UserID == 0 {
		id = invite.EmailIdentity(a.InviteeEmail)
	}
	return invite.Key{
		Identity:        id,
		ComponentName:   a.ComponentName,
		ComponentAction: a.ComponentAction,
		ItemID:          a.ItemID,
		SecondaryItemID: a.SecondaryItemID,
	}
}

// AcceptArgsFor returns the accept arguments for key.
func AcceptArgsFor(key invite.Key) AcceptArgs {
	return AcceptArgs{
		UserID:          key.Identity.UserID,
		InviteeEmail:    key.Identity.Email,
		ComponentName:   key.ComponentName,
		ComponentAction: key.ComponentAction,
		ItemID:          key.ItemID,
		SecondaryItemID: key.SecondaryItemID,
	}
}
