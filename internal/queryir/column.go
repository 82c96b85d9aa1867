package queryir

import "github.com/roach88/invitations/internal/invite"

// Column names a field of the invitations table.
type Column string

const (
	ColID              Column = "id"
	ColUserID          Column = "user_id"
	ColInviterID       Column = "inviter_id"
	ColInviteeEmail    Column = "invitee_email"
	ColComponentName   Column = "component_name"
	ColComponentAction Column = "component_action"
	ColItemID          Column = "item_id"
	ColSecondaryItemID Column = "secondary_item_id"
	ColType            Column = "type"
	ColContent         Column = "content"
	ColDateModified    Column = "date_modified"
	ColInviteSent      Column = "invite_sent"
	ColAccepted        Column = "accepted"
)

// Columns lists every column in table order.
var Columns = []Column{
	ColID, ColUserID, ColInviterID, ColInviteeEmail, ColComponentName,
	ColComponentAction, ColItemID, ColSecondaryItemID, ColType, ColContent,
	ColDateModified, ColInviteSent, ColAccepted,
}

// Valid reports whether c names a known column.
func (c Column) Valid() bool {
	for _, col := range Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Text reports whether the column holds text.
func (c Column) Text() bool {
	switch c {
	case ColInviteeEmail, ColComponentName, ColComponentAction, ColType, ColContent:
		return true
	}
	return false
}

// Value extracts the column from r in its storage representation: int64
// for ids and timestamps (unix nanoseconds), string for text, bool for
// flags.
func (c Column) Value(r invite.Record) any {
	switch c {
	case ColID:
		return r.ID
	case ColUserID:
		return r.UserID
	case ColInviterID:
		return r.InviterID
	case ColInviteeEmail:
		return r.InviteeEmail
	case ColComponentName:
		return r.ComponentName
	case ColComponentAction:
		return r.ComponentAction
	case ColItemID:
		return r.ItemID
	case ColSecondaryItemID:
		return r.SecondaryItemID
	case ColType:
		return string(r.Type)
	case ColContent:
		return r.Content
	case ColDateModified:
		return r.DateModified.UnixNano()
	case ColInviteSent:
		return r.InviteSent
	case ColAccepted:
		return r.Accepted
	}
	return nil
}
