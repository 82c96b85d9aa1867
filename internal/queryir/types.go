package queryir

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/invitations/internal/invite"
)

// SentStatus filters on the invite_sent column.
type SentStatus string

const (
	SentAll   SentStatus = "all"
	SentDraft SentStatus = "draft"
	SentSent  SentStatus = "sent"
)

// AcceptedStatus filters on the accepted column.
type AcceptedStatus string

const (
	AcceptedAll      AcceptedStatus = "all"
	AcceptedPending  AcceptedStatus = "pending"
	AcceptedAccepted AcceptedStatus = "accepted"
)

// SortOrder is the direction of OrderBy.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// Filter enumerates every recognised query option.
//
// Slice fields are OR-matched sets; an empty slice places no constraint on
// the column. The zero value of the scalar options means "use the default":
// InviteSent=all, Accepted=pending, OrderBy=id, SortOrder=ASC, no paging.
type Filter struct {
	IDs              []int64  `json:"id,omitempty" yaml:"id,omitempty"`
	UserIDs          []int64  `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	InviterIDs       []int64  `json:"inviter_id,omitempty" yaml:"inviter_id,omitempty"`
	InviteeEmails    []string `json:"invitee_email,omitempty" yaml:"invitee_email,omitempty"`
	ComponentNames   []string `json:"component_name,omitempty" yaml:"component_name,omitempty"`
	ComponentActions []string `json:"component_action,omitempty" yaml:"component_action,omitempty"`
	ItemIDs          []int64  `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	SecondaryItemIDs []int64  `json:"secondary_item_id,omitempty" yaml:"secondary_item_id,omitempty"`

	Type        invite.Type    `json:"type,omitempty" yaml:"type,omitempty"`
	InviteSent  SentStatus     `json:"invite_sent,omitempty" yaml:"invite_sent,omitempty"`
	Accepted    AcceptedStatus `json:"accepted,omitempty" yaml:"accepted,omitempty"`
	SearchTerms string         `json:"search_terms,omitempty" yaml:"search_terms,omitempty"`

	OrderBy   Column    `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	SortOrder SortOrder `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
	Page      int       `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage   int       `json:"per_page,omitempty" yaml:"per_page,omitempty"`
}

// Normalize returns a copy of f with defaults applied and e-mails
// canonicalised. Normalize is idempotent.
func (f Filter) Normalize() Filter {
	if f.InviteSent == "" {
		f.InviteSent = SentAll
	}
	if f.Accepted == "" {
		f.Accepted = AcceptedPending
	}
	if f.OrderBy == "" {
		f.OrderBy = ColID
	}
	f.SortOrder = SortOrder(strings.ToUpper(string(f.SortOrder)))
	if f.SortOrder == "" {
		f.SortOrder = Asc
	}
	if len(f.InviteeEmails) > 0 {
		// A blank address stays in the set and matches invitee_email = ''.
		emails := make([]string, len(f.InviteeEmails))
		for i, e := range f.InviteeEmails {
			emails[i] = invite.NormalizeEmail(e)
		}
		f.InviteeEmails = emails
	}
	return f
}

// Validate checks the enumerated options of a normalised filter.
func (f Filter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return invalid("unknown type %q", f.Type)
	}
	switch f.InviteSent {
	case SentAll, SentDraft, SentSent:
	default:
		return invalid("unknown invite_sent %q", f.InviteSent)
	}
	switch f.Accepted {
	case AcceptedAll, AcceptedPending, AcceptedAccepted:
	default:
		return invalid("unknown accepted %q", f.Accepted)
	}
	if !f.OrderBy.Valid() {
		return invalid("cannot order by %q", f.OrderBy)
	}
	if f.SortOrder != Asc && f.SortOrder != Desc {
		return invalid("unknown sort_order %q", f.SortOrder)
	}
	if f.Page < 0 || f.PerPage < 0 {
		return invalid("page and per_page must not be negative")
	}
	return nil
}

// Paginated reports whether both Page and PerPage are set.
func (f Filter) Paginated() bool {
	return f.Page > 0 && f.PerPage > 0
}

// Offset returns the number of rows skipped by pagination. Pages beyond
// the addressable range saturate at math.MaxInt.
func (f Filter) Offset() int {
	if !f.Paginated() {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}

// ForKey returns a filter matching exactly the records sharing key, in any
// accepted state and either type.
func ForKey(key invite.Key) Filter {
	f := Filter{
		ComponentNames:   []string{key.ComponentName},
		ComponentActions: []string{key.ComponentAction},
		ItemIDs:          []int64{key.ItemID},
		SecondaryItemIDs: []int64{key.SecondaryItemID},
		InviteSent:       SentAll,
		Accepted:         AcceptedAll,
	}
	if key.Identity.UserID != 0 {
		f.UserIDs = []int64{key.Identity.UserID}
	} else {
		f.UserIDs = []int64{0}
		f.InviteeEmails = []string{key.Identity.Email}
	}
	return f
}

// ByID returns a filter matching a single id in any state.
func ByID(id int64) Filter {
	return Filter{IDs: []int64{id}, InviteSent: SentAll, Accepted: AcceptedAll}
}

// Merge overlays the non-zero options of o onto f. Sets in o replace sets
// in f; they are not unioned.
func (f Filter) Merge(o Filter) Filter {
	if o.IDs != nil {
		f.IDs = o.IDs
	}
	if o.UserIDs != nil {
		f.UserIDs = o.UserIDs
	}
	if o.InviterIDs != nil {
		f.InviterIDs = o.InviterIDs
	}
	if o.InviteeEmails != nil {
		f.InviteeEmails = o.InviteeEmails
	}
	if o.ComponentNames != nil {
		f.ComponentNames = o.ComponentNames
	}
	if o.ComponentActions != nil {
		f.ComponentActions = o.ComponentActions
	}
	if o.ItemIDs != nil {
		f.ItemIDs = o.ItemIDs
	}
	if o.SecondaryItemIDs != nil {
		f.SecondaryItemIDs = o.SecondaryItemIDs
	}
	if o.Type != "" {
		f.Type = o.Type
	}
	if o.InviteSent != "" {
		f.InviteSent = o.InviteSent
	}
	if o.Accepted != "" {
		f.Accepted = o.Accepted
	}
	if o.SearchTerms != "" {
		f.SearchTerms = o.SearchTerms
	}
	if o.OrderBy != "" {
		f.OrderBy = o.OrderBy
	}
	if o.SortOrder != "" {
		f.SortOrder = o.SortOrder
	}
	if o.Page != 0 {
		f.Page = o.Page
	}
	if o.PerPage != 0 {
		f.PerPage = o.PerPage
	}
	return f
}

func invalid(format string, args ...any) error {
	return invite.InvalidArgument("filter", fmt.Sprintf(format, args...))
}
