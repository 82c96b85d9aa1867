package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
)

// filterFlags binds the query options shared by list, user, from and delete.
type filterFlags struct {
	ids, users, inviters, items, secondary []int64
	emails, components, actions            []string

	typ, sent, accepted, search, orderBy, sortOrder string
	page, perPage                                   int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64SliceVar(&f.ids, "id", nil, "record ids")
	fs.Int64SliceVar(&f.users, "user", nil, "invitee or requester user ids")
	fs.Int64SliceVar(&f.inviters, "inviter", nil, "inviter user ids")
	fs.StringSliceVar(&f.emails, "email", nil, "invitee e-mail addresses")
	fs.StringSliceVar(&f.components, "component", nil, "component names")
	fs.StringSliceVar(&f.actions, "action", nil, "component actions")
	fs.Int64SliceVar(&f.items, "item", nil, "item ids")
	fs.Int64SliceVar(&f.secondary, "secondary", nil, "secondary item ids")
	fs.StringVar(&f.typ, "type", "", "invite|request")
	fs.StringVar(&f.sent, "sent", "", "all|draft|sent")
	fs.StringVar(&f.accepted, "accepted", "", "all|pending|accepted")
	fs.StringVar(&f.search, "search", "", "substring of content")
	fs.StringVar(&f.orderBy, "order-by", "", "column to sort by")
	fs.StringVar(&f.sortOrder, "sort", "", "ASC|DESC")
	fs.IntVar(&f.page, "page", 0, "page number (with --per-page)")
	fs.IntVar(&f.perPage, "per-page", 0, "page size")
}

func (f *filterFlags) filter() queryir.Filter {
	return queryir.Filter{
		IDs:              f.ids,
		UserIDs:          f.users,
		InviterIDs:       f.inviters,
		InviteeEmails:    f.emails,
		ComponentNames:   f.components,
		ComponentActions: f.actions,
		ItemIDs:          f.items,
		SecondaryItemIDs: f.secondary,
		Type:             invite.Type(f.typ),
		InviteSent:       queryir.SentStatus(f.sent),
		Accepted:         queryir.AcceptedStatus(f.accepted),
		SearchTerms:      f.search,
		OrderBy:          queryir.Column(f.orderBy),
		SortOrder:        queryir.SortOrder(f.sortOrder),
		Page:             f.page,
		PerPage:          f.perPage,
	}
}

// keyFlags binds the fields of an invitation key.
type keyFlags struct {
	user            int64
	email           string
	component       string
	action          string
	item, secondary int64
}

func (k *keyFlags) bind(cmd *cobra.Command, withEmail bool) {
	fs := cmd.Flags()
	fs.Int64Var(&k.user, "user", 0, "invitee or requester user id")
	if withEmail {
		fs.StringVar(&k.email, "email", "", "invitee e-mail address (when there is no user)")
	}
	fs.StringVar(&k.component, "component", "", "component name")
	fs.StringVar(&k.action, "action", "", "component action")
	fs.Int64Var(&k.item, "item", 0, "item id")
	fs.Int64Var(&k.secondary, "secondary", 0, "secondary item id")
}
