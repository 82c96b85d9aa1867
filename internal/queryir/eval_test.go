package queryir

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/invitations/internal/invite"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleRecords() []invite.Record {
	return []invite.Record{
		{ID: 1, UserID: 3, InviterID: 1, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1, Type: invite.TypeInvite, InviteSent: true, DateModified: base.Add(3 * time.Minute)},
		{ID: 2, UserID: 3, InviterID: 2, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1, Type: invite.TypeInvite, DateModified: base.Add(1 * time.Minute)},
		{ID: 3, UserID: 3, ComponentName: "cakes", ComponentAction: "muffins", ItemID: 2, Type: invite.TypeRequest, Accepted: true, DateModified: base.Add(2 * time.Minute)},
		{ID: 4, InviteeEmail: "guest@example.com", InviterID: 1, ComponentName: "groups", ComponentAction: "join", ItemID: 7, Type: invite.TypeInvite, InviteSent: true, DateModified: base},
		{ID: 5, UserID: 8, InviterID: 1, ComponentName: "blogs", ComponentAction: "blog_invite", ItemID: 1, SecondaryItemID: 4, Type: invite.TypeInvite, DateModified: base.Add(2 * time.Minute)},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"defaults to pending", Filter{}, []int64{1, 2, 4, 5}},
		{"all states", Filter{Accepted: AcceptedAll}, []int64{1, 2, 3, 4, 5}},
		{"accepted only", Filter{Accepted: AcceptedAccepted}, []int64{3}},
		{"sent", Filter{InviteSent: SentSent}, []int64{1, 4}},
		{"draft", Filter{InviteSent: SentDraft}, []int64{2, 5}},
		{"user set", Filter{UserIDs: []int64{3, 8}}, []int64{1, 2, 5}},
		{"inviter", Filter{InviterIDs: []int64{1}, Accepted: AcceptedAll}, []int64{1, 4, 5}},
		{"email normalised", Filter{InviteeEmails: []string{"Guest@Example.com"}}, []int64{4}},
		{"component and action", Filter{ComponentNames: []string{"cakes"}, ComponentActions: []string{"cupcakes"}}, []int64{1, 2}},
		{"secondary item", Filter{SecondaryItemIDs: []int64{4}}, []int64{5}},
		{"type request", Filter{Type: invite.TypeRequest, Accepted: AcceptedAll}, []int64{3}},
		{"search name", Filter{SearchTerms: "blog"}, []int64{5}},
		{"search action", Filter{SearchTerms: "muff", Accepted: AcceptedAll}, []int64{3}},
		{"search case sensitive", Filter{SearchTerms: "Cakes"}, []int64{}},
		{"ids", Filter{IDs: []int64{5, 1}}, []int64{1, 5}},
		{"order desc", Filter{SortOrder: Desc}, []int64{5, 4, 2, 1}},
		{"order by date", Filter{OrderBy: ColDateModified}, []int64{4, 2, 5, 1}},
		{"order by date desc ties by id", Filter{OrderBy: ColDateModified, SortOrder: Desc, Accepted: AcceptedAll}, []int64{1, 3, 5, 2, 4}},
		{"order by text", Filter{OrderBy: ColComponentName}, []int64{5, 1, 2, 4}},
		{"order by bool", Filter{OrderBy: ColInviteSent}, []int64{2, 5, 1, 4}},
		{"page 1", Filter{Page: 1, PerPage: 3}, []int64{1, 2, 4}},
		{"page 2", Filter{Page: 2, PerPage: 3}, []int64{5}},
		{"page past end", Filter{Page: 3, PerPage: 3}, []int64{}},
		{"per_page without page is unpaginated", Filter{PerPage: 1}, []int64{1, 2, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.filter, sampleRecords())
			assert.Equal(t, tt.want, invite.IDs(got))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	recs := sampleRecords()
	_ = Apply(Filter{SortOrder: Desc}, recs)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, invite.IDs(recs))
}

func TestMatch(t *testing.T) {
	r := sampleRecords()[0]
	assert.True(t, Match(Filter{UserIDs: []int64{3}}, r))
	assert.False(t, Match(Filter{UserIDs: []int64{4}}, r))
	assert.True(t, Match(Filter{UserIDs: []int64{3}, Page: 9, PerPage: 1}, r), "paging is ignored")
}

func TestEval_EmptyIn(t *testing.T) {
	assert.False(t, Eval(In{Column: ColID}, invite.Record{ID: 1}))
	assert.True(t, Eval(And{}, invite.Record{ID: 1}))
	assert.True(t, Eval(nil, invite.Record{ID: 1}))
}

func TestApply_HugePage(t *testing.T) {
	for _, f := range []Filter{
		{Accepted: AcceptedAll, Page: 1<<62 + 1, PerPage: 2},
		{Accepted: AcceptedAll, Page: math.MaxInt, PerPage: math.MaxInt},
		{Accepted: AcceptedAll, Page: 1, PerPage: math.MaxInt},
	} {
		assert.NotPanics(t, func() { Apply(f, sampleRecords()) })
	}
	assert.Empty(t, Apply(Filter{Accepted: AcceptedAll, Page: 1<<62 + 1, PerPage: 2}, sampleRecords()))
	assert.Len(t, Apply(Filter{Accepted: AcceptedAll, Page: 1, PerPage: math.MaxInt}, sampleRecords()), 5)
}

func TestApply_BlankEmailIsAConstraint(t *testing.T) {
	for _, blank := range []string{"", "   "} {
		got := Apply(Filter{InviteeEmails: []string{blank}, Accepted: AcceptedAll}, sampleRecords())
		assert.Equal(t, []int64{1, 2, 3, 5}, invite.IDs(got), "blank %q matches only rows without an address", blank)
	}
	got := Apply(Filter{UserIDs: []int64{0}, InviteeEmails: []string{""}}, sampleRecords())
	assert.Empty(t, got)
}
