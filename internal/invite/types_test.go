package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"invite to user", Record{Type: TypeInvite, UserID: 3, InviterID: 1}, false},
		{"invite to email", Record{Type: TypeInvite, InviteeEmail: "a@example.com", InviterID: 1}, false},
		{"invite without invitee", Record{Type: TypeInvite, InviterID: 1}, true},
		{"invite without inviter", Record{Type: TypeInvite, UserID: 3}, true},
		{"request", Record{Type: TypeRequest, UserID: 3}, false},
		{"request without user", Record{Type: TypeRequest, InviteeEmail: "a@example.com"}, true},
		{"request with inviter", Record{Type: TypeRequest, UserID: 3, InviterID: 1}, true},
		{"unknown type", Record{Type: "offer", UserID: 3, InviterID: 1}, true},
		{"negative user", Record{Type: TypeInvite, UserID: -3, InviterID: 1}, true},
		{"user and email", Record{Type: TypeInvite, UserID: 3, InviteeEmail: "a@example.com", InviterID: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidArgument(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRecordNormalize_ForcesRequestInviter(t *testing.T) {
	r := Record{Type: TypeRequest, UserID: 4, InviterID: 9, InviteeEmail: "  Bob@Example.COM "}
	r.Normalize()

	assert.Equal(t, int64(0), r.InviterID)
	assert.Empty(t, r.InviteeEmail, "user records carry no e-mail")
	require.NoError(t, r.Validate())
}

func TestRecordNormalize_Email(t *testing.T) {
	r := Record{Type: TypeInvite, InviterID: 1, InviteeEmail: "  Bob@Example.COM "}
	r.Normalize()

	assert.Equal(t, "bob@example.com", r.InviteeEmail)
	require.NoError(t, r.Validate())
}

func TestRecordIdentity(t *testing.T) {
	assert.Equal(t, UserIdentity(5), Record{UserID: 5, InviteeEmail: "x@example.com"}.Identity())
	assert.Equal(t, EmailIdentity("x@example.com"), Record{InviteeEmail: "x@example.com"}.Identity())
	assert.True(t, Record{}.Identity().IsZero())
}

func TestKeyComplete(t *testing.T) {
	k := Record{UserID: 3, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1}.Key()
	assert.True(t, k.Complete())

	k.ItemID = 0
	assert.False(t, k.Complete())

	k = Record{ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1}.Key()
	assert.False(t, k.Complete())
}

func TestIdentityCacheKey(t *testing.T) {
	assert.Equal(t, "42", UserIdentity(42).CacheKey())
	assert.Equal(t, "jane%2Bx%40example.com", EmailIdentity("Jane+x@Example.com").CacheKey())
}

func TestNormalizeEmail_NFC(t *testing.T) {
	decomposed := "re\u0301my@example.com"
	composed := "r\u00e9my@example.com"
	assert.Equal(t, composed, NormalizeEmail(decomposed))
	assert.Equal(t, EmailIdentity(decomposed), EmailIdentity(composed))
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, LooksLikeEmail("a@b.c"))
	assert.False(t, LooksLikeEmail("@b.c"))
	assert.False(t, LooksLikeEmail("ab.c"))
	assert.False(t, LooksLikeEmail("a@"))
	assert.False(t, LooksLikeEmail("a b@c.d"))
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1}, IDs([]Record{{ID: 3}, {ID: 1}}))
	assert.Empty(t, IDs(nil))
}
