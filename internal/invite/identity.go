package invite

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity is the invitee side of a record: a user id or an e-mail address.
// The zero value is no identity.
type Identity struct {
	UserID int64
	Email  string
}

// UserIdentity returns the identity of a registered user.
func UserIdentity(id int64) Identity {
	return Identity{UserID: id}
}

// EmailIdentity returns the identity of an unregistered invitee.
func EmailIdentity(email string) Identity {
	return Identity{Email: NormalizeEmail(email)}
}

// IsZero reports whether neither a user nor an e-mail is set.
func (i Identity) IsZero() bool {
	return i.UserID == 0 && i.Email == ""
}

// IsEmail reports whether the identity is e-mail only.
func (i Identity) IsEmail() bool {
	return i.UserID == 0 && i.Email != ""
}

// CacheKey renders the identity for aggregate cache keys: the decimal user
// id, or the URL-escaped e-mail. The escaped form always contains "%40", so
// the two spaces never collide.
func (i Identity) CacheKey() string {
	if i.UserID != 0 {
		return strconv.FormatInt(i.UserID, 10)
	}
	return url.QueryEscape(i.Email)
}

func (i Identity) String() string {
	if i.UserID != 0 {
		return "user:" + strconv.FormatInt(i.UserID, 10)
	}
	if i.Email != "" {
		return "email:" + i.Email
	}
	return "none"
}

// NormalizeEmail trims, NFC-normalises and lower-cases an address so that
// visually identical addresses share a key.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(norm.NFC.String(email))
}

// LooksLikeEmail is a minimal shape check used before e-mail keyed lookups.
func LooksLikeEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}
