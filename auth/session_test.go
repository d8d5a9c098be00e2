package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var testIssuerConfig = IssuerConfig{
	AccessSecret:  []byte("access-secret-that-is-32-bytes-long!"),
	RefreshSecret: []byte("refresh-secret-that-is-32-bytes-long"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    24 * time.Hour,
	Issuer:        "kb-test",
}

func newTestIssuer(t *testing.T) (*Issuer, database.UserStore, *models.User) {
	t.Helper()
	h, err := NewHasher(MinBcryptCost, 4)
	require.NoError(t, err)
	users := database.NewMemoryStores().Users

	digest, err := h.Hash(context.Background(), "Secr3tPass")
	require.NoError(t, err)
	u := &models.User{
		ID:           bson.NewObjectID(),
		Email:        "admin@x.com",
		PasswordHash: digest,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, users.Insert(context.Background(), u))
	return NewIssuer(users, h, testIssuerConfig), users, u
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss, _, u := newTestIssuer(t)

	tokens, err := iss.Issue(context.Background(), "  ADMIN@x.com ", "Secr3tPass")
	require.NoError(t, err)

	s := iss.Verify(tokens.AccessToken)
	require.NotNil(t, s)
	assert.Equal(t, u.ID.Hex(), s.UserID)
	assert.Equal(t, models.RoleAdmin, s.Role)
	assert.Equal(t, "admin@x.com", s.Email)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 15*time.Minute, s.ExpiresAt.Sub(s.IssuedAt))
}

func TestIssueInvalidCredentials(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	ctx := context.Background()

	_, errUnknown := iss.Issue(ctx, "nobody@x.com", "Secr3tPass")
	_, errWrong := iss.Issue(ctx, "admin@x.com", "wrong")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestIssueDisabledAccount(t *testing.T) {
	h, err := NewHasher(MinBcryptCost, 1)
	require.NoError(t, err)
	users := database.NewMemoryStores().Users
	digest, err := h.Hash(context.Background(), "Secr3tPass")
	require.NoError(t, err)
	require.NoError(t, users.Insert(context.Background(), &models.User{
		Email: "off@x.com", PasswordHash: digest, Role: models.RoleUser, IsActive: false,
	}))

	_, err = NewIssuer(users, h, testIssuerConfig).Issue(context.Background(), "off@x.com", "Secr3tPass")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	tokens, err := iss.Issue(context.Background(), "admin@x.com", "Secr3tPass")
	require.NoError(t, err)

	assert.Nil(t, iss.Verify(""))
	assert.Nil(t, iss.Verify("not.a.token"))

	// tampered payload
	parts := strings.Split(tokens.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	assert.Nil(t, iss.Verify(tampered))

	// the refresh token is not an access token
	assert.Nil(t, iss.Verify(tokens.RefreshToken))

	// signed with another secret
	other := NewIssuer(nil, nil, IssuerConfig{
		AccessSecret:  []byte("some-other-secret-32-bytes-long!!!!"),
		RefreshSecret: testIssuerConfig.RefreshSecret,
		AccessTTL:     time.Minute,
		Issuer:        "kb-test",
	})
	assert.Nil(t, other.Verify(tokens.AccessToken))

	// alg=none
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: models.RoleAdmin,
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			Issuer:    "kb-test",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Nil(t, iss.Verify(unsigned))
}

func TestVerifyAfterExpiry(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	tokens, err := iss.Issue(context.Background(), "admin@x.com", "Secr3tPass")
	require.NoError(t, err)

	later := iss.WithClock(func() time.Time { return time.Now().Add(16 * time.Minute) })
	assert.Nil(t, later.Verify(tokens.AccessToken))
	assert.NotNil(t, iss.Verify(tokens.AccessToken))
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	iss, users, u := newTestIssuer(t)
	ctx := context.Background()
	tokens, err := iss.Issue(ctx, "admin@x.com", "Secr3tPass")
	require.NoError(t, err)

	_, err = users.UpdateRole(ctx, u.ID.Hex(), models.RoleUser, time.Now())
	require.NoError(t, err)

	// the outstanding token keeps its snapshot
	assert.Equal(t, models.RoleAdmin, iss.Verify(tokens.AccessToken).Role)

	refreshed, err := iss.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, iss.Verify(refreshed.AccessToken).Role)

	_, err = iss.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = iss.Refresh(ctx, "junk")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
