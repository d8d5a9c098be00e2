package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRoleSatisfies(t *testing.T) {
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))
	assert.True(t, RoleAdmin.Satisfies(RoleUser))
	assert.True(t, RoleUser.Satisfies(RoleUser))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.False(t, Role(0).Satisfies(RoleUser))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestRoleEncoding(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"ADMIN"}`, string(b))

	_, err = json.Marshal(Role(7))
	assert.Error(t, err)

	doc, err := bson.Marshal(User{Email: "a@x.com", Role: RoleUser})
	require.NoError(t, err)
	var raw bson.M
	require.NoError(t, bson.Unmarshal(doc, &raw))
	assert.Equal(t, "USER", raw["role"])

	var back User
	require.NoError(t, bson.Unmarshal(doc, &back))
	assert.Equal(t, RoleUser, back.Role)
}

func TestUserJSONHidesHash(t *testing.T) {
	b, err := json.Marshal(User{Email: "a@x.com", PasswordHash: "secret", Role: RoleUser})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
