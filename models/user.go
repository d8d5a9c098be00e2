package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is a closed set. The zero value is not a valid role.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Satisfies reports whether a holder of r may perform an operation that
// requires the given role. ADMIN satisfies USER.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USER":
		return RoleUser, nil
	case "ADMIN":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// MarshalText stores and serializes the role by name, so bson and json
// documents carry "USER" / "ADMIN".
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalBSONValue keeps the role a string in MongoDB.
func (r Role) MarshalBSONValue() (byte, []byte, error) {
	if !r.Valid() {
		return 0, nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	typ, data, err := bson.MarshalValue(r.String())
	return byte(typ), data, err
}

func (r *Role) UnmarshalBSONValue(typ byte, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(bson.Type(typ), data, &s); err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	IsActive     bool          `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
