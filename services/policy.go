package services

import (
	"errors"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
)

// ErrNotFound is returned when the addressed entity does not exist.
var ErrNotFound = database.ErrNotFound

// ErrAttachmentsDisabled is returned when no object storage is configured.
var ErrAttachmentsDisabled = errors.New("attachments are not configured")

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// policy is the role each operation needs, per resource kind.
var policy = map[string]map[Operation]auth.Requirement{
	database.ResourceArticle: {
		OpRead:   auth.Public,
		OpCreate: auth.AdminOnly,
		OpUpdate: auth.AdminOnly,
		OpDelete: auth.AdminOnly,
	},
	database.ResourceProduct: {
		OpRead:   auth.Public,
		OpCreate: auth.AdminOnly,
		OpUpdate: auth.AdminOnly,
		OpDelete: auth.AdminOnly,
	},
	database.ResourceUser: {
		OpRead:   auth.AdminOnly,
		OpCreate: auth.AdminOnly,
		OpUpdate: auth.AdminOnly,
		OpDelete: auth.AdminOnly,
	},
}

// Requirement looks up the policy; anything not listed needs ADMIN.
func Requirement(resource string, op Operation) auth.Requirement {
	if ops, ok := policy[resource]; ok {
		if req, ok := ops[op]; ok {
			return req
		}
	}
	return auth.AdminOnly
}

func authorize(s *auth.Session, resource string, op Operation) error {
	return auth.Authorize(s, Requirement(resource, op)).Err()
}
