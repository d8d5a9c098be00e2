package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserService struct {
	store  database.UserStore
	hasher *auth.Hasher
	log    *slog.Logger
	now    func() time.Time
}

func NewUserService(store database.UserStore, hasher *auth.Hasher, log *slog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, log: log, now: time.Now}
}

// Bootstrap creates an ADMIN user for email unless one with that email
// already exists. Calling it again is a no-op, not an error.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	d := &dto.RegisterUserDTO{Email: email, Password: password}
	if err := d.Validate(); err != nil {
		return false, err
	}

	if _, err := s.store.FindByEmail(ctx, d.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return false, err
	}

	u, err := s.newUser(ctx, d.Email, d.Password, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	return s.store.InsertIfAbsent(ctx, u)
}

func (s *UserService) Create(ctx context.Context, sess *auth.Session, d *dto.RegisterUserDTO) (*models.User, error) {
	if err := authorize(sess, database.ResourceUser, OpCreate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	role := models.RoleUser
	if d.Role != "" {
		r, err := models.ParseRole(d.Role)
		if err != nil {
			return nil, dto.NewValidationError("role", "Must be one of: USER ADMIN")
		}
		role = r
	}

	u, err := s.newUser(ctx, d.Email, d.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user created", "id", u.ID.Hex(), "role", u.Role.String(), "by", sess.UserID)
	return u, nil
}

// UpdateRole rotates a user's role. Tokens already issued keep the old
// role until they expire; a refresh picks up the new one.
func (s *UserService) UpdateRole(ctx context.Context, sess *auth.Session, id string, d *dto.UpdateRoleDTO) (*models.User, error) {
	if err := authorize(sess, database.ResourceUser, OpUpdate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(d.Role)
	if err != nil {
		return nil, dto.NewValidationError("role", "Must be one of: USER ADMIN")
	}
	u, err := s.store.UpdateRole(ctx, id, role, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user role changed", "id", id, "role", role.String(), "by", sess.UserID)
	return u, nil
}

// ChangePassword rotates the caller's own password after checking the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, sess *auth.Session, d *dto.ChangeMyPasswordDTO) error {
	if err := auth.Authorize(sess, auth.Authenticated).Err(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	user, err := s.store.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return auth.ErrUnauthenticated
		}
		return err
	}
	if !s.hasher.Verify(ctx, d.CurrentPassword, user.PasswordHash) {
		return dto.NewValidationError("currentPassword", "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(ctx, d.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "password changed", "id", user.ID.Hex())
	return nil
}

func (s *UserService) newUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &models.User{
		ID:           bson.NewObjectID(),
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
