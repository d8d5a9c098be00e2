package database

import (
	"context"
	"errors"
	"time"

	"github.com/princinho/knowledgebase/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoUsers struct {
	col     *mongo.Collection
	timeout time.Duration
}

func (s *mongoUsers) findOne(ctx context.Context, op, id string, filter bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(op, ResourceUser, id, err)
	}
	return &u, nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return s.findOne(ctx, "find-by-email", "", bson.M{"email": email})
}

func (s *mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, "find", id, bson.M{"_id": oid})
}

func (s *mongoUsers) Insert(ctx context.Context, u *models.User) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	u.Email = models.NormalizeEmail(u.Email)
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, u); err != nil {
		if IsDuplicateKey(err) {
			return storeErr("insert", ResourceUser, u.ID.Hex(), ErrDuplicate)
		}
		return storeErr("insert", ResourceUser, u.ID.Hex(), err)
	}
	return nil
}

func (s *mongoUsers) InsertIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	u.Email = models.NormalizeEmail(u.Email)
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}

	// Only insert if it doesn't exist
	filter := bson.M{"email": u.Email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":          u.ID,
			"email":        u.Email,
			"passwordHash": u.PasswordHash,
			"role":         u.Role,
			"isActive":     u.IsActive,
			"createdAt":    u.CreatedAt,
			"updatedAt":    u.UpdatedAt,
		},
	}

	res, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, storeErr("upsert", ResourceUser, "", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *mongoUsers) UpdatePassword(ctx context.Context, id bson.ObjectID, hash string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"updatedAt":    at,
		},
	})
	if err != nil {
		return storeErr("update-password", ResourceUser, id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) UpdateRole(ctx context.Context, id string, role models.Role, at time.Time) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var u models.User
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"role": role, "updatedAt": at},
	}, afterUpdate()).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update-role", ResourceUser, id, err)
	}
	return &u, nil
}
