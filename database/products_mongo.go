package database

import (
	"context"
	"errors"
	"time"

	"github.com/princinho/knowledgebase/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type mongoProducts struct {
	col     *mongo.Collection
	timeout time.Duration
}

func (s *mongoProducts) Insert(ctx context.Context, p *models.Product) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return storeErr("insert", ResourceProduct, p.ID.Hex(), err)
	}
	return nil
}

func (s *mongoProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var p models.Product
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find", ResourceProduct, id, err)
	}
	return &p, nil
}

func (s *mongoProducts) List(ctx context.Context, page Page) ([]models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{}
	cursor, err := s.col.Find(ctx, filter, findOptions(page, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, 0, storeErr("list", ResourceProduct, "", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Product, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, storeErr("list", ResourceProduct, "", err)
	}

	// Total count for pagination UI
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeErr("count", ResourceProduct, "", err)
	}
	return items, total, nil
}

func (s *mongoProducts) Update(ctx context.Context, id string, ch ProductChanges, at time.Time) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	set := bson.M{"updatedAt": at}
	update := bson.M{}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Description != nil {
		if *ch.Description == "" {
			update["$unset"] = bson.M{"description": ""}
		} else {
			set["description"] = *ch.Description
		}
	}
	update["$set"] = set

	var p models.Product
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, afterUpdate()).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update", ResourceProduct, id, err)
	}
	return &p, nil
}

func (s *mongoProducts) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete", ResourceProduct, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
