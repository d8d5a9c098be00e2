package database

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/princinho/knowledgebase/models"
	"github.com/princinho/knowledgebase/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var articleSort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}

// articleDoc is the stored form of an Article. SearchText holds the folded
// subject and body that FindMatching runs its regexes against.
type articleDoc struct {
	models.Article `bson:",inline"`
	SearchText     string `bson:"searchText"`
}

func searchText(subject, body string) string {
	return utils.FoldText(subject) + "\n" + utils.FoldText(body)
}

type mongoArticles struct {
	col     *mongo.Collection
	timeout time.Duration
}

func (s *mongoArticles) Insert(ctx context.Context, a *models.Article) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	if a.Attachments == nil {
		a.Attachments = []models.Attachment{}
	}
	doc := articleDoc{Article: *a, SearchText: searchText(a.Subject, a.Body)}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return storeErr("insert", ResourceArticle, a.ID.Hex(), err)
	}
	return nil
}

func (s *mongoArticles) FindByID(ctx context.Context, id string) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var a models.Article
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find", ResourceArticle, id, err)
	}
	return &a, nil
}

func (s *mongoArticles) List(ctx context.Context, f ArticleFilter) ([]models.Article, int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{}
	if f.Product != "" {
		filter["product"] = f.Product
	}

	items, err := s.find(ctx, "list", filter, findOptions(f.Page, articleSort))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeErr("count", ResourceArticle, "", err)
	}
	return items, total, nil
}

func (s *mongoArticles) FindMatching(ctx context.Context, terms []string) ([]models.Article, error) {
	if len(terms) == 0 {
		return []models.Article{}, nil
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	or := bson.A{}
	for _, t := range terms {
		re := bson.Regex{Pattern: regexp.QuoteMeta(utils.FoldText(t)), Options: "i"}
		or = append(or, bson.M{"searchText": re})
	}
	return s.find(ctx, "search", bson.M{"$or": or})
}

func (s *mongoArticles) find(ctx context.Context, op string, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]models.Article, error) {
	cursor, err := s.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, storeErr(op, ResourceArticle, "", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Article, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeErr(op, ResourceArticle, "", err)
	}
	return items, nil
}

func (s *mongoArticles) Update(ctx context.Context, id string, ch ArticleChanges, at time.Time) (*models.Article, error) {
	set := bson.M{"updatedAt": at}
	if ch.Product != nil {
		set["product"] = *ch.Product
	}
	if ch.Subject != nil {
		set["subject"] = *ch.Subject
	}
	if ch.Body != nil {
		set["body"] = *ch.Body
	}
	if ch.Date != nil {
		set["date"] = *ch.Date
	}
	a, err := s.findAndUpdate(ctx, "update", id, bson.M{}, bson.M{"$set": set})
	if err != nil || (ch.Subject == nil && ch.Body == nil) {
		return a, err
	}
	return a, s.refreshSearchText(ctx, a)
}

func (s *mongoArticles) refreshSearchText(ctx context.Context, a *models.Article) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{
		"$set": bson.M{"searchText": searchText(a.Subject, a.Body)},
	})
	if err != nil {
		return storeErr("update", ResourceArticle, a.ID.Hex(), err)
	}
	return nil
}

func (s *mongoArticles) PushAttachments(ctx context.Context, id string, atts []models.Attachment, at time.Time) (*models.Article, error) {
	return s.findAndUpdate(ctx, "push-attachments", id, bson.M{}, bson.M{
		"$push": bson.M{"attachments": bson.M{"$each": atts}},
		"$set":  bson.M{"updatedAt": at},
	})
}

func (s *mongoArticles) PullAttachment(ctx context.Context, id, attachmentID string, at time.Time) (*models.Article, error) {
	return s.findAndUpdate(ctx, "pull-attachment", id, bson.M{"attachments.id": attachmentID}, bson.M{
		"$pull": bson.M{"attachments": bson.M{"id": attachmentID}},
		"$set":  bson.M{"updatedAt": at},
	})
}

func (s *mongoArticles) findAndUpdate(ctx context.Context, op, id string, extra, update bson.M) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	var a models.Article
	if err := s.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(op, ResourceArticle, id, err)
	}
	return &a, nil
}

func (s *mongoArticles) Delete(ctx context.Context, id string) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var a models.Article
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("delete", ResourceArticle, id, err)
	}
	return &a, nil
}
