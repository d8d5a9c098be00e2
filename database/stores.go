package database

import (
	"context"
	"time"

	"github.com/princinho/knowledgebase/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ResourceUser    = "user"
	ResourceArticle = "article"
	ResourceProduct = "product"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	// InsertIfAbsent creates u unless a user with the same email exists.
	InsertIfAbsent(ctx context.Context, u *models.User) (bool, error)
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string, at time.Time) error
	UpdateRole(ctx context.Context, id string, role models.Role, at time.Time) (*models.User, error)
}

// Page is a skip/limit window. Limit is always positive.
type Page struct {
	Skip  int64
	Limit int64
}

type ArticleFilter struct {
	Product string
	Page    Page
}

// ArticleChanges is a partial update; nil fields are left untouched.
type ArticleChanges struct {
	Product *string
	Subject *string
	Body    *string
	Date    *time.Time
}

type ArticleStore interface {
	Insert(ctx context.Context, a *models.Article) error
	FindByID(ctx context.Context, id string) (*models.Article, error)
	// List returns one page sorted by date desc then id asc, and the total
	// number of matching articles.
	List(ctx context.Context, f ArticleFilter) ([]models.Article, int64, error)
	// FindMatching returns every article whose subject or body contains any
	// of terms, case-insensitively. It is a candidate set; ranking is the
	// caller's job.
	FindMatching(ctx context.Context, terms []string) ([]models.Article, error)
	Update(ctx context.Context, id string, ch ArticleChanges, at time.Time) (*models.Article, error)
	// Delete returns the removed article so callers can clean up its objects.
	Delete(ctx context.Context, id string) (*models.Article, error)
	PushAttachments(ctx context.Context, id string, atts []models.Attachment, at time.Time) (*models.Article, error)
	PullAttachment(ctx context.Context, id, attachmentID string, at time.Time) (*models.Article, error)
}

// ProductChanges: a non-nil empty Description removes the description.
type ProductChanges struct {
	Name        *string
	Description *string
}

type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, p Page) ([]models.Product, int64, error)
	Update(ctx context.Context, id string, ch ProductChanges, at time.Time) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// Stores groups one store per resource kind.
type Stores struct {
	Kind     string
	Users    UserStore
	Articles ArticleStore
	Products ProductStore
}

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrNotFound
	}
	return oid, nil
}
