package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/models"
)

type ProductService struct {
	store database.ProductStore
	log   *slog.Logger
	now   func() time.Time
}

func NewProductService(store database.ProductStore, log *slog.Logger) *ProductService {
	return &ProductService{store: store, log: log, now: time.Now}
}

func (s *ProductService) Get(ctx context.Context, sess *auth.Session, id string) (*models.Product, error) {
	if err := authorize(sess, database.ResourceProduct, OpRead); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, sess *auth.Session, p database.Page) ([]models.Product, int64, error) {
	if err := authorize(sess, database.ResourceProduct, OpRead); err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, p)
}

func (s *ProductService) Create(ctx context.Context, sess *auth.Session, d *dto.CreateProductDTO) (*models.Product, error) {
	if err := authorize(sess, database.ResourceProduct, OpCreate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Product{
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "product created", "id", p.ID.Hex(), "by", sess.UserID)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, sess *auth.Session, id string, d *dto.UpdateProductDTO) (*models.Product, error) {
	if err := authorize(sess, database.ResourceProduct, OpUpdate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.Update(ctx, id, database.ProductChanges{Name: d.Name, Description: d.Description}, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "product updated", "id", id, "by", sess.UserID)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	if err := authorize(sess, database.ResourceProduct, OpDelete); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "product deleted", "id", id, "by", sess.UserID)
	return nil
}
