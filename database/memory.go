package database

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/princinho/knowledgebase/models"
	"github.com/princinho/knowledgebase/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewMemoryStores returns process-local stores for development and tests.
// They honour the same contracts as the MongoDB stores.
func NewMemoryStores() *Stores {
	return &Stores{
		Kind:     "memory",
		Users:    &memoryUsers{byID: map[bson.ObjectID]models.User{}},
		Articles: &memoryArticles{byID: map[bson.ObjectID]models.Article{}},
		Products: &memoryProducts{byID: map[bson.ObjectID]models.Product{}},
	}
}

type memoryUsers struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]models.User
}

func (s *memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("find-by-email", ResourceUser, "", err)
	}
	email = models.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memoryUsers) Insert(ctx context.Context, u *models.User) error {
	created, err := s.InsertIfAbsent(ctx, u)
	if err != nil {
		return err
	}
	if !created {
		return storeErr("insert", ResourceUser, u.ID.Hex(), ErrDuplicate)
	}
	return nil
}

func (s *memoryUsers) InsertIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storeErr("insert", ResourceUser, "", err)
	}
	u.Email = models.NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return false, nil
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	s.byID[u.ID] = *u
	return true, nil
}

func (s *memoryUsers) UpdatePassword(_ context.Context, id bson.ObjectID, hash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	s.byID[id] = u
	return nil
}

func (s *memoryUsers) UpdateRole(_ context.Context, id string, role models.Role, at time.Time) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	s.byID[oid] = u
	return &u, nil
}

type memoryArticles struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]models.Article
}

func cloneArticle(a models.Article) *models.Article {
	a.Attachments = append([]models.Attachment{}, a.Attachments...)
	return &a
}

func compareArticles(a, b models.Article) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return strings.Compare(a.ID.Hex(), b.ID.Hex())
}

func (s *memoryArticles) Insert(ctx context.Context, a *models.Article) error {
	if err := ctx.Err(); err != nil {
		return storeErr("insert", ResourceArticle, "", err)
	}
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	if a.Attachments == nil {
		a.Attachments = []models.Attachment{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = *cloneArticle(*a)
	return nil
}

func (s *memoryArticles) FindByID(_ context.Context, id string) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneArticle(a), nil
}

func (s *memoryArticles) collect(keep func(models.Article) bool) []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Article, 0, len(s.byID))
	for _, a := range s.byID {
		if keep(a) {
			out = append(out, *cloneArticle(a))
		}
	}
	slices.SortFunc(out, compareArticles)
	return out
}

func (s *memoryArticles) List(ctx context.Context, f ArticleFilter) ([]models.Article, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, storeErr("list", ResourceArticle, "", err)
	}
	all := s.collect(func(a models.Article) bool {
		return f.Product == "" || a.Product == f.Product
	})
	return window(all, f.Page), int64(len(all)), nil
}

func (s *memoryArticles) FindMatching(ctx context.Context, terms []string) ([]models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("search", ResourceArticle, "", err)
	}
	folded := make([]string, len(terms))
	for i, t := range terms {
		folded[i] = utils.FoldText(t)
	}
	return s.collect(func(a models.Article) bool {
		subject, body := utils.FoldText(a.Subject), utils.FoldText(a.Body)
		for _, t := range folded {
			if strings.Contains(subject, t) || strings.Contains(body, t) {
				return true
			}
		}
		return false
	}), nil
}

func (s *memoryArticles) mutate(id string, fn func(a *models.Article) bool) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneArticle(a)
	if !fn(cp) {
		return nil, ErrNotFound
	}
	s.byID[oid] = *cp
	return cloneArticle(*cp), nil
}

func (s *memoryArticles) Update(_ context.Context, id string, ch ArticleChanges, at time.Time) (*models.Article, error) {
	return s.mutate(id, func(a *models.Article) bool {
		if ch.Product != nil {
			a.Product = *ch.Product
		}
		if ch.Subject != nil {
			a.Subject = *ch.Subject
		}
		if ch.Body != nil {
			a.Body = *ch.Body
		}
		if ch.Date != nil {
			a.Date = *ch.Date
		}
		a.UpdatedAt = at
		return true
	})
}

func (s *memoryArticles) PushAttachments(_ context.Context, id string, atts []models.Attachment, at time.Time) (*models.Article, error) {
	return s.mutate(id, func(a *models.Article) bool {
		a.Attachments = append(a.Attachments, atts...)
		a.UpdatedAt = at
		return true
	})
}

func (s *memoryArticles) PullAttachment(_ context.Context, id, attachmentID string, at time.Time) (*models.Article, error) {
	return s.mutate(id, func(a *models.Article) bool {
		i := slices.IndexFunc(a.Attachments, func(x models.Attachment) bool { return x.ID == attachmentID })
		if i < 0 {
			return false
		}
		a.Attachments = slices.Delete(a.Attachments, i, i+1)
		a.UpdatedAt = at
		return true
	})
}

func (s *memoryArticles) Delete(_ context.Context, id string) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.byID, oid)
	return cloneArticle(a), nil
}

type memoryProducts struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]models.Product
}

func cloneProduct(p models.Product) *models.Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return &p
}

func (s *memoryProducts) Insert(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return storeErr("insert", ResourceProduct, "", err)
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = *cloneProduct(*p)
	return nil
}

func (s *memoryProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *memoryProducts) List(ctx context.Context, page Page) ([]models.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, storeErr("list", ResourceProduct, "", err)
	}
	s.mu.RLock()
	all := make([]models.Product, 0, len(s.byID))
	for _, p := range s.byID {
		all = append(all, *cloneProduct(p))
	}
	s.mu.RUnlock()
	slices.SortFunc(all, func(a, b models.Product) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.Hex(), b.ID.Hex())
	})
	return window(all, page), int64(len(all)), nil
}

func (s *memoryProducts) Update(_ context.Context, id string, ch ProductChanges, at time.Time) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[oid]
	if !ok {
		return nil, ErrNotFound
	}
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Description != nil {
		if *ch.Description == "" {
			p.Description = nil
		} else {
			d := *ch.Description
			p.Description = &d
		}
	}
	p.UpdatedAt = at
	s.byID[oid] = p
	return cloneProduct(p), nil
}

func (s *memoryProducts) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[oid]; !ok {
		return ErrNotFound
	}
	delete(s.byID, oid)
	return nil
}

func window[T any](all []T, p Page) []T {
	start := min(max(p.Skip, 0), int64(len(all)))
	end := int64(len(all))
	if p.Limit > 0 {
		end = min(start+min(p.Limit, end), end)
	}
	return all[start:end]
}
