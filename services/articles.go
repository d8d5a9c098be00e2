package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/models"
	"github.com/princinho/knowledgebase/storage"
)

type ArticleOptions struct {
	// Objects may be nil, which disables attachments.
	Objects        storage.ObjectStore
	Files          *storage.FileValidator
	MaxAttachments int
}

type ArticleService struct {
	store database.ArticleStore
	opts  ArticleOptions
	log   *slog.Logger
	now   func() time.Time
}

func NewArticleService(store database.ArticleStore, log *slog.Logger, opts ArticleOptions) *ArticleService {
	if opts.MaxAttachments <= 0 {
		opts.MaxAttachments = 4
	}
	return &ArticleService{store: store, opts: opts, log: log, now: time.Now}
}

func (s *ArticleService) Get(ctx context.Context, sess *auth.Session, id string) (*models.Article, error) {
	if err := authorize(sess, database.ResourceArticle, OpRead); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *ArticleService) List(ctx context.Context, sess *auth.Session, f database.ArticleFilter) ([]models.Article, int64, error) {
	if err := authorize(sess, database.ResourceArticle, OpRead); err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, f)
}

func (s *ArticleService) Create(ctx context.Context, sess *auth.Session, d *dto.CreateArticleDTO) (*models.Article, error) {
	if err := authorize(sess, database.ResourceArticle, OpCreate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	date, err := dto.ParseDate(d.Date)
	if err != nil {
		return nil, dto.NewValidationError("date", "Invalid date format")
	}

	now := s.now().UTC()
	a := &models.Article{
		Product:     d.Product,
		Subject:     d.Subject,
		Body:        d.Body,
		Date:        date,
		Attachments: []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "article created", "id", a.ID.Hex(), "by", sess.UserID)
	return a, nil
}

func (s *ArticleService) Update(ctx context.Context, sess *auth.Session, id string, d *dto.UpdateArticleDTO) (*models.Article, error) {
	if err := authorize(sess, database.ResourceArticle, OpUpdate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	ch := database.ArticleChanges{Product: d.Product, Subject: d.Subject, Body: d.Body}
	if d.Date != nil {
		date, err := dto.ParseDate(*d.Date)
		if err != nil {
			return nil, dto.NewValidationError("date", "Invalid date format")
		}
		ch.Date = &date
	}

	a, err := s.store.Update(ctx, id, ch, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "article updated", "id", id, "by", sess.UserID)
	return a, nil
}

func (s *ArticleService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	if err := authorize(sess, database.ResourceArticle, OpDelete); err != nil {
		return err
	}
	a, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "article deleted", "id", id, "by", sess.UserID)

	if s.opts.Objects != nil && len(a.Attachments) > 0 {
		names := make([]string, 0, len(a.Attachments))
		for _, att := range a.Attachments {
			names = append(names, att.ObjectName)
		}
		if err := storage.DeleteAll(ctx, s.opts.Objects, names); err != nil {
			s.log.WarnContext(ctx, "attachment cleanup failed", "id", id, "error", err)
		}
	}
	return nil
}

// AddAttachments uploads files and records them on the article. If the
// store update fails, the uploaded objects are removed again.
func (s *ArticleService) AddAttachments(ctx context.Context, sess *auth.Session, id string, files []*multipart.FileHeader) (*models.Article, error) {
	if err := authorize(sess, database.ResourceArticle, OpUpdate); err != nil {
		return nil, err
	}
	if s.opts.Objects == nil || s.opts.Files == nil {
		return nil, ErrAttachmentsDisabled
	}
	if len(files) == 0 {
		return nil, dto.NewValidationError("files", "At least one file is required")
	}

	mimes := make([]string, len(files))
	verr := &dto.ValidationError{}
	for i, fh := range files {
		m, err := s.opts.Files.Validate(fh)
		if err != nil {
			verr.Add("files", fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		mimes[i] = m
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(current.Attachments)+len(files) > s.opts.MaxAttachments {
		return nil, dto.NewValidationError("files", fmt.Sprintf("Max %d attachments", s.opts.MaxAttachments))
	}

	now := s.now().UTC()
	atts := make([]models.Attachment, 0, len(files))
	uploaded := make([]string, 0, len(files))
	for i, fh := range files {
		att, err := s.upload(ctx, id, fh, mimes[i], now)
		if err != nil {
			_ = storage.DeleteAll(ctx, s.opts.Objects, uploaded)
			return nil, &database.StoreError{Op: "upload", Resource: database.ResourceArticle, ID: id, Err: err}
		}
		atts = append(atts, att)
		uploaded = append(uploaded, att.ObjectName)
	}

	a, err := s.store.PushAttachments(ctx, id, atts, now)
	if err != nil {
		_ = storage.DeleteAll(ctx, s.opts.Objects, uploaded)
		return nil, err
	}
	s.log.InfoContext(ctx, "attachments added", "id", id, "count", len(atts), "by", sess.UserID)
	return a, nil
}

func (s *ArticleService) upload(ctx context.Context, articleID string, fh *multipart.FileHeader, mime string, at time.Time) (models.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	name := storage.ObjectName(articleID, fh.Filename)
	url, err := s.opts.Objects.Put(ctx, name, mime, f)
	if err != nil {
		return models.Attachment{}, err
	}
	return models.Attachment{
		ID:         uuid.NewString(),
		URL:        url,
		ObjectName: name,
		MimeType:   mime,
		SizeBytes:  fh.Size,
		FileName:   fh.Filename,
		UploadedAt: at,
	}, nil
}

func (s *ArticleService) RemoveAttachment(ctx context.Context, sess *auth.Session, id, attachmentID string) (*models.Article, error) {
	if err := authorize(sess, database.ResourceArticle, OpUpdate); err != nil {
		return nil, err
	}
	if s.opts.Objects == nil {
		return nil, ErrAttachmentsDisabled
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var objectName string
	for _, att := range current.Attachments {
		if att.ID == attachmentID {
			objectName = att.ObjectName
		}
	}
	if objectName == "" {
		return nil, ErrNotFound
	}

	// DB first; the object is only removed once nothing references it.
	a, err := s.store.PullAttachment(ctx, id, attachmentID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.opts.Objects.Delete(ctx, objectName); err != nil {
		s.log.WarnContext(ctx, "attachment object delete failed", "id", id, "object", objectName, "error", err)
	}
	return a, nil
}
