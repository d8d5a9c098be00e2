package services

import (
	"context"
	"testing"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticles(t *testing.T, objects storage.ObjectStore) *ArticleService {
	t.Helper()
	opts := ArticleOptions{MaxAttachments: 2}
	if objects != nil {
		opts.Objects = objects
		opts.Files = storage.NewFileValidator([]string{"png"}, []string{"image/png"}, 1)
	}
	return NewArticleService(database.NewMemoryStores().Articles, discardLogger(), opts)
}

func validArticle() *dto.CreateArticleDTO {
	return &dto.CreateArticleDTO{Product: "P1", Subject: "S1", Body: "B1", Date: "2024-03-01T10:00:00Z"}
}

func TestArticleCreateGuardRunsBeforeValidation(t *testing.T) {
	svc := newArticles(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, &dto.CreateArticleDTO{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = svc.Create(ctx, user, validArticle())
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Create(ctx, admin, &dto.CreateArticleDTO{Product: "P1", Subject: "  ", Body: "B1", Date: "2024-03-01T10:00:00Z"})
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subject")
}

func TestArticleLifecycle(t *testing.T) {
	svc := newArticles(t, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, admin, validArticle())
	require.NoError(t, err)
	require.False(t, a.ID.IsZero())
	assert.False(t, a.CreatedAt.IsZero())

	got, err := svc.Get(ctx, nil, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "S1", got.Subject)

	_, err = svc.Update(ctx, admin, a.ID.Hex(), &dto.UpdateArticleDTO{})
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)

	subject := "x"
	updated, err := svc.Update(ctx, admin, a.ID.Hex(), &dto.UpdateArticleDTO{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "x", updated.Subject)
	assert.Equal(t, "B1", updated.Body)

	require.NoError(t, svc.Delete(ctx, admin, a.ID.Hex()))
	_, err = svc.Get(ctx, nil, a.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, admin, a.ID.Hex()), ErrNotFound)
	_, err = svc.Get(ctx, nil, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleListFiltersByProduct(t *testing.T) {
	svc := newArticles(t, nil)
	ctx := context.Background()

	for _, p := range []string{"P1", "P2", "P1"} {
		d := validArticle()
		d.Product = p
		_, err := svc.Create(ctx, admin, d)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, nil, database.ArticleFilter{Product: "P1", Page: database.Page{Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func TestAttachmentsDisabledWithoutStorage(t *testing.T) {
	svc := newArticles(t, nil)
	ctx := context.Background()
	a, err := svc.Create(ctx, admin, validArticle())
	require.NoError(t, err)

	_, err = svc.AddAttachments(ctx, admin, a.ID.Hex(), uploads(t, "a.png"))
	assert.ErrorIs(t, err, ErrAttachmentsDisabled)

	_, err = svc.AddAttachments(ctx, user, a.ID.Hex(), uploads(t, "a.png"))
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestAttachmentsRoundTrip(t *testing.T) {
	objects := newFakeObjects()
	svc := newArticles(t, objects)
	ctx := context.Background()
	a, err := svc.Create(ctx, admin, validArticle())
	require.NoError(t, err)

	withFiles, err := svc.AddAttachments(ctx, admin, a.ID.Hex(), uploads(t, "one.png", "two.png"))
	require.NoError(t, err)
	require.Len(t, withFiles.Attachments, 2)
	assert.Equal(t, "image/png", withFiles.Attachments[0].MimeType)
	assert.Equal(t, 2, objects.count())

	_, err = svc.AddAttachments(ctx, admin, a.ID.Hex(), uploads(t, "three.png"))
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "files")

	trimmed, err := svc.RemoveAttachment(ctx, admin, a.ID.Hex(), withFiles.Attachments[0].ID)
	require.NoError(t, err)
	assert.Len(t, trimmed.Attachments, 1)
	assert.Equal(t, 1, objects.count())

	_, err = svc.RemoveAttachment(ctx, admin, a.ID.Hex(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, admin, a.ID.Hex()))
	assert.Equal(t, 0, objects.count())
}

func TestAttachmentUploadFailureCleansUp(t *testing.T) {
	objects := newFakeObjects()
	objects.failAfter = 2
	svc := newArticles(t, objects)
	ctx := context.Background()
	a, err := svc.Create(ctx, admin, validArticle())
	require.NoError(t, err)

	_, err = svc.AddAttachments(ctx, admin, a.ID.Hex(), uploads(t, "one.png", "two.png"))
	var serr *database.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, objects.count())
	assert.Len(t, objects.deleted, 1)

	got, err := svc.Get(ctx, nil, a.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)
}

func TestAttachmentRejectsBadFiles(t *testing.T) {
	svc := newArticles(t, newFakeObjects())
	ctx := context.Background()
	a, err := svc.Create(ctx, admin, validArticle())
	require.NoError(t, err)

	_, err = svc.AddAttachments(ctx, admin, a.ID.Hex(), uploads(t, "notes.txt"))
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "files")
}
