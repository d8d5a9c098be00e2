package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func session(role models.Role) *auth.Session {
	return &auth.Session{UserID: bson.NewObjectID().Hex(), Email: "someone@x.com", Role: role}
}

var (
	admin = session(models.RoleAdmin)
	user  = session(models.RoleUser)
)

// fakeObjects records uploads in memory. failAfter > 0 makes the Nth Put fail.
type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	puts      int
	failAfter int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failAfter > 0 && f.puts >= f.failAfter {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[name] = b
	return "https://cdn.test/" + name, nil
}

func (f *fakeObjects) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func uploads(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, n := range names {
		part, err := w.CreateFormFile("files", n)
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}
