package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"][0]
}

func TestFileValidator(t *testing.T) {
	v := NewFileValidator([]string{"png", ".pdf"}, []string{"image/png", "application/pdf"}, 1)

	mime, err := v.Validate(fileHeader(t, "diagram.PNG", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = v.Validate(fileHeader(t, "notes.txt", []byte("hello")))
	assert.ErrorIs(t, err, ErrFileExtension)

	_, err = v.Validate(fileHeader(t, "fake.pdf", []byte("just text, not a pdf")))
	assert.ErrorIs(t, err, ErrFileContentType)

	big := fileHeader(t, "big.png", append(pngHeader, bytes.Repeat([]byte{0}, 2<<20)...))
	_, err = v.Validate(big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestObjectName(t *testing.T) {
	name := ObjectName("abc", "Report.PDF")
	assert.True(t, strings.HasPrefix(name, "articles/abc/"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotEqual(t, name, ObjectName("abc", "Report.PDF"))
	assert.True(t, strings.HasSuffix(ObjectName("abc", "noext"), ".bin"))
}
