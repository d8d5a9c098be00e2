package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
	return verr.Fields
}

func strPtr(s string) *string { return &s }

func TestCreateArticleDTO(t *testing.T) {
	valid := func() CreateArticleDTO {
		return CreateArticleDTO{Product: "P1", Subject: "S1", Body: "B1", Date: "2024-03-01T10:00:00Z"}
	}

	d := valid()
	require.NoError(t, d.Validate())

	for _, field := range []string{"product", "subject", "body"} {
		t.Run("blank "+field, func(t *testing.T) {
			d := valid()
			switch field {
			case "product":
				d.Product = "   "
			case "subject":
				d.Subject = "\t"
			case "body":
				d.Body = " "
			}
			assert.Contains(t, fieldsOf(t, d.Validate()), field)
		})
	}

	d = valid()
	d.Date = "01/03/2024"
	assert.Contains(t, fieldsOf(t, d.Validate()), "date")

	d = valid()
	d.Date = "2024-03-01T10:00:00.123+02:00"
	assert.NoError(t, d.Validate())
}

func TestCreateArticleDTOSanitizesBody(t *testing.T) {
	d := CreateArticleDTO{Product: "P", Subject: "S", Body: `<p>ok</p><script>alert(1)</script>`, Date: "2024-03-01T10:00:00Z"}
	require.NoError(t, d.Validate())
	assert.Equal(t, "<p>ok</p>", d.Body)

	d.Body = "<script>alert(1)</script>"
	assert.Contains(t, fieldsOf(t, d.Validate()), "body")

	d.Body = "  if a < b && c > 0 then \"ok\"  "
	require.NoError(t, d.Validate())
	assert.Equal(t, `if a < b && c > 0 then "ok"`, d.Body)

	d.Body = "a < b & <b>bold</b>"
	require.NoError(t, d.Validate())
	assert.Contains(t, d.Body, "<b>bold</b>")
	assert.Contains(t, d.Body, "&amp;")
}

func TestUpdateArticleDTOKeepsPlainBody(t *testing.T) {
	body := "1 < 2 & 3 > 2"
	d := UpdateArticleDTO{Body: &body}
	require.NoError(t, d.Validate())
	assert.Equal(t, "1 < 2 & 3 > 2", *d.Body)
}

func TestUpdateArticleDTO(t *testing.T) {
	empty := UpdateArticleDTO{}
	assert.Contains(t, fieldsOf(t, empty.Validate()), "payload")

	subjectOnly := UpdateArticleDTO{Subject: strPtr("x")}
	assert.NoError(t, subjectOnly.Validate())

	blank := UpdateArticleDTO{Product: strPtr("  ")}
	assert.Contains(t, fieldsOf(t, blank.Validate()), "product")

	badDate := UpdateArticleDTO{Date: strPtr("soon")}
	assert.Contains(t, fieldsOf(t, badDate.Validate()), "date")
}

func TestProductDTOs(t *testing.T) {
	missing := CreateProductDTO{}
	assert.Contains(t, fieldsOf(t, missing.Validate()), "name")

	named := CreateProductDTO{Name: "Widget", Description: strPtr("  ")}
	require.NoError(t, named.Validate())
	assert.Nil(t, named.Description)

	empty := UpdateProductDTO{}
	assert.Contains(t, fieldsOf(t, empty.Validate()), "payload")

	blankName := UpdateProductDTO{Name: strPtr(" ")}
	assert.Contains(t, fieldsOf(t, blankName.Validate()), "name")

	clearDesc := UpdateProductDTO{Description: strPtr("")}
	assert.NoError(t, clearDesc.Validate())
}

func TestUserDTOs(t *testing.T) {
	reg := RegisterUserDTO{Email: "bad", Password: "short"}
	fields := fieldsOf(t, reg.Validate())
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	reg = RegisterUserDTO{Email: " a@x.com ", Password: "longenough"}
	require.NoError(t, reg.Validate())
	assert.Equal(t, "a@x.com", reg.Email)

	reg.Role = "OWNER"
	assert.Contains(t, fieldsOf(t, reg.Validate()), "role")

	// no length floor on login
	login := LoginDTO{Email: "a@x.com", Password: "x"}
	assert.NoError(t, login.Validate())
	login.Password = ""
	assert.Contains(t, fieldsOf(t, login.Validate()), "password")

	role := UpdateRoleDTO{}
	assert.Contains(t, fieldsOf(t, role.Validate()), "role")
}

func TestSearchDTO(t *testing.T) {
	blank := SearchDTO{Query: "  "}
	assert.Contains(t, fieldsOf(t, blank.Validate()), "q")

	d := SearchDTO{Query: " vpn "}
	require.NoError(t, d.Validate())
	assert.Equal(t, "vpn", d.Query)
	assert.Equal(t, DefaultSearchSize, d.Size)

	d = SearchDTO{Query: "vpn", Size: 500}
	require.NoError(t, d.Validate())
	assert.Equal(t, MaxSearchSize, d.Size)
}

func TestValidationErrorMessage(t *testing.T) {
	e := &ValidationError{}
	assert.NoError(t, e.OrNil())
	e.Add("b", "two")
	e.Add("a", "one")
	assert.Equal(t, "validation failed: a: one, b: two", e.Error())
}
