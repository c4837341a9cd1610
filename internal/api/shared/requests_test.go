package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signInBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

func newJSONRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		anyErr  bool
	}{
		{name: "valid json", body: `{"email":"a@example.com","password":"secret123","extra":1}`},
		{name: "trailing comma", body: `{"email":"a@example.com",}`, anyErr: true},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var v signInBody
			err := DecodeJSON(newJSONRequest(tc.body), &v)
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "a@example.com", v.Email)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&signInBody{Email: "a@example.com", Password: "secret123"}))

	err := ValidateRequest(&signInBody{Email: "nope", Code: "12ab"})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Email has invalid format.", verr.Fields["email"])
	assert.Equal(t, "Password is required.", verr.Fields["password"])
	assert.Contains(t, verr.Fields, "code")
}

func TestDecodeAndValidate(t *testing.T) {
	var v signInBody
	err := DecodeAndValidate(newJSONRequest(`not json`), &v)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "body")

	err = DecodeAndValidate(newJSONRequest(`{"email":"a@example.com","password":"short"}`), &v)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Password must be at least 8 characters long.", verr.Fields["password"])
}
