package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/platform/filestore"
	"github.com/phrazzld/lostfound-api/internal/service"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Search(
	ctx context.Context,
	kind domain.Kind,
	raw listing.RawParams,
	sort listing.Sort,
	page int,
) (*service.Page, error) {
	args := m.Called(ctx, kind, raw, sort, page)
	p, _ := args.Get(0).(*service.Page)
	return p, args.Error(1)
}

func (m *MockListingService) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*service.ListingDetail, error) {
	args := m.Called(ctx, kind, id)
	d, _ := args.Get(0).(*service.ListingDetail)
	return d, args.Error(1)
}

func (m *MockListingService) ListByUser(ctx context.Context, kind domain.Kind, userID uuid.UUID) ([]service.Listing, error) {
	args := m.Called(ctx, kind, userID)
	ls, _ := args.Get(0).([]service.Listing)
	return ls, args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Add(
	ctx context.Context,
	kind domain.Kind,
	userID uuid.UUID,
	in service.ItemInput,
) (*service.Listing, error) {
	args := m.Called(ctx, kind, userID, in)
	l, _ := args.Get(0).(*service.Listing)
	return l, args.Error(1)
}

func (m *MockItemService) Update(
	ctx context.Context,
	kind domain.Kind,
	userID, id uuid.UUID,
	in service.ItemInput,
) (*service.Listing, error) {
	args := m.Called(ctx, kind, userID, id, in)
	l, _ := args.Get(0).(*service.Listing)
	return l, args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, kind domain.Kind, userID, id uuid.UUID) error {
	return m.Called(ctx, kind, userID, id).Error(0)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Aggregate(ctx context.Context, raw listing.RawParams) ([]service.CategorySummary, error) {
	args := m.Called(ctx, raw)
	s, _ := args.Get(0).([]service.CategorySummary)
	return s, args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]*domain.Category)
	return c, args.Error(1)
}

func (m *MockCategoryService) Bootstrap(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SendSignupCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountService) SignUp(ctx context.Context, in service.SignUpInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockAccountService) SignIn(ctx context.Context, in service.SignInInput) (*auth.TokenPair, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*auth.TokenPair)
	return p, args.Error(1)
}

func (m *MockAccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	p, _ := args.Get(0).(*auth.TokenPair)
	return p, args.Error(1)
}

func (m *MockAccountService) ForgotPasswordSendCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountService) ForgotPasswordVerifyCode(ctx context.Context, in service.VerifyCodeInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAccountService) ForgotPasswordChangePassword(ctx context.Context, in service.ChangePasswordInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAccountService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*service.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*service.Profile)
	return p, args.Error(1)
}

func (m *MockProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return m.Called(ctx, userID, current, next).Error(0)
}

func (m *MockProfileService) SetTelegram(ctx context.Context, userID uuid.UUID, telegram string) (*domain.User, error) {
	args := m.Called(ctx, userID, telegram)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockProfileService) SetPhone(ctx context.Context, userID uuid.UUID, phone string) (*domain.User, error) {
	args := m.Called(ctx, userID, phone)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockProfileService) SetCredentials(
	ctx context.Context,
	userID uuid.UUID,
	in service.CredentialsInput,
) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

// fakeImageStore records stored and discarded uploads. Uploads whose
// content starts with "bad" are rejected.
type fakeImageStore struct {
	mu        sync.Mutex
	n         int
	stored    []string
	discarded []string
}

func (f *fakeImageStore) Store(_ context.Context, kind domain.Kind, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, []byte("bad")) {
		return "", fmt.Errorf("unsupported: %w", filestore.ErrUnsupportedImage)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	p := fmt.Sprintf("img/%s/%d.jpg", kind, f.n)
	f.stored = append(f.stored, p)
	return p, nil
}

func (f *fakeImageStore) Discard(_ context.Context, paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, paths...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes req through a chi router so URL params resolve. A non-nil
// userID is placed in the context the way the auth middleware does.
func serve(t *testing.T, register func(r chi.Router), req *http.Request, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	register(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
