package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/service"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
)

// CategoryRefResponse is the category embedded in a listing.
type CategoryRefResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ListingResponse is the public shape of a lost or found item. Exactly one
// of LostDate and FoundDate is set, matching the item kind.
type ListingResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	UserID      uuid.UUID           `json:"userId"`
	Category    CategoryRefResponse `json:"category"`
	Images      []string            `json:"images"`
	LostDate    *time.Time          `json:"lostDate,omitempty"`
	FoundDate   *time.Time          `json:"foundDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ListingDetailResponse adds the owner's contact card.
type ListingDetailResponse struct {
	ListingResponse
	User domain.Contact `json:"user"`
}

// PageResponse is the search envelope.
type PageResponse struct {
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	Items      []ListingResponse `json:"items"`
}

// CategorySummaryResponse is one row of GET /categories.
type CategorySummaryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	LostItemsCount  int       `json:"lostItemsCount"`
	FoundItemsCount int       `json:"foundItemsCount"`
}

// ProfileResponse is the authenticated user's own profile.
type ProfileResponse struct {
	domain.Contact
	LostItems  []ListingResponse `json:"lostItems"`
	FoundItems []ListingResponse `json:"foundItems"`
}

// TokenResponse is returned on sign-in and refresh.
type TokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// EmailRequest carries a single email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Surname  string `json:"surname" validate:"required,max=100"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// VerifyCodeRequest is the body of POST /auth/forgotpassword/verifycode.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest is the body of PUT /auth/forgotpassword/changepassword.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /profile/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// TelegramRequest is the body of PUT /profile/telegram.
type TelegramRequest struct {
	Telegram string `json:"telegram" validate:"max=64"`
}

// PhoneRequest is the body of PUT /profile/phone.
type PhoneRequest struct {
	Phone string `json:"phone" validate:"max=32"`
}

// CredentialsRequest is the body of PUT /profile/credentials.
type CredentialsRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Surname *string `json:"surname" validate:"omitempty,max=100"`
}

func listingToResponse(l service.Listing) ListingResponse {
	item := l.Item
	images := item.Images
	if images == nil {
		images = []string{}
	}
	resp := ListingResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		UserID:      item.UserID,
		Category:    CategoryRefResponse{ID: l.Category.ID, Name: l.Category.Name},
		Images:      images,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	eventDate := item.EventDate
	if item.Kind == domain.KindFound {
		resp.FoundDate = &eventDate
	} else {
		resp.LostDate = &eventDate
	}
	return resp
}

func listingsToResponse(ls []service.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, listingToResponse(l))
	}
	return out
}

func pageToResponse(p *service.Page) PageResponse {
	return PageResponse{
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Page:       p.Page,
		Items:      listingsToResponse(p.Items),
	}
}

func tokenPairToResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		Token:        p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
	}
}
