package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// ListingService answers read queries over lost and found items.
type ListingService interface {
	// Search returns one page of kind items matching raw, ordered by
	// creation time.
	Search(ctx context.Context, kind domain.Kind, raw listing.RawParams, sort listing.Sort, page int) (*Page, error)

	// GetByID returns the detail view of one item, including the owner's contact.
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*ListingDetail, error)

	// ListByUser returns every kind item owned by userID, newest first.
	ListByUser(ctx context.Context, kind domain.Kind, userID uuid.UUID) ([]Listing, error)
}

type listingService struct {
	items      store.ItemStore
	categories store.CategoryStore
	users      store.UserStore
	logger     *slog.Logger
}

// NewListingService creates a ListingService.
func NewListingService(
	items store.ItemStore,
	categories store.CategoryStore,
	users store.UserStore,
	logger *slog.Logger,
) (ListingService, error) {
	if items == nil || categories == nil || users == nil {
		return nil, fmt.Errorf("listing service requires item, category and user stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &listingService{
		items:      items,
		categories: categories,
		users:      users,
		logger:     logger.With(slog.String("component", "listing_service")),
	}, nil
}

func (s *listingService) Search(
	ctx context.Context,
	kind domain.Kind,
	raw listing.RawParams,
	sort listing.Sort,
	page int,
) (*Page, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter, err := listing.Build(raw, kind)
	if err != nil {
		return nil, err
	}
	page = max(1, min(page, listing.MaxPage))

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		return nil, NewServiceError("listing", "search", err)
	}

	result := &Page{
		TotalItems: total,
		TotalPages: listing.TotalPages(total),
		Page:       page,
		Items:      []Listing{},
	}
	if total == 0 || listing.Offset(page) >= total {
		return result, nil
	}

	items, err := s.items.Search(ctx, listing.Query{Filter: filter, Sort: sort, Page: page})
	if err != nil {
		return nil, NewServiceError("listing", "search", err)
	}

	result.Items, err = s.project(ctx, items)
	if err != nil {
		return nil, err
	}

	log.Debug("search completed",
		slog.String("kind", string(kind)),
		slog.Int("total_items", total),
		slog.Int("page", page),
		slog.Int("returned", len(result.Items)))
	return result, nil
}

func (s *listingService) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*ListingDetail, error) {
	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		return nil, NewServiceError("listing", "get", err)
	}

	listings, err := s.project(ctx, []*domain.Item{item})
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, item.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s item %s references missing user %s",
				domain.ErrIntegrity, kind, item.ID, item.UserID)
		}
		return nil, NewServiceError("listing", "get", err)
	}

	return &ListingDetail{Listing: listings[0], Owner: owner.Contact()}, nil
}

func (s *listingService) ListByUser(ctx context.Context, kind domain.Kind, userID uuid.UUID) ([]Listing, error) {
	items, err := s.items.ListByUser(ctx, kind, userID)
	if err != nil {
		return nil, NewServiceError("listing", "list_by_user", err)
	}
	return s.project(ctx, items)
}

// project resolves categories for items in one batch. An item whose
// category is missing is an integrity error, never a silent skip.
func (s *listingService) project(ctx context.Context, items []*domain.Item) ([]Listing, error) {
	out := make([]Listing, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CategoryID)
	}
	categories, err := s.categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, NewServiceError("listing", "resolve_categories", err)
	}

	for _, item := range items {
		category, ok := categories[item.CategoryID]
		if !ok {
			s.logger.Error("item references missing category",
				slog.String("item_id", item.ID.String()),
				slog.String("category_id", item.CategoryID.String()))
			return nil, fmt.Errorf("%w: %s item %s references missing category %s",
				domain.ErrIntegrity, item.Kind, item.ID, item.CategoryID)
		}
		out = append(out, Listing{
			Item:     item,
			Category: CategoryRef{ID: category.ID, Name: category.Name},
		})
	}
	return out, nil
}
