package service

import (
	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
)

// CategoryRef is the category embedded in a listing.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
}

// Listing is the public projection of an item: the item with its resolved
// category and without any owner details.
type Listing struct {
	Item     *domain.Item
	Category CategoryRef
}

// ListingDetail is a listing with its owner's contact card.
type ListingDetail struct {
	Listing
	Owner domain.Contact
}

// Page is one page of search results.
type Page struct {
	TotalItems int
	TotalPages int
	Page       int
	Items      []Listing
}

// CategorySummary counts the lost and found items of one category.
type CategorySummary struct {
	ID              uuid.UUID
	Name            string
	LostItemsCount  int
	FoundItemsCount int
}
