package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxItemImages is the most images a single item may reference.
const MaxItemImages = 10

// Item is a lost or found listing. Both kinds share this shape; only the
// public name of EventDate differs (lostDate or foundDate).
type Item struct {
	ID          uuid.UUID
	Kind        Kind
	Name        string
	Description string
	CategoryID  uuid.UUID
	UserID      uuid.UUID
	Images      []string
	EventDate   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem builds a validated item owned by userID.
func NewItem(
	kind Kind,
	userID uuid.UUID,
	name, description string,
	categoryID uuid.UUID,
	eventDate time.Time,
	images []string,
) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:          uuid.New(),
		Kind:        kind,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CategoryID:  categoryID,
		UserID:      userID,
		Images:      nonEmpty(images),
		EventDate:   eventDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the item invariants and reports every failing field.
func (i *Item) Validate() error {
	verr := &ValidationError{}
	if i.ID == uuid.Nil {
		verr.Add("id", "Item ID is required.")
	}
	if !i.Kind.Valid() {
		verr.Add("kind", "Item kind must be lost or found.")
	}
	if strings.TrimSpace(i.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	if i.CategoryID == uuid.Nil {
		verr.Add("categoryId", "Category ID is required.")
	}
	if i.UserID == uuid.Nil {
		verr.Add("userId", "User ID is required.")
	}
	if i.EventDate.IsZero() {
		verr.Add(i.Kind.DateField(), i.Kind.Label()+" date is required.")
	}
	if len(i.Images) > MaxItemImages {
		verr.Add("images", "At most 10 images are allowed.")
	}
	for _, img := range i.Images {
		if strings.TrimSpace(img) == "" {
			verr.Add("images", "Image paths cannot be empty.")
			break
		}
	}
	return verr.OrNil()
}

// OwnedBy reports whether userID owns the item.
func (i *Item) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && i.UserID == userID
}

// ItemUpdate is a partial update. Nil fields keep their current value.
// Images replaces the whole list when non-nil.
type ItemUpdate struct {
	Name        *string
	Description *string
	CategoryID  *uuid.UUID
	EventDate   *time.Time
	Images      []string
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil &&
		u.EventDate == nil && u.Images == nil
}

// Apply applies u to a copy of the item and returns it together with the
// image paths that are no longer referenced. The receiver is not modified.
func (i *Item) Apply(u ItemUpdate, now time.Time) (*Item, []string, error) {
	next := *i
	next.Images = append([]string(nil), i.Images...)

	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		next.Description = strings.TrimSpace(*u.Description)
	}
	if u.CategoryID != nil {
		next.CategoryID = *u.CategoryID
	}
	if u.EventDate != nil {
		next.EventDate = u.EventDate.UTC()
	}

	var released []string
	if u.Images != nil {
		next.Images = nonEmpty(u.Images)
		keep := make(map[string]struct{}, len(next.Images))
		for _, img := range next.Images {
			keep[img] = struct{}{}
		}
		for _, img := range i.Images {
			if _, ok := keep[img]; !ok {
				released = append(released, img)
			}
		}
	}

	if err := next.Validate(); err != nil {
		return nil, nil, err
	}

	next.UpdatedAt = now.UTC()
	return &next, released, nil
}

func nonEmpty(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
