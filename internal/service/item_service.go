package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/events"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/phrazzld/lostfound-api/internal/task"
)

// ImageDiscarder removes freshly stored uploads whose record change was rejected.
type ImageDiscarder interface {
	Discard(ctx context.Context, paths []string)
}

// ItemInput carries the client-supplied fields of an add or update.
// A nil field was not supplied. Images holds the paths of files already
// stored for this request; nil means no new images were uploaded.
type ItemInput struct {
	Name        *string
	Description *string
	CategoryID  *string
	EventDate   *string
	Images      []string
}

// ItemService performs owner-gated mutations of lost and found items.
type ItemService interface {
	// Add creates an item owned by userID.
	Add(ctx context.Context, kind domain.Kind, userID uuid.UUID, in ItemInput) (*Listing, error)

	// Update applies a partial update to an item owned by userID.
	Update(ctx context.Context, kind domain.Kind, userID, id uuid.UUID, in ItemInput) (*Listing, error)

	// Delete removes an item owned by userID and releases its images.
	Delete(ctx context.Context, kind domain.Kind, userID, id uuid.UUID) error
}

type itemService struct {
	db         *sql.DB
	items      store.ItemStore
	categories store.CategoryStore
	images     ImageDiscarder
	emitter    events.EventEmitter
	now        func() time.Time
	logger     *slog.Logger
}

// NewItemService creates an ItemService. Released image paths are
// published on emitter as image cleanup task requests.
func NewItemService(
	db *sql.DB,
	items store.ItemStore,
	categories store.CategoryStore,
	images ImageDiscarder,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (ItemService, error) {
	if db == nil {
		return nil, fmt.Errorf("item service requires a database")
	}
	if items == nil || categories == nil {
		return nil, fmt.Errorf("item service requires item and category stores")
	}
	if images == nil {
		return nil, fmt.Errorf("item service requires an image discarder")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &itemService{
		db:         db,
		items:      items,
		categories: categories,
		images:     images,
		emitter:    emitter,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "item_service")),
	}, nil
}

func (s *itemService) Add(ctx context.Context, kind domain.Kind, userID uuid.UUID, in ItemInput) (*Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.add(ctx, kind, userID, in)
	if err != nil {
		s.images.Discard(ctx, in.Images)
		return nil, NewServiceError("item", "add", err)
	}

	log.Info("item created",
		slog.String("kind", string(kind)),
		slog.String("item_id", result.Item.ID.String()),
		slog.String("user_id", userID.String()))
	return result, nil
}

func (s *itemService) add(ctx context.Context, kind domain.Kind, userID uuid.UUID, in ItemInput) (*Listing, error) {
	verr := &domain.ValidationError{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	var categoryID uuid.UUID
	if in.CategoryID == nil {
		verr.Add("categoryId", "Category ID is required.")
	} else {
		categoryID = parseCategoryID(*in.CategoryID, verr)
	}
	var eventDate time.Time
	if in.EventDate == nil {
		verr.Add(kind.DateField(), kind.Label()+" date is required.")
	} else {
		eventDate = parseEventDate(kind, *in.EventDate, verr)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	description := ""
	if in.Description != nil {
		description = *in.Description
	}
	item, err := domain.NewItem(kind, userID, *in.Name, description, categoryID, eventDate, in.Images)
	if err != nil {
		return nil, err
	}

	var result *Listing
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		category, err := requireCategory(ctx, s.categories.WithTx(tx), item.CategoryID)
		if err != nil {
			return err
		}
		if err := s.items.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		result = &Listing{Item: item, Category: CategoryRef{ID: category.ID, Name: category.Name}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *itemService) Update(
	ctx context.Context,
	kind domain.Kind,
	userID, id uuid.UUID,
	in ItemInput,
) (*Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, released, err := s.update(ctx, kind, userID, id, in)
	if err != nil {
		s.images.Discard(ctx, in.Images)
		if errors.Is(err, domain.ErrAccessDenied) {
			log.Warn("rejected item update by non-owner",
				slog.String("item_id", id.String()),
				slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError("item", "update", err)
	}

	s.release(ctx, released)
	log.Info("item updated",
		slog.String("kind", string(kind)),
		slog.String("item_id", id.String()),
		slog.Int("released_images", len(released)))
	return result, nil
}

func (s *itemService) update(
	ctx context.Context,
	kind domain.Kind,
	userID, id uuid.UUID,
	in ItemInput,
) (*Listing, []string, error) {
	upd, err := toUpdate(kind, in)
	if err != nil {
		return nil, nil, err
	}

	var (
		result   *Listing
		released []string
	)
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txItems := s.items.WithTx(tx)

		current, err := txItems.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if !current.OwnedBy(userID) {
			return domain.ErrAccessDenied
		}

		next, dropped, err := current.Apply(upd, s.now())
		if err != nil {
			return err
		}
		category, err := requireCategory(ctx, s.categories.WithTx(tx), next.CategoryID)
		if err != nil {
			return err
		}
		if err := txItems.Update(ctx, next); err != nil {
			return err
		}

		result = &Listing{Item: next, Category: CategoryRef{ID: category.ID, Name: category.Name}}
		released = dropped
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, released, nil
}

func (s *itemService) Delete(ctx context.Context, kind domain.Kind, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var images []string
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txItems := s.items.WithTx(tx)

		item, err := txItems.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if !item.OwnedBy(userID) {
			return domain.ErrAccessDenied
		}
		if err := txItems.Delete(ctx, kind, id); err != nil {
			return err
		}
		images = item.Images
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			log.Warn("rejected item delete by non-owner",
				slog.String("item_id", id.String()),
				slog.String("user_id", userID.String()))
		}
		return NewServiceError("item", "delete", err)
	}

	s.release(ctx, images)
	log.Info("item deleted",
		slog.String("kind", string(kind)),
		slog.String("item_id", id.String()),
		slog.Int("released_images", len(images)))
	return nil
}

// release schedules asynchronous deletion of paths. Failures are logged
// and never reach the caller.
func (s *itemService) release(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskRequestEvent(task.TaskTypeImageCleanup, task.ImageCleanupPayload{Paths: paths})
	if err != nil {
		log.Error("failed to build image cleanup event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to schedule image cleanup",
			slog.String("error", err.Error()),
			slog.Any("paths", paths))
	}
}

func toUpdate(kind domain.Kind, in ItemInput) (domain.ItemUpdate, error) {
	verr := &domain.ValidationError{}
	upd := domain.ItemUpdate{Description: in.Description, Images: in.Images}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			verr.Add("name", "Name cannot be empty.")
		}
		upd.Name = in.Name
	}
	if in.CategoryID != nil {
		id := parseCategoryID(*in.CategoryID, verr)
		upd.CategoryID = &id
	}
	if in.EventDate != nil {
		date := parseEventDate(kind, *in.EventDate, verr)
		upd.EventDate = &date
	}
	if err := verr.OrNil(); err != nil {
		return domain.ItemUpdate{}, err
	}
	return upd, nil
}

func parseCategoryID(raw string, verr *domain.ValidationError) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add("categoryId", "Category ID is required.")
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr.Add("categoryId", "Category ID has invalid format.")
		return uuid.Nil
	}
	return id
}

func parseEventDate(kind domain.Kind, raw string, verr *domain.ValidationError) time.Time {
	field := kind.DateField()
	if strings.TrimSpace(raw) == "" {
		verr.Add(field, kind.Label()+" date is required.")
		return time.Time{}
	}
	t, err := listing.ParseDate(raw)
	if err != nil {
		verr.Add(field, field+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp.")
		return time.Time{}
	}
	return t
}

// requireCategory loads a category, reporting a missing one as a
// validation failure on categoryId.
func requireCategory(ctx context.Context, categories store.CategoryStore, id uuid.UUID) (*domain.Category, error) {
	category, err := categories.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, domain.NewValidationError("categoryId", "Category does not exist.", err)
		}
		return nil, err
	}
	return category, nil
}
