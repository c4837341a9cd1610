package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultCountParallelism bounds the concurrent count queries of one aggregation.
const DefaultCountParallelism = 4

// CategoryService lists categories with per-kind item counts.
type CategoryService interface {
	// Aggregate returns every category with the number of lost and found
	// items matching raw. raw.CategoryID is ignored.
	Aggregate(ctx context.Context, raw listing.RawParams) ([]CategorySummary, error)

	// List returns every category in insertion order.
	List(ctx context.Context) ([]*domain.Category, error)

	// Bootstrap creates the default categories when none exist. It reports
	// how many categories were created.
	Bootstrap(ctx context.Context) (int, error)
}

type categoryService struct {
	db          *sql.DB
	categories  store.CategoryStore
	items       store.ItemStore
	parallelism int
	logger      *slog.Logger
}

// NewCategoryService creates a CategoryService. parallelism below 1 uses
// DefaultCountParallelism.
func NewCategoryService(
	db *sql.DB,
	categories store.CategoryStore,
	items store.ItemStore,
	parallelism int,
	logger *slog.Logger,
) (CategoryService, error) {
	if categories == nil || items == nil {
		return nil, fmt.Errorf("category service requires category and item stores")
	}
	if parallelism < 1 {
		parallelism = DefaultCountParallelism
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryService{
		db:          db,
		categories:  categories,
		items:       items,
		parallelism: parallelism,
		logger:      logger.With(slog.String("component", "category_service")),
	}, nil
}

func (s *categoryService) Aggregate(ctx context.Context, raw listing.RawParams) ([]CategorySummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	raw.CategoryID = ""
	lost, err := listing.Build(raw, domain.KindLost)
	if err != nil {
		return nil, err
	}
	found := lost.ForKind(domain.KindFound)

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, NewServiceError("category", "aggregate", err)
	}

	summaries := make([]CategorySummary, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, c := range categories {
		summaries[i] = CategorySummary{ID: c.ID, Name: c.Name}
		g.Go(func() error {
			n, err := s.items.Count(gctx, lost.WithCategory(c.ID))
			if err != nil {
				return fmt.Errorf("counting lost items in category %s: %w", c.ID, err)
			}
			summaries[i].LostItemsCount = n
			return nil
		})
		g.Go(func() error {
			n, err := s.items.Count(gctx, found.WithCategory(c.ID))
			if err != nil {
				return fmt.Errorf("counting found items in category %s: %w", c.ID, err)
			}
			summaries[i].FoundItemsCount = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("category aggregation failed", slog.String("error", err.Error()))
		return nil, NewServiceError("category", "aggregate", err)
	}

	log.Debug("category aggregation completed", slog.Int("categories", len(summaries)))
	return summaries, nil
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, NewServiceError("category", "list", err)
	}
	return categories, nil
}

func (s *categoryService) Bootstrap(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCategories := s.categories.WithTx(tx)

		n, err := txCategories.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		seed := make([]*domain.Category, 0, len(domain.DefaultCategoryNames))
		for _, name := range domain.DefaultCategoryNames {
			c, err := domain.NewCategory(name)
			if err != nil {
				return err
			}
			seed = append(seed, c)
		}
		if err := txCategories.CreateMany(ctx, seed); err != nil {
			return err
		}
		created = len(seed)
		return nil
	})
	if err != nil {
		return 0, NewServiceError("category", "bootstrap", err)
	}

	if created > 0 {
		log.Info("seeded default categories", slog.Int("count", created))
	} else {
		log.Debug("categories already present, skipping seed")
	}
	return created, nil
}
