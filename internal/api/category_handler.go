package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/service"
)

// CategoryHandler serves /categories.
type CategoryHandler struct {
	categories service.CategoryService
	logger     *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories service.CategoryService, logger *slog.Logger) *CategoryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CategoryHandler")
	}
	return &CategoryHandler{
		categories: categories,
		logger:     logger.With(slog.String("component", "category_handler")),
	}
}

// List handles GET /categories. Each category carries the number of lost
// and found items matching query, dateFrom and dateTo.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summaries, err := h.categories.Aggregate(r.Context(), listing.RawParams{
		Query:    q.Get("query"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]CategorySummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, CategorySummaryResponse{
			ID:              s.ID,
			Name:            s.Name,
			LostItemsCount:  s.LostItemsCount,
			FoundItemsCount: s.FoundItemsCount,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
