package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/service"
)

const (
	// MaxUploadBytes caps multipart item bodies.
	MaxUploadBytes = 32 << 20

	// multipartMemory is how much of a multipart body is buffered in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20

	imagesField = "images"
)

// ImageStore stores uploaded images and discards them again when the
// record change they belong to is rejected.
type ImageStore interface {
	Store(ctx context.Context, kind domain.Kind, r io.Reader) (string, error)
	Discard(ctx context.Context, paths []string)
}

// ItemHandler serves /items/{kind}.
type ItemHandler struct {
	listings  service.ListingService
	items     service.ItemService
	images    ImageStore
	maxImages int
	logger    *slog.Logger
}

// NewItemHandler creates a new ItemHandler. maxImages <= 0 uses
// domain.MaxItemImages.
func NewItemHandler(
	listings service.ListingService,
	items service.ItemService,
	images ImageStore,
	maxImages int,
	logger *slog.Logger,
) *ItemHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}
	if maxImages <= 0 || maxImages > domain.MaxItemImages {
		maxImages = domain.MaxItemImages
	}
	return &ItemHandler{
		listings:  listings,
		items:     items,
		images:    images,
		maxImages: maxImages,
		logger:    logger.With(slog.String("component", "item_handler")),
	}
}

// Search handles GET /items/{kind}.
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	kind, ok := getKind(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	raw := listing.RawParams{
		Query:      q.Get("query"),
		CategoryID: q.Get("categoryId"),
		DateFrom:   q.Get("dateFrom"),
		DateTo:     q.Get("dateTo"),
	}

	page, err := h.listings.Search(r.Context(), kind, raw,
		listing.ParseSort(q.Get("sort")), listing.ParsePage(q.Get("page")))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page))
}

// GetByID handles GET /items/{kind}/{id}.
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	kind, ok := getKind(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	detail, err := h.listings.GetByID(r.Context(), kind, id)
	if err != nil {
		HandleAPIError(w, r, err, notFoundMessage(kind))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListingDetailResponse{
		ListingResponse: listingToResponse(detail.Listing),
		User:            detail.Owner,
	})
}

// Create handles POST /items/{kind}.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	kind, ok := getKind(w, r)
	if !ok {
		return
	}
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	in, err := h.readItemInput(w, r, kind)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	created, err := h.items.Add(r.Context(), kind, userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("item created",
		slog.String("kind", string(kind)),
		slog.String("item_id", created.Item.ID.String()),
		slog.Int("images", len(created.Item.Images)))
	shared.RespondWithJSON(w, r, http.StatusOK, listingToResponse(*created))
}

// Update handles PUT /items/{kind}/{id}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	kind, ok := getKind(w, r)
	if !ok {
		return
	}
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	in, err := h.readItemInput(w, r, kind)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.items.Update(r.Context(), kind, userID, id, in)
	if err != nil {
		HandleAPIError(w, r, err, notFoundMessage(kind))
		return
	}

	log.Info("item updated",
		slog.String("kind", string(kind)),
		slog.String("item_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, listingToResponse(*updated))
}

// Delete handles DELETE /items/{kind}/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	kind, ok := getKind(w, r)
	if !ok {
		return
	}
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.items.Delete(r.Context(), kind, userID, id); err != nil {
		HandleAPIError(w, r, err, notFoundMessage(kind))
		return
	}

	log.Info("item deleted",
		slog.String("kind", string(kind)),
		slog.String("item_id", id.String()))
	shared.RespondWithMessage(w, r, http.StatusOK, kind.Label()+" item post deleted successfully.")
}

// MissingUpdateID handles PUT /items/{kind}/ without an id.
func (h *ItemHandler) MissingUpdateID(w http.ResponseWriter, r *http.Request) {
	if _, ok := getKind(w, r); !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusBadRequest, map[string]string{
		"error": "Update post id is required.",
	})
}

// MissingDeleteID handles DELETE /items/{kind}/ without an id.
func (h *ItemHandler) MissingDeleteID(w http.ResponseWriter, r *http.Request) {
	if _, ok := getKind(w, r); !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusBadRequest, map[string]string{
		"error": "Delete post id is required.",
	})
}

// itemJSONRequest is the JSON alternative to the multipart item form. It
// cannot carry images.
type itemJSONRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *string `json:"categoryId"`
	LostDate    *string `json:"lostDate"`
	FoundDate   *string `json:"foundDate"`
}

// readItemInput reads the item fields from a multipart form or a JSON body.
// Uploaded images are stored before returning; if reading fails part way
// the images stored so far are discarded.
func (h *ItemHandler) readItemInput(
	w http.ResponseWriter,
	r *http.Request,
	kind domain.Kind,
) (service.ItemInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return readItemJSON(r, kind)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.ItemInput{}, domain.NewValidationError("body",
				"Request body must not exceed 32 MiB.", err)
		}
		return service.ItemInput{}, domain.NewValidationError("body",
			"Request body must be valid multipart form data.", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	form := r.MultipartForm.Value
	in := service.ItemInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		CategoryID:  formValue(form, "categoryId"),
		EventDate:   formValue(form, kind.DateField()),
	}

	files := r.MultipartForm.File[imagesField]
	if len(files) == 0 {
		return in, nil
	}
	if len(files) > h.maxImages {
		return service.ItemInput{}, domain.NewValidationError(imagesField,
			"At most "+strconv.Itoa(h.maxImages)+" images are allowed.", domain.ErrValidation)
	}

	stored := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.storeUpload(r.Context(), kind, fh)
		if err != nil {
			h.images.Discard(r.Context(), stored)
			return service.ItemInput{}, err
		}
		stored = append(stored, path)
	}
	in.Images = stored
	return in, nil
}

func (h *ItemHandler) storeUpload(
	ctx context.Context,
	kind domain.Kind,
	fh *multipart.FileHeader,
) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	return h.images.Store(ctx, kind, f)
}

func readItemJSON(r *http.Request, kind domain.Kind) (service.ItemInput, error) {
	var req itemJSONRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return service.ItemInput{}, nil
		}
		return service.ItemInput{}, domain.NewValidationError("body",
			"Request body must be a JSON object or multipart form data.", err)
	}

	eventDate := req.LostDate
	if kind == domain.KindFound {
		eventDate = req.FoundDate
	}
	return service.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		EventDate:   eventDate,
	}, nil
}

// formValue returns a pointer to the first value of key, or nil when the
// field was not sent.
func formValue(form map[string][]string, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := strings.Clone(vals[0])
	return &v
}
