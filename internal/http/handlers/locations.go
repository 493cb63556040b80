package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/virtualtourist/internal/geo"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

type LocationHandler struct {
	logger    *slog.Logger
	locations storage.Locations
	photos    storage.Photos
	sync      *photosync.Coordinator
}

func NewLocationHandler(logger *slog.Logger, locations storage.Locations, photos storage.Photos, sync *photosync.Coordinator) *LocationHandler {
	return &LocationHandler{
		logger:    logger,
		locations: locations,
		photos:    photos,
		sync:      sync,
	}
}

type locationCreateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Title     string   `json:"title"`
	Address   string   `json:"address"`
}

type locationUpdateRequest struct {
	Title   *string `json:"title"`
	Address *string `json:"address"`
}

type locationDetail struct {
	locationResponse
	Sync photosync.Status `json:"sync"`
}

func (h *LocationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	locs, err := h.locations.List(ctx)
	if err != nil {
		h.logger.Error("failed to list locations", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to load locations")
		return
	}

	items := make([]locationResponse, 0, len(locs))
	for _, loc := range locs {
		items = append(items, toLocationResponse(loc))
	}

	c.JSON(http.StatusOK, items)
}

// Create stores a new location and starts counting its result pages in the
// background, so an album can be requested right after.
func (h *LocationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req locationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	errs := map[string]string{}
	if req.Latitude == nil {
		errs["latitude"] = "Latitude is required."
	}
	if req.Longitude == nil {
		errs["longitude"] = "Longitude is required."
	}
	if len(errs) == 0 {
		if err := geo.Validate(*req.Latitude, *req.Longitude); err != nil {
			errs["coordinates"] = err.Error()
		}
	}
	if len(errs) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	loc, err := h.locations.Create(ctx, storage.LocationCreate{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Title:     strings.TrimSpace(req.Title),
		Address:   strings.TrimSpace(req.Address),
	})
	if err != nil {
		h.logger.Error("failed to create location", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to create location")
		return
	}

	h.sync.RefreshPageCount(context.WithoutCancel(ctx), loc)

	h.logger.Info("location created", "locationID", loc.ID, "bbox", geo.BoundingBox(loc.Latitude, loc.Longitude).String())
	c.JSON(http.StatusCreated, toLocationResponse(loc))
}

func (h *LocationHandler) Get(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, locationDetail{
		locationResponse: toLocationResponse(loc),
		Sync:             h.sync.Status(loc.ID),
	})
}

func (h *LocationHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c)
	if !ok {
		errorJSON(c, http.StatusNotFound, "location not found")
		return
	}

	var req locationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil && req.Address == nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": map[string]string{"body": "Nothing to update."}})
		return
	}

	input := storage.LocationUpdate{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		input.Title = &title
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		input.Address = &address
	}

	updated, err := h.locations.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "location not found")
			return
		}
		h.logger.Error("failed to update location", "locationID", id, "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to update location")
		return
	}

	h.logger.Info("location updated", "locationID", updated.ID)
	c.JSON(http.StatusOK, toLocationResponse(updated))
}

func (h *LocationHandler) Delete(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.sync.DeleteLocation(c.Request.Context(), loc); err != nil {
		failSync(c, h.logger, err, "failed to delete location", "locationID", loc.ID)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LocationHandler) DeleteAll(c *gin.Context) {
	n, err := h.sync.DeleteAllLocations(c.Request.Context())
	if err != nil {
		failSync(c, h.logger, err, "failed to delete locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *LocationHandler) RefreshPageCount(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	pc, err := h.sync.RefreshPageCount(c.Request.Context(), loc).Wait(c.Request.Context())
	if err != nil {
		failSync(c, h.logger, err, "failed to count pages", "locationID", loc.ID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pc.Pages, "total": pc.Total})
}

func (h *LocationHandler) FetchAlbum(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	album, err := h.sync.FetchRandomAlbum(c.Request.Context(), loc).Wait(c.Request.Context())
	if err != nil {
		failSync(c, h.logger, err, "failed to fetch album", "locationID", loc.ID)
		return
	}

	c.JSON(http.StatusOK, albumResponse(album))
}

func (h *LocationHandler) NewCollection(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	album, err := h.sync.NewCollection(c.Request.Context(), loc)
	if err != nil {
		failSync(c, h.logger, err, "failed to build new collection", "locationID", loc.ID)
		return
	}

	c.JSON(http.StatusOK, albumResponse(album))
}

func (h *LocationHandler) CancelSync(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		errorJSON(c, http.StatusNotFound, "location not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": h.sync.CancelActiveSync(id)})
}

func (h *LocationHandler) Status(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.sync.Status(loc.ID))
}

func (h *LocationHandler) Photos(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	list, err := h.photos.ListByLocation(c.Request.Context(), loc.ID)
	if err != nil {
		h.logger.Error("failed to list photos", "locationID", loc.ID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to load photos")
		return
	}

	c.JSON(http.StatusOK, toPhotoResponses(list))
}

func (h *LocationHandler) DeletePhotos(c *gin.Context) {
	loc, ok := h.load(c)
	if !ok {
		return
	}

	n, err := h.sync.DeletePhotos(c.Request.Context(), loc)
	if err != nil {
		failSync(c, h.logger, err, "failed to delete photos", "locationID", loc.ID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// load resolves the :id parameter, writing the error response itself when
// the location cannot be found.
func (h *LocationHandler) load(c *gin.Context) (storage.Location, bool) {
	id, ok := parseID(c)
	if !ok {
		errorJSON(c, http.StatusNotFound, "location not found")
		return storage.Location{}, false
	}

	loc, err := h.locations.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "location not found")
			return storage.Location{}, false
		}
		h.logger.Error("failed to load location", "locationID", id, "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to load location")
		return storage.Location{}, false
	}

	return loc, true
}

func toLocationResponse(loc storage.Location) locationResponse {
	return locationResponse{
		ID:        loc.ID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Title:     loc.Title,
		Address:   loc.Address,
		BBox:      geo.BoundingBox(loc.Latitude, loc.Longitude).String(),
		CreatedAt: formatTimestamp(loc.CreatedAt),
		UpdatedAt: formatTimestamp(loc.UpdatedAt),
	}
}

func albumResponse(album photosync.Album) gin.H {
	return gin.H{
		"locationId": album.LocationID,
		"page":       album.Page,
		"photos":     toPhotoResponses(album.Photos),
	}
}
