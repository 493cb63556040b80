package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/virtualtourist/internal/photos"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// ImageLoader resolves the bytes of a stored photo.
type ImageLoader interface {
	Image(ctx context.Context, p storage.Photo) ([]byte, error)
	Thumbnail(ctx context.Context, p storage.Photo, size int) ([]byte, error)
}

const maxThumbnailSize = 2048

type PhotoHandler struct {
	logger *slog.Logger
	photos storage.Photos
	sync   *photosync.Coordinator
	images ImageLoader
}

func NewPhotoHandler(logger *slog.Logger, photos storage.Photos, sync *photosync.Coordinator, images ImageLoader) *PhotoHandler {
	return &PhotoHandler{
		logger: logger,
		photos: photos,
		sync:   sync,
		images: images,
	}
}

func (h *PhotoHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toPhotoResponse(p))
}

func (h *PhotoHandler) Delete(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.sync.DeletePhoto(c.Request.Context(), p); err != nil {
		failSync(c, h.logger, err, "failed to delete photo", "photoID", p.ID)
		return
	}

	c.Status(http.StatusNoContent)
}

// Image serves the photo bytes, downloading them on a cache miss. A size
// query parameter returns a JPEG thumbnail fitting a size x size square.
func (h *PhotoHandler) Image(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 || size > maxThumbnailSize {
			errorJSON(c, http.StatusBadRequest, "size must be between 1 and 2048")
			return
		}

		thumb, err := h.images.Thumbnail(ctx, p, size)
		if err != nil {
			failSync(c, h.logger, err, "failed to render thumbnail", "photoID", p.ID)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", thumb)
		return
	}

	data, err := h.images.Image(ctx, p)
	if err != nil {
		failSync(c, h.logger, err, "failed to load image", "photoID", p.ID)
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Info reports the dimensions, format and capture time of the photo image.
func (h *PhotoHandler) Info(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	data, err := h.images.Image(c.Request.Context(), p)
	if err != nil {
		failSync(c, h.logger, err, "failed to load image", "photoID", p.ID)
		return
	}

	info, err := photos.Inspect(data)
	if err != nil {
		failSync(c, h.logger, err, "failed to inspect image", "photoID", p.ID)
		return
	}

	c.JSON(http.StatusOK, photoInfoResponse{
		PhotoID: p.ID,
		Width:   info.Width,
		Height:  info.Height,
		Format:  info.Format,
		Size:    info.Size,
		Taken:   formatTimestamp(info.Taken),
	})
}

func (h *PhotoHandler) load(c *gin.Context) (storage.Photo, bool) {
	id, ok := parseID(c)
	if !ok {
		errorJSON(c, http.StatusNotFound, "photo not found")
		return storage.Photo{}, false
	}

	p, err := h.photos.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "photo not found")
			return storage.Photo{}, false
		}
		h.logger.Error("failed to load photo", "photoID", id, "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to load photo")
		return storage.Photo{}, false
	}

	return p, true
}
