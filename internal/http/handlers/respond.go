package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

type locationResponse struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title"`
	Address   string  `json:"address,omitempty"`
	BBox      string  `json:"bbox"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

type photoResponse struct {
	ID         int64  `json:"id"`
	LocationID *int64 `json:"locationId"`
	RemoteID   string `json:"remoteId"`
	Title      string `json:"title"`
	ImagePath  string `json:"imagePath"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type photoInfoResponse struct {
	PhotoID int64  `json:"photoId"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"`
	Size    int    `json:"size"`
	Taken   string `json:"taken,omitempty"`
}

func toPhotoResponse(p storage.Photo) photoResponse {
	return photoResponse{
		ID:         p.ID,
		LocationID: p.LocationID,
		RemoteID:   p.RemoteID,
		Title:      p.Title,
		ImagePath:  p.ImagePath,
		CreatedAt:  formatTimestamp(p.CreatedAt),
	}
}

func toPhotoResponses(list []storage.Photo) []photoResponse {
	result := make([]photoResponse, 0, len(list))
	for _, p := range list {
		result = append(result, toPhotoResponse(p))
	}
	return result
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// failSync writes the response for an error returned by the sync engine or
// the store. Classified errors carry a message meant for the caller.
func failSync(c *gin.Context, logger *slog.Logger, err error, fallback string, attrs ...any) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "not found")
	case apperr.IsKind(err, apperr.KindPrecondition):
		errorJSON(c, http.StatusConflict, apperr.Message(err))
	case apperr.IsKind(err, apperr.KindTransport), apperr.IsKind(err, apperr.KindProtocol):
		logger.Warn(fallback, append(attrs, "error", err)...)
		errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		logger.Error(fallback, append(attrs, "error", err)...)
		errorJSON(c, http.StatusInternalServerError, fallback)
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
