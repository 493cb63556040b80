package photos

import (
	"bytes"
	"image"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
)

// Info describes an image without decoding its pixels.
type Info struct {
	Width  int
	Height int
	Format string
	Size   int
	// Taken is the EXIF capture time. Zero when the image carries none.
	Taken time.Time
}

// Inspect reads the dimensions, format and capture time of data.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, apperr.Protocol("cannot read image header: %v", err)
	}

	info := Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   len(data),
	}

	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		if taken, err := x.DateTime(); err == nil {
			info.Taken = taken
		}
	}

	return info, nil
}
