package photos_test

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
	"github.com/Oxyrus/virtualtourist/internal/photos"
)

func TestInspectPNG(t *testing.T) {
	img := imaging.New(32, 24, color.NRGBA{A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	info, err := photos.Inspect(buf.Bytes())
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info.Width != 32 || info.Height != 24 {
		t.Fatalf("unexpected dimensions %dx%d", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Fatalf("expected png, got %s", info.Format)
	}
	if info.Size != buf.Len() {
		t.Fatalf("expected size %d, got %d", buf.Len(), info.Size)
	}
	if !info.Taken.IsZero() {
		t.Fatalf("expected no capture time, got %v", info.Taken)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := photos.Inspect([]byte("definitely not an image"))
	if !apperr.IsKind(err, apperr.KindProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}
