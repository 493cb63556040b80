package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("sync: %w", apperr.Transport("search request failed", context.Canceled))

	if got := apperr.KindOf(err); got != apperr.KindTransport {
		t.Fatalf("expected transport kind, got %s", got)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cause to be preserved")
	}
	if msg := apperr.Message(err); msg != "search request failed" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestKindOfUnclassified(t *testing.T) {
	err := errors.New("boom")

	if apperr.KindOf(err) != apperr.KindUnknown {
		t.Fatalf("expected unknown kind")
	}
	if apperr.IsKind(nil, apperr.KindUnknown) {
		t.Fatalf("nil error must not match any kind")
	}
	if apperr.Message(err) != "boom" {
		t.Fatalf("expected fallback message")
	}
}

func TestProtocolFormatsMessage(t *testing.T) {
	err := apperr.Protocol("missing %q key", "pages")

	if err.Error() != `missing "pages" key` {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if !apperr.IsKind(err, apperr.KindProtocol) {
		t.Fatalf("expected protocol kind")
	}
}
