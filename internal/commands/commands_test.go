package commands

import (
	"context"
	"errors"
	"flag"
	"path/filepath"
	"testing"

	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/config"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

func newCLIContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func useTempEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("VT_DB_PATH", filepath.Join(dir, "vt.db"))
	t.Setenv("VT_CACHE_DIR", filepath.Join(dir, "images"))
	t.Setenv("VT_API_KEY", "")
	t.Setenv("VT_LOG_LEVEL", "error")
	return dir
}

func TestLocationArg(t *testing.T) {
	cases := []struct {
		args    []string
		want    int64
		wantErr bool
	}{
		{[]string{"42"}, 42, false},
		{nil, 0, true},
		{[]string{"abc"}, 0, true},
		{[]string{"0"}, 0, true},
		{[]string{"--", "-3"}, 0, true},
	}

	for _, tc := range cases {
		got, err := locationArg(newCLIContext(t, tc.args...))
		if tc.wantErr {
			if err == nil {
				t.Fatalf("args %v: expected error", tc.args)
			}
			continue
		}
		if err != nil {
			t.Fatalf("args %v: unexpected error %v", tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("args %v: expected %d, got %d", tc.args, tc.want, got)
		}
	}
}

func TestLocationTitle(t *testing.T) {
	if got := locationTitle(storage.Location{Title: "Paris"}); got != "Paris" {
		t.Fatalf("expected title, got %q", got)
	}
	if got := locationTitle(storage.Location{Latitude: 48.8566, Longitude: 2.25}); got != "48.8566, 2.2500" {
		t.Fatalf("expected coordinates, got %q", got)
	}
}

func TestSetupRequiresAPIKeyForCatalog(t *testing.T) {
	useTempEnv(t)

	if _, err := setup(true); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	s, err := setup(false)
	if err != nil {
		t.Fatalf("setup without catalog: %v", err)
	}
	s.close()
}

func TestPurgeDeletesLocation(t *testing.T) {
	useTempEnv(t)

	s, err := setup(false)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	loc, err := s.store.Locations().Create(context.Background(), storage.LocationCreate{Latitude: 1, Longitude: 2})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	s.close()

	if err := purgeAction(newCLIContext(t, "1")); err != nil {
		t.Fatalf("purge: %v", err)
	}

	s, err = setup(false)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer s.close()
	if _, err := s.store.Locations().GetByID(context.Background(), loc.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected location to be deleted, got %v", err)
	}
}
