package texture_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/floorworks/planedit/texture"
	"github.com/runningwild/glop/render/rendertest"
)

func TestMain(m *testing.M) {
	texture.Init(rendertest.MakeDiscardingRenderQueue())
	os.Exit(m.Run())
}

func TestBlockUntilLoaded(t *testing.T) {
	t.Run("should take a context with deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		err := texture.BlockUntilLoaded(ctx, "never-loaded")
		if err == nil {
			t.Fatalf("waiting on an unknown icon must hit the deadline")
		}
	})
}

func TestLoadFromPath(t *testing.T) {
	t.Run("rejects an empty path", func(t *testing.T) {
		if _, err := texture.LoadFromPath(""); err == nil {
			t.Fatalf("an empty path can't name an icon")
		}
	})
	t.Run("rejects a path that does not exist", func(t *testing.T) {
		if _, err := texture.LoadFromPath("no/such/icon.png"); err == nil {
			t.Fatalf("expected an error for a missing file")
		}
	})
}

func TestGetInFlightRequests(t *testing.T) {
	if reqs := texture.GetInFlightRequests(); len(reqs) != 0 {
		t.Fatalf("nothing was requested, got %v", reqs)
	}
}
