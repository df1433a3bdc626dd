package plan_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/floorworks/planedit/plan"
)

func TestDefWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	catalog := plan.MakeCatalog()
	reloads := make(chan struct{}, 4)
	dw, err := plan.WatchDefs(catalog, dir, func() {
		reloads <- struct{}{}
	})
	require.NoError(t, err)
	defer dw.Close()

	def := `{"Name":"rack-42u","Category":"equipment","Width":60,"Height":120}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rack.json"), []byte(def), 0644))

	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a def file was written")
	}

	_, ok := catalog.Get(plan.CategoryEquipment, "rack-42u")
	require.True(t, ok, "catalog missed the new def")
}

func TestDefWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	catalog := plan.MakeCatalog()
	reloads := make(chan struct{}, 4)
	dw, err := plan.WatchDefs(catalog, dir, func() {
		reloads <- struct{}{}
	})
	require.NoError(t, err)
	defer dw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("nope"), 0644))

	select {
	case <-reloads:
		t.Fatal("reloaded for a non-def file")
	case <-time.After(750 * time.Millisecond):
	}
}

func TestWatchDefsRejectsMissingDir(t *testing.T) {
	_, err := plan.WatchDefs(plan.MakeCatalog(), "/no/such/dir", nil)
	require.Error(t, err)
}
