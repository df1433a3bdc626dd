// Package layouttests runs the editor stack against the data files the
// repo actually ships: the def catalog, the sample layout documents and
// the layout scripts. No window, no GL.
package layouttests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/script"
	"github.com/smartystreets/goconvey/convey"
)

type Tester interface {
	Editor() *plan.Editor
	Catalog() *plan.Catalog
	Engine() *script.Engine

	// DataPath joins parts under the test's private copy of the data dir.
	DataPath(parts ...string) string
}

type stackTester struct {
	editor  *plan.Editor
	catalog *plan.Catalog
	engine  *script.Engine
}

func (st *stackTester) Editor() *plan.Editor   { return st.editor }
func (st *stackTester) Catalog() *plan.Catalog { return st.catalog }
func (st *stackTester) Engine() *script.Engine { return st.engine }

func (st *stackTester) DataPath(parts ...string) string {
	return filepath.Join(append([]string{base.GetDataDir()}, parts...)...)
}

var datadirReady bool

// Tests run with the package dir as cwd, so the shipped data dir is two
// levels up. Scripts save into the data dir, so each test binary works on
// a throwaway copy instead of the repo's own files.
func setupDatadir() error {
	if datadirReady {
		return nil
	}

	tmp, err := os.MkdirTemp("", "planedit-data-")
	if err != nil {
		return fmt.Errorf("couldn't os.MkdirTemp: %w", err)
	}
	if err := copyTree(filepath.Join("..", "..", "data"), tmp); err != nil {
		return err
	}

	base.SetDatadir(tmp)
	datadirReady = true
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("couldn't os.ReadFile %q: %w", path, err)
		}
		return os.WriteFile(target, contents, 0o644)
	})
}

// IntegrationTest builds a fresh catalog, editor and script engine over
// the shipped data files and hands them to fn inside a convey context.
func IntegrationTest(t *testing.T, testname string, fn func(Tester)) {
	if err := setupDatadir(); err != nil {
		t.Fatalf("datadir setup failed: %v", err)
	}

	catalog := plan.MakeCatalog()
	if err := catalog.LoadDir(filepath.Join(base.GetDataDir(), "defs")); err != nil {
		t.Fatalf("couldn't load shipped defs: %v", err)
	}
	editor := plan.MakeEditor(nil)

	tst := &stackTester{
		editor:  editor,
		catalog: catalog,
		engine:  script.MakeEngine(editor, catalog),
	}
	convey.Convey(testname, t, func() {
		fn(tst)
	})
}
