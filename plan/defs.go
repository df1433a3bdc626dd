package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/texture"
)

// ShapeDef is the constant half of a shape: everything instances of a
// def share. Placed shapes copy what they need out of the def instead of
// aliasing it, so a def reload never mutates the plan behind the
// editor's back.
type ShapeDef struct {
	Name     string
	Category Category

	// Rect categories
	Width, Height float32

	// Walls place as a segment this long
	Length float32

	Icon  texture.Object
	Style Style
}

const defaultWallLength float32 = 80

// Catalog holds the shape defs by category and name. Reads and reloads may
// come from different goroutines; the def watcher reloads in the
// background.
type Catalog struct {
	mu   sync.RWMutex
	defs [NumCategories]map[string]*ShapeDef
}

func MakeCatalog() *Catalog {
	c := &Catalog{}
	for i := range c.defs {
		c.defs[i] = make(map[string]*ShapeDef)
	}
	return c
}

// Register stores a def, replacing any previous one with the same name.
func (c *Catalog) Register(def *ShapeDef) error {
	if def.Name == "" {
		return fmt.Errorf("def without a name")
	}
	if def.Category < 0 || def.Category >= NumCategories {
		return fmt.Errorf("def %q has bad category %d", def.Name, int(def.Category))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[def.Category][def.Name]; ok {
		logging.Debug("replacing def", "name", def.Name, "category", def.Category)
	}
	c.defs[def.Category][def.Name] = def
	return nil
}

func (c *Catalog) Get(cat Category, name string) (*ShapeDef, bool) {
	if cat < 0 || cat >= NumCategories {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[cat][name]
	return def, ok
}

// Names lists one category's def names in sorted order.
func (c *Catalog) Names(cat Category) []string {
	if cat < 0 || cat >= NumCategories {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.defs[cat]))
	for name := range c.defs[cat] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for i := range c.defs {
		n += len(c.defs[i])
	}
	return n
}

// Stamp builds an unplaced shape from a def. The shape still has no id;
// the registry hands one out when it is added.
func (c *Catalog) Stamp(cat Category, name string) (*Shape, error) {
	def, ok := c.Get(cat, name)
	if !ok {
		return nil, fmt.Errorf("no %v def named %q", cat, name)
	}
	s := &Shape{
		Category:   def.Category,
		DefName:    def.Name,
		Width:      def.Width,
		Height:     def.Height,
		Selectable: true,
		Style:      def.Style,
	}
	if s.Category == CategoryWall {
		length := def.Length
		if length <= 0 {
			length = defaultWallLength
		}
		s.Points = []mathgl.Vec2{{X: 0, Y: 0}, {X: length, Y: 0}}
		s.Width, s.Height = 0, 0
	}
	return s, nil
}

// LoadDir loads every def file under dir, recursively. A file that fails
// to parse keeps its old registration and the load moves on; only a broken
// walk fails the whole call.
func (c *Catalog) LoadDir(dir string) error {
	loaded := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		var def ShapeDef
		if err := base.LoadJson(path, &def); err != nil {
			logging.Warn("unreadable def file", "path", path, "error", err)
			return nil
		}
		if err := c.Register(&def); err != nil {
			logging.Warn("rejecting def", "path", path, "error", err)
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading defs from %q: %w", dir, err)
	}
	logging.Info("defs loaded", "dir", dir, "count", loaded)
	return nil
}
