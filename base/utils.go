package base

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"code.google.com/p/freetype-go/freetype/truetype"
	"github.com/floorworks/planedit/logging"
	"github.com/go-gl-legacy/gl"
	"github.com/runningwild/glop/gui"
	"github.com/runningwild/glop/render"
)

var datadir string

func SetDatadir(dir string) {
	if datadir == dir {
		return
	}
	if datadir != "" {
		panic(fmt.Errorf("double-setting datadir! was %q, new %q", datadir, dir))
	}
	datadir = dir
}

func GetDataDir() string {
	return datadir
}

var drawing_context gui.UpdateableDrawingContext
var dictionary_mutex sync.Mutex
var dictionaries map[int]*gui.Dictionary

// InitDictionaries builds or loads the glyph dictionaries the app renders
// text with. A missing font file disables text labels instead of failing
// startup; sizes that did load are still usable.
func InitDictionaries(ctx gui.UpdateableDrawingContext, queue render.RenderQueueInterface, sizes ...int) {
	dictionary_mutex.Lock()
	defer dictionary_mutex.Unlock()

	drawing_context = ctx
	dictionaries = make(map[int]*gui.Dictionary)

	for _, size := range sizes {
		d, err := loadDictionary(size, queue)
		if err != nil {
			logging.Warn("no text at this size", "size", size, "err", err)
			continue
		}
		dictionaries[size] = d
		ctx.SetDictionary(fontIdFromProperties("standard", size), d)
	}

	queue.Queue(func(st render.RenderQueueState) {
		ctx.SetShaders("glop.font", st.Shaders())
	})
}

// GetDictionary returns nil if the requested size never loaded; callers are
// expected to skip their text in that case.
func GetDictionary(size int) *gui.Dictionary {
	dictionary_mutex.Lock()
	defer dictionary_mutex.Unlock()
	if drawing_context == nil {
		panic("need to call base.InitDictionaries first")
	}
	return dictionaries[size]
}

func loadFont() (*truetype.Font, error) {
	f, err := os.Open(filepath.Join(datadir, "fonts", "luxisr.ttf"))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return font, nil
}

func fontIdFromProperties(fontName string, size int) string {
	return fmt.Sprintf("%s_%d", fontName, size)
}

func fontCachePath(fontName string, size int) string {
	return fmt.Sprintf("dict_%s.gob", fontIdFromProperties(fontName, size))
}

func saveDictionaryToFile(d *gui.Dictionary, size int) error {
	f, err := os.Create(filepath.Join(datadir, "fonts", fontCachePath("standard", size)))
	if err != nil {
		return err
	}
	defer f.Close()
	return d.Store(f)
}

func loadDictionary(size int, queue render.RenderQueueInterface) (*gui.Dictionary, error) {
	// First, check the disk cache for a grid-of-glyphs.
	filename := filepath.Join(datadir, "fonts", fontCachePath("standard", size))
	f, err := os.Open(filename)
	if err == nil {
		defer f.Close()
		logging.Debug("font-cache-hit", "size", size)
		d, err := gui.LoadDictionary(f, queue, logging.WarnLogger())
		if err != nil {
			return nil, fmt.Errorf("gui.LoadDictionary failed for %q: %w", filename, err)
		}
		return d, nil
	}

	// Make sure this is a cache miss (i.e. missing file) instead of something
	// more serious.
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("couldn't open %q: %w", filename, err)
	}

	logging.Debug("font-cache-miss", "size", size)
	font, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("unable to load font: %w", err)
	}

	d := gui.MakeDictionary(font, size, queue, logging.WarnLogger())
	if err := saveDictionaryToFile(d, size); err != nil {
		logging.Error("unable to cache dictionary", "size", size, "err", err)
	}
	return d, nil
}

// A Path is a string that is intended to store a path. When it is encoded
// with json it will convert itself to a relative path relative to datadir.
// When it is decoded from json it will convert itself to an absolute path
// based on datadir.
type Path string

func (p Path) String() string {
	return string(p)
}
func (p Path) MarshalJSON() ([]byte, error) {
	val := filepath.ToSlash(TryRelative(datadir, string(p)))
	return []byte("\"" + val + "\""), nil
}
func (p *Path) UnmarshalJSON(data []byte) error {
	rel := filepath.FromSlash(string(data[1 : len(data)-1]))
	*p = Path(filepath.Join(datadir, rel))
	return nil
}

// Opens the file named by path, reads it all, decodes it as json into target,
// then closes the file.  Returns the first error found while doing this or nil.
func LoadJson(path string, target interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func SaveJson(path string, source interface{}) error {
	data, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// Returns a path rel such that filepath.Join(a, rel) and b refer to the same
// file.  a and b must both be relative paths or both be absolute paths.  If
// they are not then b will be returned in either case.
func TryRelative(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err == nil {
		return rel
	}
	return target
}

func GetStoreVal(key string) string {
	var store map[string]string
	LoadJson(filepath.Join(datadir, "store"), &store)
	if store == nil {
		store = make(map[string]string)
	}
	return store[key]
}

func SetStoreVal(key, val string) {
	var store map[string]string
	path := filepath.Join(datadir, "store")
	LoadJson(path, &store)
	if store == nil {
		store = make(map[string]string)
	}
	store[key] = val
	SaveJson(path, store)
}

type ColorStack struct {
	colors []color.NRGBA
}

func (cs *ColorStack) Push(r, g, b, a float64) {
	c := color.NRGBA{byte(255 * r), byte(255 * g), byte(255 * b), byte(255 * a)}
	cs.colors = append(cs.colors, c)
}
func (cs *ColorStack) Pop() {
	cs.colors = cs.colors[0 : len(cs.colors)-1]
}
func (cs *ColorStack) subApply(n int) (r, g, b, a float64) {
	if n < 0 {
		return 1, 1, 1, 0
	}
	dr, dg, db, da := cs.subApply(n - 1)
	a = float64(cs.colors[n].A) / 255
	r = float64(cs.colors[n].R)/255*a + dr*(1-a)
	g = float64(cs.colors[n].G)/255*a + dg*(1-a)
	b = float64(cs.colors[n].B)/255*a + db*(1-a)
	a = a + (1-a)*da
	return
}
func (cs *ColorStack) Apply() {
	gl.Color4d(cs.subApply(len(cs.colors) - 1))
}
func (cs *ColorStack) ApplyWithAlpha(alpha float64) {
	r, g, b, a := cs.subApply(len(cs.colors) - 1)
	gl.Color4d(r, g, b, a*alpha)
}
