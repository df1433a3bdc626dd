package texture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/MobRulesGames/mathgl"
	"github.com/MobRulesGames/memory"
	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
	"github.com/go-gl-legacy/gl"
	"github.com/go-gl-legacy/glu"
	"github.com/runningwild/glop/imgmanip"
	"github.com/runningwild/glop/render"
)

// Object is a lazily loaded reference to an icon image on disk. Defs embed
// one; the first render pulls the pixels through the manager.
type Object struct {
	Path base.Path

	// the path that was last loaded, so that changing Path reloads
	path base.Path
	data *Data
}

func (o *Object) Data() *Data {
	if o.data == nil || o.path != o.Path || o.data.texture == 0 {
		var err error
		o.data, err = LoadFromPath(string(o.Path))
		if err != nil {
			logging.Error("icon load failed", "path", o.Path, "err", err)
			o.data = &Data{}
		}
		o.path = o.Path
	}
	o.data.accessed = generation
	return o.data
}

type Data struct {
	dx, dy   int
	texture  gl.Texture
	accessed int
}

func (d *Data) Dx() int {
	return d.dx
}
func (d *Data) Dy() int {
	return d.dy
}
func (d *Data) GetGlTexture() gl.Texture {
	return d.texture
}

var textureList uint

func setupTextureList(queue render.RenderQueueInterface) {
	queue.Queue(func(render.RenderQueueState) {
		textureList = gl.GenLists(1)
		gl.NewList(textureList, gl.COMPILE)
		gl.Begin(gl.QUADS)

		// bottom-left
		gl.TexCoord2d(0, 0)
		gl.Vertex2i(0, 0)

		// top-left
		gl.TexCoord2d(0, 1)
		gl.Vertex2i(0, 1)

		// top-right
		gl.TexCoord2d(1, 1)
		gl.Vertex2i(1, 1)

		// bottom-right
		gl.TexCoord2d(1, 0)
		gl.Vertex2i(1, 0)

		gl.End()
		gl.EndList()
	})
}

// RenderNatural draws the icon at its own pixel size.
func (d *Data) RenderNatural(x, y int) {
	d.Render(float64(x), float64(y), float64(d.dx), float64(d.dy))
}

func (d *Data) Render(x, y, dx, dy float64) {
	if textureList == 0 {
		logging.Warn("Data.Render called before textureList setup!")
		return
	}
	d.Bind()
	Render(x, y, dx, dy)
}

func Render(x, y, dx, dy float64) {
	var run, op mathgl.Mat4
	run.Identity()
	op.Translation(float32(x), float32(y), 0)
	run.Multiply(&op)
	op.Scaling(float32(dx), float32(dy), 1)
	run.Multiply(&op)

	render.WithMultMatrixInMode(&run, render.MatrixModeProjection, func() {
		gl.Enable(gl.TEXTURE_2D)
		gl.CallList(textureList)
	})
}

// Bind makes the icon the active texture, or the error texture when the
// pixels have not arrived yet.
func (d *Data) Bind() {
	if d.texture == 0 {
		if error_texture == 0 {
			makeErrorTexture()
		}
		error_texture.Bind(gl.TEXTURE_2D)
	} else {
		d.texture.Bind(gl.TEXTURE_2D)
	}
}

// Instead of tracking access times, we track how many scavenger passes an
// icon survives without being drawn. generation bumps once per pass, and
// every access stamps the current generation.
var generation int

// Scavenger frees the GL storage of icons that have gone unused for a few
// passes. Run it in its own goroutine.
func (m *Manager) Scavenger() {
	var unused []string
	for {
		time.Sleep(time.Minute)
		unused = unused[0:0]
		m.mutex.RLock()
		for s, d := range m.registry {
			if generation-d.accessed >= 2 {
				unused = append(unused, s)
			}
		}
		m.mutex.RUnlock()

		m.mutex.Lock()
		generation++
		if len(unused) == 0 {
			m.mutex.Unlock()
			continue
		}

		var unused_data []*Data
		for _, s := range unused {
			unused_data = append(unused_data, m.registry[s])
			m.deleted[s] = m.registry[s]
			delete(m.registry, s)
		}
		m.renderQueue.Queue(func(render.RenderQueueState) {
			for _, d := range unused_data {
				d.texture.Delete()
				d.texture = 0
			}
		})
		m.mutex.Unlock()
	}
}

func LoadFromPath(path string) (*Data, error) {
	if manager == nil {
		panic("need to call texture.Init before texture.LoadFromPath")
	}

	return manager.LoadFromPath(path)
}

// Dimensions ride along by value so the decode worker never has to read
// them back out of a Data the render thread might be touching.
type loadRequest struct {
	path   string
	data   *Data
	dx, dy int
}

type Manager struct {
	// Currently loaded or loading icons.
	registry map[string]*Data

	// Scavenged icons park here so a reload reuses the same Data the old
	// holders still point at.
	deleted map[string]*Data

	// Paths with a decode in progress.
	inFlight map[string]bool

	// All gl work goes through this queue.
	renderQueue render.RenderQueueInterface

	// Channels for anyone blocked on a load finishing. Each waiter gets its
	// own channel so concurrent waits on one path all see the result.
	loadWaiters map[string][]chan bool

	mutex sync.RWMutex
}

var manager *Manager

var load_requests chan loadRequest

func Init(renderQueue render.RenderQueueInterface) {
	manager = &Manager{
		registry:    make(map[string]*Data),
		deleted:     make(map[string]*Data),
		inFlight:    make(map[string]bool),
		renderQueue: renderQueue,
		loadWaiters: make(map[string][]chan bool),
	}

	go manager.Scavenger()

	load_requests = make(chan loadRequest, 16)
	for i := 0; i < 2; i++ {
		go func() {
			for req := range load_requests {
				handleLoadRequest(req)
			}
		}()
	}

	setupTextureList(manager.renderQueue)
}

func handleLoadRequest(req loadRequest) {
	logging.Trace("icon manager: handleLoadRequest", "path", req.path)
	f, err := os.Open(req.path)
	if err != nil {
		manager.signalLoad(req.path, false)
		return
	}
	im, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		manager.signalLoad(req.path, false)
		return
	}

	// OpenGL reads rows bottom-up but image decoding stores them top-down,
	// so draw through an inverting canvas.
	pix := memory.GetBlock(4 * req.dx * req.dy)
	rgba := &image.RGBA{
		Pix:    pix,
		Stride: 4 * req.dx,
		Rect:   im.Bounds(),
	}
	canvas := imgmanip.NewInvertedCanvas(rgba)
	draw.Draw(canvas, im.Bounds(), im, image.Point{}, draw.Src)

	manager.renderQueue.Queue(func(render.RenderQueueState) {
		gl.Enable(gl.TEXTURE_2D)
		req.data.texture = gl.GenTexture()
		req.data.texture.Bind(gl.TEXTURE_2D)
		gl.TexEnvf(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
		glu.Build2DMipmaps(gl.TEXTURE_2D, gl.RGBA, req.dx, req.dy, gl.RGBA, gl.UNSIGNED_BYTE, pix)
		memory.FreeBlock(pix)

		manager.signalLoad(req.path, true)
	})
}

func (m *Manager) LoadFromPath(path string) (*Data, error) {
	if path == "" {
		return nil, fmt.Errorf("empty icon path")
	}

	m.mutex.RLock()
	if data, ok := m.registry[path]; ok {
		m.mutex.RUnlock()
		m.mutex.Lock()
		data.accessed = generation
		m.mutex.Unlock()
		return data, nil
	}
	m.mutex.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open path %q: %w", path, err)
	}
	config, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("couldn't decode %q: %w", path, err)
	}

	m.mutex.Lock()
	var data *Data
	var ok bool
	if data, ok = m.deleted[path]; ok {
		delete(m.deleted, path)
	} else {
		data = &Data{}
	}
	data.dx = config.Width
	data.dy = config.Height
	data.accessed = generation
	m.registry[path] = data
	m.inFlight[path] = true
	m.mutex.Unlock()

	logging.Trace("icon manager: sending load request", "path", path)
	load_requests <- loadRequest{path: path, data: data, dx: data.dx, dy: data.dy}
	return data, nil
}

// BlockUntilLoaded waits until every given path has pixels on the GL side,
// or the context expires. Icon paths the manager has never seen resolve
// only when some other caller loads them.
func (m *Manager) BlockUntilLoaded(ctx context.Context, paths ...string) error {
	logging.Trace("block until loaded called", "paths", paths)
	pathset := make(map[string]bool)
	for _, path := range paths {
		pathset[path] = true
	}

	waitChannels := []chan bool{}

	func() {
		m.mutex.Lock()
		defer m.mutex.Unlock()

		// Anything that already has a texture id is done.
		for path, data := range m.registry {
			if data.texture != 0 {
				delete(pathset, path)
			}
		}

		for path := range pathset {
			waitChan := make(chan bool, 1)
			m.loadWaiters[path] = append(m.loadWaiters[path], waitChan)
			waitChannels = append(waitChannels, waitChan)
		}
	}()

	collector := make(chan bool, len(waitChannels))
	for _, waitChan := range waitChannels {
		c := waitChan
		go func() {
			collector <- (<-c)
		}()
	}

	loadOk := true
	for range waitChannels {
		select {
		case loadResult := <-collector:
			loadOk = loadOk && loadResult
		case <-ctx.Done():
			return fmt.Errorf("deadline exceeded")
		}
	}

	if !loadOk {
		return fmt.Errorf("icon load failure")
	}

	return nil
}

func BlockUntilLoaded(ctx context.Context, paths ...string) error {
	if manager == nil {
		panic("need to call texture.Init before texture.BlockUntilLoaded")
	}

	return manager.BlockUntilLoaded(ctx, paths...)
}

// GetInFlightRequests returns the paths with a decode still in progress.
func GetInFlightRequests() []string {
	if manager == nil {
		panic("need to call texture.Init before texture.GetInFlightRequests")
	}

	return manager.GetInFlightRequests()
}

func (m *Manager) GetInFlightRequests() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return slices.Collect(maps.Keys(m.inFlight))
}

func (m *Manager) signalLoad(path string, success bool) {
	logging.Trace("signalling load", "path", path, "success", success)
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.inFlight, path)

	for _, waitChan := range m.loadWaiters[path] {
		waitChan <- success
	}
	delete(m.loadWaiters, path)
}
