package plan

// Layer names the redraw granularity the painter works at.
type Layer int

const (
	LayerShapes Layer = iota
	LayerOverlay
	LayerGuides
	NumLayers
)

func (l Layer) String() string {
	switch l {
	case LayerShapes:
		return "shapes"
	case LayerOverlay:
		return "overlay"
	case LayerGuides:
		return "guides"
	}
	return "unknown"
}

// SurfacePainter is the rendering collaborator. MarkDirty is called on
// every mutation and must stay cheap; the painter repaints dirty layers on
// its own frame cadence. Redraw asks for an immediate repaint, e.g. after
// a whole layout loads.
type SurfacePainter interface {
	MarkDirty(layer Layer)
	Redraw(layer Layer)
}

type noopPainter struct{}

func (noopPainter) MarkDirty(Layer) {}
func (noopPainter) Redraw(Layer)    {}

// NoopPainter keeps the core runnable headless: tests and scripted batch
// edits inject nothing and still work.
func NoopPainter() SurfacePainter {
	return noopPainter{}
}
