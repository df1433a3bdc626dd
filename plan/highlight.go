package plan

var selectionAccent = Color{R: 0.24, G: 0.56, B: 0.92, A: 1}

// SelectionStyler restyles shapes as they enter and leave the selection.
// It owns the style snapshots, so deselect always restores exactly what the
// shape looked like before it was selected, no matter how often styles were
// reapplied in between.
type SelectionStyler struct {
	reg     *ShapeRegistry
	painter SurfacePainter
	saved   map[string]Style
}

func MakeSelectionStyler(reg *ShapeRegistry, painter SurfacePainter) *SelectionStyler {
	if painter == nil {
		painter = NoopPainter()
	}
	return &SelectionStyler{
		reg:     reg,
		painter: painter,
		saved:   make(map[string]Style),
	}
}

// OnSelectionChanged is registered with the SelectionManager. It diffs the
// two snapshots and touches only the shapes whose membership changed.
func (ss *SelectionStyler) OnSelectionChanged(prev, cur []string) {
	in := make(map[string]bool, len(cur))
	for _, id := range cur {
		in[id] = true
	}
	was := make(map[string]bool, len(prev))
	for _, id := range prev {
		was[id] = true
	}
	changed := false
	for _, id := range prev {
		if !in[id] {
			ss.restore(id)
			changed = true
		}
	}
	for _, id := range cur {
		if !was[id] {
			ss.apply(id)
			changed = true
		}
	}
	if changed {
		ss.painter.MarkDirty(LayerShapes)
	}
}

func (ss *SelectionStyler) apply(id string) {
	s := ss.reg.Get(id)
	if s == nil {
		return
	}
	if _, ok := ss.saved[id]; !ok {
		ss.saved[id] = s.Style
	}
	if s.IsLine() {
		s.Style.Dashed = true
		s.Style.StrokeWidth = ss.saved[id].StrokeWidth + 2
		s.Style.StrokeColor = selectionAccent
	} else {
		s.Style.StrokeColor = selectionAccent
		s.Style.StrokeWidth = ss.saved[id].StrokeWidth + 1
		s.Style.FillColor = mix(ss.saved[id].FillColor, selectionAccent, 0.25)
	}
}

func (ss *SelectionStyler) restore(id string) {
	style, ok := ss.saved[id]
	if !ok {
		return
	}
	delete(ss.saved, id)
	s := ss.reg.Get(id)
	if s == nil {
		// Deleted while selected, nothing left to restore onto.
		return
	}
	s.Style = style
}

func mix(c, accent Color, t float64) Color {
	return Color{
		R: c.R*(1-t) + accent.R*t,
		G: c.G*(1-t) + accent.G*t,
		B: c.B*(1-t) + accent.B*t,
		A: c.A,
	}
}
