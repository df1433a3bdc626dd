package plantest

import (
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan"
)

// RecordingPainter remembers every MarkDirty and Redraw call so tests can
// assert on repaint discipline.
type RecordingPainter struct {
	Marks   []plan.Layer
	Redraws []plan.Layer
}

var _ plan.SurfacePainter = (*RecordingPainter)(nil)

func (p *RecordingPainter) MarkDirty(layer plan.Layer) {
	logging.Debug("RecordingPainter.MarkDirty", "layer", layer)
	p.Marks = append(p.Marks, layer)
}

func (p *RecordingPainter) Redraw(layer plan.Layer) {
	logging.Debug("RecordingPainter.Redraw", "layer", layer)
	p.Redraws = append(p.Redraws, layer)
}

func (p *RecordingPainter) CountMarks(layer plan.Layer) int {
	n := 0
	for _, l := range p.Marks {
		if l == layer {
			n++
		}
	}
	return n
}

func (p *RecordingPainter) CountRedraws(layer plan.Layer) int {
	n := 0
	for _, l := range p.Redraws {
		if l == layer {
			n++
		}
	}
	return n
}

func (p *RecordingPainter) Reset() {
	p.Marks = nil
	p.Redraws = nil
}

// RecordingDetacher stands in for the transform handle owner.
type RecordingDetacher struct {
	Calls [][]string
}

var _ plan.HandleDetacher = (*RecordingDetacher)(nil)

func (d *RecordingDetacher) DetachIfReferencing(ids []string) {
	logging.Debug("RecordingDetacher.DetachIfReferencing", "ids", ids)
	cp := make([]string, len(ids))
	copy(cp, ids)
	d.Calls = append(d.Calls, cp)
}
