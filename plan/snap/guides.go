package snap

import (
	"math"

	"github.com/MobRulesGames/GoLLRB/llrb"
	"github.com/MobRulesGames/mathgl"
)

// A stop is a single attracting value on one axis. Stops are totally
// ordered by (value, kind, seq) so that equal values keep a deterministic
// winner: edges before centers, earlier shapes before later ones.
type stop struct {
	value float32
	kind  Kind
	seq   int
	id    string
}

func stopLess(_a, _b interface{}) bool {
	a := _a.(stop)
	b := _b.(stop)
	if a.value != b.value {
		return a.value < b.value
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	return a.seq < b.seq
}

// Index holds the stationary alignment stops for one drag, one ordered
// tree per axis, so every pointer-move queries the neighbors of the moving
// value instead of rescanning the whole registry.
type Index struct {
	x, y    *llrb.Tree
	targets map[string]Target
}

func MakeIndex(targets []Target) *Index {
	idx := &Index{
		x:       llrb.New(stopLess),
		y:       llrb.New(stopLess),
		targets: make(map[string]Target, len(targets)),
	}
	for _, t := range targets {
		idx.targets[t.Id] = t
		cx := (t.Min.X + t.Max.X) / 2
		cy := (t.Min.Y + t.Max.Y) / 2
		idx.x.ReplaceOrInsert(stop{value: t.Min.X, kind: KindEdge, seq: t.Seq, id: t.Id})
		idx.x.ReplaceOrInsert(stop{value: t.Max.X, kind: KindEdge, seq: t.Seq, id: t.Id})
		idx.x.ReplaceOrInsert(stop{value: cx, kind: KindCenter, seq: t.Seq, id: t.Id})
		idx.y.ReplaceOrInsert(stop{value: t.Min.Y, kind: KindEdge, seq: t.Seq, id: t.Id})
		idx.y.ReplaceOrInsert(stop{value: t.Max.Y, kind: KindEdge, seq: t.Seq, id: t.Id})
		idx.y.ReplaceOrInsert(stop{value: cy, kind: KindCenter, seq: t.Seq, id: t.Id})
	}
	return idx
}

// Target returns the stationary shape a Result's TargetId refers to.
func (idx *Index) Target(id string) (Target, bool) {
	t, ok := idx.targets[id]
	return t, ok
}

// nearestStops finds the best stop at the closest value below v and at the
// closest value above v. Either may be absent.
func nearestStops(tree *llrb.Tree, v float32) []stop {
	// The probe sorts before every real stop at value v.
	probe := stop{value: v, kind: -1, seq: -1}
	var found []stop
	if below := tree.LowerBound(probe); below != nil {
		s := below.(stop)
		// LowerBound lands on the last stop at that value; re-probe for the
		// first one so the edge-over-center ranking holds.
		first := tree.UpperBound(stop{value: s.value, kind: -1, seq: -1})
		if first != nil {
			found = append(found, first.(stop))
		}
	}
	if above := tree.UpperBound(probe); above != nil {
		found = append(found, above.(stop))
	}
	return found
}

// candidate ordering: distance, then kind, then insertion order.
func better(a, b stop, va, vb float32) bool {
	if va != vb {
		return va < vb
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	return a.seq < b.seq
}

func (idx *Index) snapAxis(tree *llrb.Tree, v float32, ctx Context) Result {
	var best stop
	var bestDist float32
	found := false

	consider := func(s stop) {
		d := absf(v - s.value)
		if d > ctx.Threshold {
			return
		}
		if !found || better(s, best, d, bestDist) {
			best = s
			bestDist = d
			found = true
		}
	}

	if ctx.ObjectSnapEnabled {
		for _, s := range nearestStops(tree, v) {
			consider(s)
		}
	}
	if ctx.GridEnabled && ctx.GridPitch > 0 {
		g := gridCandidate(v, ctx.GridPitch)
		consider(stop{value: g, kind: KindGrid, seq: math.MaxInt})
	}

	if !found {
		return Result{Snapped: false, Value: v}
	}
	return Result{
		Snapped:  true,
		Value:    best.value,
		Kind:     best.kind,
		TargetId: best.id,
		Dist:     bestDist,
	}
}

// Point snaps the x and y of pt independently. An axis with no candidate
// within the threshold comes back unsnapped, carrying the raw input value.
func (idx *Index) Point(pt mathgl.Vec2, ctx Context) (mathgl.Vec2, [2]Result) {
	rx := idx.snapAxis(idx.x, pt.X, ctx)
	ry := idx.snapAxis(idx.y, pt.Y, ctx)
	return mathgl.Vec2{X: rx.Value, Y: ry.Value}, [2]Result{rx, ry}
}

// Guide is one alignment line to draw while a snap is live: a vertical
// line at Value for AxisX, horizontal for AxisY, spanning [From, To] on
// the other axis.
type Guide struct {
	Axis     Axis
	Value    float32
	From, To float32
}

// GuidesFor converts the object-snapped results of a Point query into
// drawable guide lines joining the moving bounds to the matched target.
// Grid results draw nothing; the grid is already visible.
func (idx *Index) GuidesFor(movingMin, movingMax mathgl.Vec2, results [2]Result) []Guide {
	var guides []Guide
	for axis, r := range results {
		if !r.Snapped || r.TargetId == "" {
			continue
		}
		t, ok := idx.targets[r.TargetId]
		if !ok {
			continue
		}
		if Axis(axis) == AxisX {
			guides = append(guides, Guide{
				Axis:  AxisX,
				Value: r.Value,
				From:  minf(movingMin.Y, t.Min.Y),
				To:    maxf(movingMax.Y, t.Max.Y),
			})
		} else {
			guides = append(guides, Guide{
				Axis:  AxisY,
				Value: r.Value,
				From:  minf(movingMin.X, t.Min.X),
				To:    maxf(movingMax.X, t.Max.X),
			})
		}
	}
	return guides
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
