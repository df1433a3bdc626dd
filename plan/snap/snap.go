// Package snap decides where dragged geometry should land: grid
// quantization, alignment against other shapes' edges and centers, and
// angle snapping for rotations. Each query is independent; the only state
// callers hold is a Context with the tuning knobs and, during a drag, an
// Index of the stationary shapes.
package snap

import (
	"math"

	"github.com/MobRulesGames/mathgl"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Kind ranks where a candidate value came from. Lower wins ties at equal
// distance.
type Kind int

const (
	KindEdge Kind = iota
	KindCenter
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindEdge:
		return "edge"
	case KindCenter:
		return "center"
	case KindGrid:
		return "grid"
	}
	return "unknown"
}

// Context carries the caller-owned snap configuration. It lives for the
// editor's lifetime and may be mutated between calls.
type Context struct {
	GridPitch         float32
	GridEnabled       bool
	ObjectSnapEnabled bool
	Threshold         float32
}

func MakeContext() Context {
	return Context{
		GridPitch:         10,
		GridEnabled:       true,
		ObjectSnapEnabled: true,
		Threshold:         8,
	}
}

// Target is one stationary shape whose bounds attract dragged geometry.
// Seq is the shape's registry insertion order and breaks candidate ties.
type Target struct {
	Id       string
	Seq      int
	Min, Max mathgl.Vec2
}

// Result reports what one axis of a Point query decided.
type Result struct {
	Snapped  bool
	Value    float32
	Kind     Kind
	TargetId string
	Dist     float32
}

// Angle returns the nearest multiple of increment when angle is within
// tolerance degrees of it, else angle unchanged. A snapped value is
// normalized into [0, 360).
func Angle(angle, increment, tolerance float32) float32 {
	if increment <= 0 {
		return angle
	}
	snapped := float32(math.Round(float64(angle/increment))) * increment
	if absf(angle-snapped) > tolerance {
		return angle
	}
	return NormalizeDegrees(snapped)
}

// NormalizeDegrees maps any angle onto [0, 360).
func NormalizeDegrees(angle float32) float32 {
	angle = float32(math.Mod(float64(angle), 360))
	if angle < 0 {
		angle += 360
	}
	return angle
}

// Point snaps pt against the given targets, minus the excluded ids, without
// a prebuilt Index. Callers that hold a drag open should build the Index
// once instead and query it each frame.
func Point(pt mathgl.Vec2, exclude map[string]bool, targets []Target, ctx Context) (mathgl.Vec2, [2]Result) {
	kept := targets
	if len(exclude) > 0 {
		kept = make([]Target, 0, len(targets))
		for _, t := range targets {
			if exclude[t.Id] {
				continue
			}
			kept = append(kept, t)
		}
	}
	return MakeIndex(kept).Point(pt, ctx)
}

func gridCandidate(v, pitch float32) float32 {
	return float32(math.Round(float64(v/pitch))) * pitch
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
