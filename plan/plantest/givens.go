package plantest

import (
	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/plan"
)

func GivenARegistry() *plan.ShapeRegistry {
	return plan.MakeShapeRegistry()
}

func GivenAnEditor() (*plan.Editor, *RecordingPainter) {
	painter := &RecordingPainter{}
	return plan.MakeEditor(painter), painter
}

// MustAdd feeds a shape to the registry and panics on rejection. Tests that
// build fixtures don't want error plumbing for ids they just made up.
func MustAdd(reg *plan.ShapeRegistry, s *plan.Shape) *plan.Shape {
	added, err := reg.Add(s)
	if err != nil {
		panic(err)
	}
	return added
}

func MakeRack(id string, x, y, w, h float32) *plan.Shape {
	return &plan.Shape{
		Id:         id,
		Category:   plan.CategoryEquipment,
		DefName:    "rack-42u",
		Pos:        mathgl.Vec2{X: x, Y: y},
		Width:      w,
		Height:     h,
		Selectable: true,
		Style: plan.Style{
			StrokeColor: plan.Color{R: 0.13, G: 0.13, B: 0.13, A: 1},
			FillColor:   plan.Color{R: 0.78, G: 0.78, B: 0.8, A: 1},
			StrokeWidth: 1,
		},
	}
}

func MakeWall(id string, x1, y1, x2, y2 float32) *plan.Shape {
	return &plan.Shape{
		Id:       id,
		Category: plan.CategoryWall,
		DefName:  "wall-interior",
		Points: []mathgl.Vec2{
			{X: x1, Y: y1},
			{X: x2, Y: y2},
		},
		Selectable: true,
		Style: plan.Style{
			StrokeColor: plan.Color{R: 0.2, G: 0.2, B: 0.2, A: 1},
			StrokeWidth: 4,
		},
	}
}

func MakeRoom(id string, x, y, w, h float32) *plan.Shape {
	return &plan.Shape{
		Id:         id,
		Category:   plan.CategoryRoom,
		DefName:    "room-generic",
		Pos:        mathgl.Vec2{X: x, Y: y},
		Width:      w,
		Height:     h,
		Selectable: true,
		Style: plan.Style{
			StrokeColor: plan.Color{R: 0.45, G: 0.45, B: 0.45, A: 1},
			FillColor:   plan.Color{R: 0.93, G: 0.93, B: 0.9, A: 1},
			StrokeWidth: 2,
		},
	}
}

func MakeComponent(id string, x, y, w, h float32) *plan.Shape {
	return &plan.Shape{
		Id:         id,
		Category:   plan.CategoryComponent,
		DefName:    "sensor-unit",
		Pos:        mathgl.Vec2{X: x, Y: y},
		Width:      w,
		Height:     h,
		Selectable: true,
		Style: plan.Style{
			StrokeColor: plan.Color{R: 0.3, G: 0.3, B: 0.35, A: 1},
			FillColor:   plan.Color{R: 0.85, G: 0.88, B: 0.95, A: 1},
			StrokeWidth: 1,
		},
	}
}
