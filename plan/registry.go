package plan

import (
	"fmt"

	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan/snap"
	"github.com/google/uuid"
	"github.com/runningwild/glop/util/algorithm"
)

// DuplicateIdError is the one registry failure that surfaces to callers: a
// silent overwrite would corrupt selection and handle references, so the
// caller has to decide whether to reject the shape or regenerate its id.
type DuplicateIdError struct {
	Category Category
	Id       string
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("duplicate %v id %q", e.Category, e.Id)
}

// NewShapeId hands out ids for shapes whose creator doesn't care what
// they're called.
func NewShapeId() string {
	return uuid.NewString()
}

// ShapeRegistry owns the canonical collection of shapes, partitioned by
// category. Everything else holds ids and asks here; nothing mirrors this
// state.
type ShapeRegistry struct {
	all        []*Shape
	byCategory [NumCategories][]*Shape
	nextSeq    int
}

func MakeShapeRegistry() *ShapeRegistry {
	return &ShapeRegistry{}
}

func (sr *ShapeRegistry) find(cat Category, id string) *Shape {
	if cat < 0 || cat >= NumCategories {
		return nil
	}
	for _, s := range sr.byCategory[cat] {
		if s.Id == id {
			return s
		}
	}
	return nil
}

// Add stores the shape and returns it. Ids are unique within a category;
// an empty id gets a fresh one. The shape's rotation is normalized into
// [0, 360).
func (sr *ShapeRegistry) Add(s *Shape) (*Shape, error) {
	if s.Category < 0 || s.Category >= NumCategories {
		return nil, fmt.Errorf("bad category %d for shape %q", int(s.Category), s.Id)
	}
	if s.Id == "" {
		s.Id = NewShapeId()
	}
	if sr.find(s.Category, s.Id) != nil {
		return nil, &DuplicateIdError{Category: s.Category, Id: s.Id}
	}
	s.Rotation = snap.NormalizeDegrees(s.Rotation)
	s.seq = sr.nextSeq
	sr.nextSeq++
	sr.all = append(sr.all, s)
	sr.byCategory[s.Category] = append(sr.byCategory[s.Category], s)
	return s, nil
}

// Remove drops the shape with the given id. Removing an unknown id is a
// logged no-op.
func (sr *ShapeRegistry) Remove(id string) bool {
	target := sr.Get(id)
	if target == nil {
		logging.Debug("remove of unknown shape", "id", id)
		return false
	}
	algorithm.Choose(&sr.all, func(s *Shape) bool {
		return s != target
	})
	algorithm.Choose(&sr.byCategory[target.Category], func(s *Shape) bool {
		return s != target
	})
	return true
}

// Get finds a shape by id. Ids are only guaranteed unique within a
// category; if two categories both hold the id, the earliest category
// wins.
func (sr *ShapeRegistry) Get(id string) *Shape {
	for cat := Category(0); cat < NumCategories; cat++ {
		if s := sr.find(cat, id); s != nil {
			return s
		}
	}
	return nil
}

// All returns every shape in insertion order. The returned slice is shared;
// callers must not mutate it.
func (sr *ShapeRegistry) All() []*Shape {
	return sr.all
}

// ByCategory returns one category's shapes in insertion order.
func (sr *ShapeRegistry) ByCategory(cat Category) []*Shape {
	if cat < 0 || cat >= NumCategories {
		return nil
	}
	return sr.byCategory[cat]
}

// AllSelectable returns the selectable shapes in the given categories, in
// insertion order. No categories means all of them.
func (sr *ShapeRegistry) AllSelectable(categories ...Category) []*Shape {
	wanted := func(Category) bool { return true }
	if len(categories) > 0 {
		set := make(map[Category]bool, len(categories))
		for _, c := range categories {
			set[c] = true
		}
		wanted = func(c Category) bool { return set[c] }
	}

	var ret []*Shape
	for _, s := range sr.all {
		if s.Selectable && wanted(s.Category) {
			ret = append(ret, s)
		}
	}
	return ret
}

func (sr *ShapeRegistry) Clear() {
	sr.all = nil
	for i := range sr.byCategory {
		sr.byCategory[i] = nil
	}
}

func (sr *ShapeRegistry) Count() int {
	return len(sr.all)
}

func (sr *ShapeRegistry) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for cat := Category(0); cat < NumCategories; cat++ {
		if n := len(sr.byCategory[cat]); n > 0 {
			counts[cat] = n
		}
	}
	return counts
}

// SnapTargets converts the selectable shapes, minus the excluded ids, into
// alignment targets for the snap index.
func (sr *ShapeRegistry) SnapTargets(exclude map[string]bool) []snap.Target {
	var targets []snap.Target
	for _, s := range sr.AllSelectable() {
		if exclude[s.Id] {
			continue
		}
		bounds := s.AABB()
		targets = append(targets, snap.Target{
			Id:  s.Id,
			Seq: s.seq,
			Min: bounds.Min,
			Max: bounds.Max,
		})
	}
	return targets
}
