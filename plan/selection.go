package plan

import (
	"github.com/floorworks/planedit/logging"
	"github.com/runningwild/glop/util/algorithm"
)

// HandleDetacher is anything holding transform handles that must let go of
// shapes before those shapes are removed from the registry.
type HandleDetacher interface {
	DetachIfReferencing(ids []string)
}

// SelectionListener is told about every selection change. prev and cur are
// snapshots in selection order; listeners may keep them.
type SelectionListener func(prev, cur []string)

// SelectionManager owns the ordered set of selected shape ids. Ids are
// validated against the registry on the way in, so listeners never see an
// id with no shape behind it.
type SelectionManager struct {
	reg       *ShapeRegistry
	ids       []string
	listeners []SelectionListener
	detacher  HandleDetacher
}

func MakeSelectionManager(reg *ShapeRegistry) *SelectionManager {
	return &SelectionManager{reg: reg}
}

// SetHandleDetacher wires the transform handle owner in. Optional; without
// it PrepareForDelete only drops ids from the selection.
func (sm *SelectionManager) SetHandleDetacher(d HandleDetacher) {
	sm.detacher = d
}

func (sm *SelectionManager) AddListener(l SelectionListener) {
	sm.listeners = append(sm.listeners, l)
}

// Selected returns the selected ids in selection order. The slice is a
// copy.
func (sm *SelectionManager) Selected() []string {
	out := make([]string, len(sm.ids))
	copy(out, sm.ids)
	return out
}

// Primary is the first selected id, or "" when nothing is selected.
func (sm *SelectionManager) Primary() string {
	if len(sm.ids) == 0 {
		return ""
	}
	return sm.ids[0]
}

func (sm *SelectionManager) IsSelected(id string) bool {
	for _, sid := range sm.ids {
		if sid == id {
			return true
		}
	}
	return false
}

func (sm *SelectionManager) Size() int {
	return len(sm.ids)
}

// Select adds id to the selection. With multi false the current selection
// is replaced, with multi true it is extended. Selecting an id that is
// already part of a multi selection changes nothing.
func (sm *SelectionManager) Select(id string, multi bool) {
	if sm.reg.Get(id) == nil {
		logging.Debug("select of unknown shape", "id", id)
		return
	}
	if multi && sm.IsSelected(id) {
		return
	}
	prev := sm.Selected()
	if !multi {
		sm.ids = sm.ids[:0]
	}
	if !sm.IsSelected(id) {
		sm.ids = append(sm.ids, id)
	}
	sm.notify(prev)
}

// Toggle flips id's membership in the selection.
func (sm *SelectionManager) Toggle(id string) {
	if sm.reg.Get(id) == nil {
		logging.Debug("toggle of unknown shape", "id", id)
		return
	}
	prev := sm.Selected()
	if sm.IsSelected(id) {
		algorithm.Choose(&sm.ids, func(sid string) bool {
			return sid != id
		})
	} else {
		sm.ids = append(sm.ids, id)
	}
	sm.notify(prev)
}

// Deselect removes id from the selection if it is there.
func (sm *SelectionManager) Deselect(id string) {
	if !sm.IsSelected(id) {
		logging.Debug("deselect of unselected shape", "id", id)
		return
	}
	prev := sm.Selected()
	algorithm.Choose(&sm.ids, func(sid string) bool {
		return sid != id
	})
	sm.notify(prev)
}

// SelectMany replaces or extends the selection with ids, keeping selection
// order and skipping ids that are unknown or already selected. Used by
// fence selection to commit a whole drag in one notification.
func (sm *SelectionManager) SelectMany(ids []string, additive bool) {
	prev := sm.Selected()
	if !additive {
		sm.ids = sm.ids[:0]
	}
	changed := !additive && len(prev) > 0
	for _, id := range ids {
		if sm.reg.Get(id) == nil {
			logging.Debug("select of unknown shape", "id", id)
			continue
		}
		if sm.IsSelected(id) {
			continue
		}
		sm.ids = append(sm.ids, id)
		changed = true
	}
	if !changed {
		return
	}
	sm.notify(prev)
}

// DeselectAll empties the selection. No notification goes out if there was
// nothing selected.
func (sm *SelectionManager) DeselectAll() {
	if len(sm.ids) == 0 {
		return
	}
	prev := sm.Selected()
	sm.ids = sm.ids[:0]
	sm.notify(prev)
}

// PrepareForDelete removes ids from the selection and detaches any
// transform handles referencing them. Callers must invoke this before
// pulling the shapes out of the registry so nothing downstream holds a
// reference to a removed shape.
func (sm *SelectionManager) PrepareForDelete(ids []string) {
	if sm.detacher != nil {
		sm.detacher.DetachIfReferencing(ids)
	}
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	prev := sm.Selected()
	removed := false
	algorithm.Choose(&sm.ids, func(sid string) bool {
		if doomed[sid] {
			removed = true
			return false
		}
		return true
	})
	if !removed {
		return
	}
	sm.notify(prev)
}

func (sm *SelectionManager) notify(prev []string) {
	cur := sm.Selected()
	for _, l := range sm.listeners {
		l(prev, cur)
	}
}
