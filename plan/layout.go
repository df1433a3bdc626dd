package plan

import (
	"errors"

	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
)

// LayoutData is the serialized form of everything on the plan. Shape order
// is the z-order.
type LayoutData struct {
	Name   string
	Shapes []*Shape
}

func (ed *Editor) LayoutName() string {
	return ed.layoutName
}

func (ed *Editor) SetLayoutName(name string) {
	ed.layoutName = name
}

// ExportLayoutData deep-copies the registry, so callers can hold or mutate
// the result without touching live shapes.
func (ed *Editor) ExportLayoutData() *LayoutData {
	data := &LayoutData{Name: ed.layoutName}
	for _, s := range ed.reg.All() {
		data.Shapes = append(data.Shapes, cloneShape(s))
	}
	return data
}

// LoadLayout replaces the whole plan. A shape whose id collides with one
// already loaded gets a fresh id rather than failing the load.
func (ed *Editor) LoadLayout(data *LayoutData) {
	ed.CancelInteraction()
	ed.sel.DeselectAll()
	ed.reg.Clear()
	ed.layoutName = data.Name

	for _, s := range data.Shapes {
		incoming := cloneShape(s)
		_, err := ed.reg.Add(incoming)
		var dup *DuplicateIdError
		if errors.As(err, &dup) {
			logging.Warn("layout holds a duplicate id, regenerating", "id", incoming.Id, "category", incoming.Category)
			incoming.Id = NewShapeId()
			_, err = ed.reg.Add(incoming)
		}
		if err != nil {
			logging.Error("dropping unloadable shape", "id", incoming.Id, "error", err)
		}
	}
	logging.Info("layout loaded", "name", data.Name, "shapes", ed.reg.Count())

	for l := Layer(0); l < NumLayers; l++ {
		ed.painter.Redraw(l)
	}
}

// Save writes the layout as JSON.
func (ed *Editor) Save(path string) error {
	return base.SaveJson(path, ed.ExportLayoutData())
}

// Load reads a layout document and installs it.
func (ed *Editor) Load(path string) error {
	var data LayoutData
	if err := base.LoadJson(path, &data); err != nil {
		return err
	}
	ed.LoadLayout(&data)
	return nil
}
