package plan

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
	"github.com/go-gl-legacy/gl"
	"github.com/runningwild/glop/gui"
)

// Panel is the complete editing surface the shell mounts: the plan viewer
// next to a tab frame with catalog and layout controls.
type Panel interface {
	gui.Widget

	Save() (string, error)
	Load(path string) error

	// Called after the def catalog changes underneath us so the tabs can
	// rebuild what they show.
	Reload()

	GetViewer() *PlanViewer
	GetEditor() *Editor
	SelectTab(int)
}

type tabWidget interface {
	Respond(*gui.Gui, gui.EventGroup) bool
	Reload()
	Collapse()
	Expand()
}

type EditorPanel struct {
	*gui.HorizontalTable
	tab     *gui.TabFrame
	widgets []tabWidget

	editor *Editor
	viewer *PlanViewer
}

var _ Panel = (*EditorPanel)(nil)

func MakeEditorPanel(catalog *Catalog) *EditorPanel {
	var ep EditorPanel
	ep.HorizontalTable = gui.MakeHorizontalTable()
	ep.viewer = MakePlanViewer()
	ep.editor = MakeEditor(ep.viewer)
	ep.viewer.SetEditor(ep.editor)
	ep.HorizontalTable.AddChild(ep.viewer)

	ep.widgets = append(ep.widgets, makePlaceTab(catalog, ep.editor))
	ep.widgets = append(ep.widgets, makeLayoutTab(ep.editor))
	var tabs []gui.Widget
	for _, w := range ep.widgets {
		tabs = append(tabs, w.(gui.Widget))
	}
	ep.tab = gui.MakeTabFrame(tabs)
	ep.HorizontalTable.AddChild(ep.tab)

	return &ep
}

// Manually pass all events to the viewer and the selected tab, regardless
// of location, since both need to see clicks wherever they land.
func (ep *EditorPanel) Respond(ui *gui.Gui, group gui.EventGroup) bool {
	ep.viewer.Respond(ui, group)
	return ep.widgets[ep.tab.SelectedTab()].Respond(ui, group)
}

func (ep *EditorPanel) GetViewer() *PlanViewer {
	return ep.viewer
}

func (ep *EditorPanel) GetEditor() *Editor {
	return ep.editor
}

func (ep *EditorPanel) SelectTab(n int) {
	if n < 0 || n >= len(ep.widgets) {
		return
	}
	if n != ep.tab.SelectedTab() {
		ep.widgets[ep.tab.SelectedTab()].Collapse()
		ep.tab.SelectTab(n)
		ep.widgets[n].Expand()
	}
}

func (ep *EditorPanel) Save() (string, error) {
	name := ep.editor.LayoutName()
	if name == "" {
		return "", fmt.Errorf("layout has no name")
	}
	path := filepath.Join(base.GetDataDir(), "layouts", name+".plan")
	err := ep.editor.Save(path)
	return path, err
}

func (ep *EditorPanel) Load(path string) error {
	if err := ep.editor.Load(path); err != nil {
		return err
	}
	logging.Info("layout loaded", "path", path)
	for _, tab := range ep.widgets {
		tab.Reload()
	}
	return nil
}

func (ep *EditorPanel) Reload() {
	for _, tab := range ep.widgets {
		tab.Reload()
	}
}

// placeTab lists every def in the catalog as a button; clicking one arms
// placement so the next viewer click stamps that def.
type placeTab struct {
	*gui.VerticalTable

	catalog *Catalog
	editor  *Editor

	buttons    *gui.VerticalTable
	defWidgets []gui.Widget

	// def behind the most recent arm, for the icon preview
	armedDef *ShapeDef
}

func makePlaceTab(catalog *Catalog, editor *Editor) *placeTab {
	var pt placeTab
	pt.VerticalTable = gui.MakeVerticalTable()
	pt.catalog = catalog
	pt.editor = editor

	pt.buttons = gui.MakeVerticalTable()
	pt.rebuildButtons()
	scroller := gui.MakeScrollFrame(pt.buttons, 300, 600)
	pt.VerticalTable.AddChild(scroller)
	pt.VerticalTable.AddChild(makeIconPreview(&pt))
	return &pt
}

func (pt *placeTab) rebuildButtons() {
	for _, w := range pt.defWidgets {
		pt.buttons.RemoveChild(w)
	}
	pt.defWidgets = pt.defWidgets[0:0]

	add := func(w gui.Widget) {
		pt.buttons.AddChild(w)
		pt.defWidgets = append(pt.defWidgets, w)
	}

	for cat := Category(0); cat < NumCategories; cat++ {
		names := pt.catalog.Names(cat)
		if len(names) == 0 {
			continue
		}
		c := cat
		add(gui.MakeTextLine("standard_18", c.String(), 300, 1, 1, 1, 1))
		for _, name := range names {
			n := name
			add(gui.MakeButton("standard_18", n, 300, 1, 1, 1, 1, func(gui.EventHandlingContext, int64) {
				proto, err := pt.catalog.Stamp(c, n)
				if err != nil {
					logging.Warn("stamping def failed", "category", c, "name", n, "err", err)
					return
				}
				pt.armedDef, _ = pt.catalog.Get(c, n)
				pt.editor.ArmPlacement(proto)
			}))
		}
	}
}

func (pt *placeTab) Respond(ui *gui.Gui, group gui.EventGroup) bool {
	return pt.VerticalTable.Respond(ui, group)
}

func (pt *placeTab) Reload() {
	pt.rebuildButtons()
}

func (pt *placeTab) Collapse() {
	if pt.editor.PlacementArmed() {
		pt.editor.CancelInteraction()
	}
}

func (pt *placeTab) Expand() {}

// iconPreview paints the armed def's icon below the catalog so it is
// obvious what the next viewer click will stamp.
type iconPreview struct {
	gui.Childless
	gui.BasicZone
	gui.StubDrawFocuseder

	tab *placeTab
}

func makeIconPreview(tab *placeTab) *iconPreview {
	var ip iconPreview
	ip.tab = tab
	ip.Request_dims = gui.Dims{Dx: 300, Dy: 100}
	return &ip
}

func (ip *iconPreview) String() string {
	return "icon preview"
}

func (ip *iconPreview) Think(*gui.Gui, int64) {}

func (ip *iconPreview) Respond(*gui.Gui, gui.EventGroup) bool {
	return false
}

func (ip *iconPreview) Draw(region gui.Region, ctx gui.DrawingContext) {
	ip.Render_region = region
	def := ip.tab.armedDef
	if def == nil || def.Icon.Path == "" || !ip.tab.editor.PlacementArmed() {
		return
	}
	region.PushClipPlanes()
	defer region.PopClipPlanes()
	gl.Color4d(1, 1, 1, 1)
	def.Icon.Data().RenderNatural(region.X, region.Y)
}

// layoutTab edits layout-wide state: the layout name, the grid pitch, and
// the snap toggles. It also shows a running object count.
type layoutTab struct {
	*gui.VerticalTable

	name        *gui.TextEditLine
	pitch       *gui.TextEditLine
	grid_snap   *gui.ComboBox
	object_snap *gui.ComboBox
	counts      *gui.TextEditLine

	editor *Editor
}

func makeLayoutTab(editor *Editor) *layoutTab {
	var lt layoutTab
	lt.VerticalTable = gui.MakeVerticalTable()
	lt.editor = editor

	lt.VerticalTable.AddChild(gui.MakeTextLine("standard_18", "Layout", 300, 1, 1, 1, 1))
	lt.name = gui.MakeTextEditLine("standard_18", editor.LayoutName(), 300, 1, 1, 1, 1)
	lt.VerticalTable.AddChild(lt.name)

	lt.VerticalTable.AddChild(gui.MakeTextLine("standard_18", "Grid pitch", 300, 1, 1, 1, 1))
	lt.pitch = gui.MakeTextEditLine("standard_18", fmt.Sprintf("%v", editor.SnapContext().GridPitch), 300, 1, 1, 1, 1)
	lt.VerticalTable.AddChild(lt.pitch)

	lt.grid_snap = gui.MakeComboTextBox([]string{"Grid snap on", "Grid snap off"}, 300)
	lt.VerticalTable.AddChild(lt.grid_snap)
	lt.object_snap = gui.MakeComboTextBox([]string{"Object snap on", "Object snap off"}, 300)
	lt.VerticalTable.AddChild(lt.object_snap)

	lt.counts = gui.MakeTextEditLine("standard_18", "0 shapes", 300, 1, 1, 1, 1)
	lt.VerticalTable.AddChild(lt.counts)

	return &lt
}

func (lt *layoutTab) Think(ui *gui.Gui, t int64) {
	lt.VerticalTable.Think(ui, t)

	lt.editor.SetLayoutName(lt.name.GetText())

	if pitch, err := strconv.ParseFloat(lt.pitch.GetText(), 32); err == nil {
		if p := float32(pitch); p > 0 && p != lt.editor.SnapContext().GridPitch {
			lt.editor.SetGridPitch(p)
		}
	}

	lt.editor.SetGridSnapEnabled(lt.grid_snap.GetComboedIndex() == 0)
	lt.editor.SetObjectSnapEnabled(lt.object_snap.GetComboedIndex() == 0)

	lt.counts.SetText(fmt.Sprintf("%d shapes", lt.editor.ObjectCount()))
}

func (lt *layoutTab) Respond(ui *gui.Gui, group gui.EventGroup) bool {
	return lt.VerticalTable.Respond(ui, group)
}

func (lt *layoutTab) Reload() {
	lt.name.SetText(lt.editor.LayoutName())
	lt.pitch.SetText(fmt.Sprintf("%v", lt.editor.SnapContext().GridPitch))
}

func (lt *layoutTab) Collapse() {}

func (lt *layoutTab) Expand() {}
