package cmd

import (
	"github.com/runningwild/glop/gin"
	"github.com/runningwild/glop/gui"
)

// SaveWidget prompts for a layout name the first time an unnamed layout
// gets saved. The callback receives "" when the prompt is dismissed.
type SaveWidget struct {
	*gui.VerticalTable
	layoutName *gui.TextEditLine
	on_name    func(string)
}

func MakeSaveWidget(on_name func(string)) *SaveWidget {
	var sw SaveWidget

	sw.VerticalTable = gui.MakeVerticalTable()
	sw.on_name = on_name
	sw.AddChild(gui.MakeTextLine("standard_18", "Name this layout", 300, 1, 1, 1, 1))
	sw.layoutName = gui.MakeTextEditLine("standard_18", "layout name", 300, 1, 1, 1, 1)
	sw.AddChild(sw.layoutName)
	sw.AddChild(gui.MakeButton("standard_18", "Save!", 300, 1, 1, 1, 1, func(int64) {
		sw.on_name(sw.layoutName.GetText())
	}))

	return &sw
}

func (sw *SaveWidget) Respond(ui *gui.Gui, event_group gui.EventGroup) bool {
	if found, event := event_group.FindEvent(gin.AnyReturn); found && event.Type == gin.Press {
		sw.on_name(sw.layoutName.GetText())
		return true
	}
	if found, event := event_group.FindEvent(gin.AnyEscape); found && event.Type == gin.Press {
		sw.on_name("")
		return true
	}
	sw.VerticalTable.Respond(ui, event_group)
	return true
}
