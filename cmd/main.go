package cmd

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/MobRulesGames/memory"
	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/console"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/script"
	"github.com/floorworks/planedit/texture"
	"github.com/go-gl-legacy/gl"
	glopdebug "github.com/runningwild/glop/debug"
	"github.com/runningwild/glop/gin"
	"github.com/runningwild/glop/gos"
	"github.com/runningwild/glop/gui"
	"github.com/runningwild/glop/render"
	"github.com/runningwild/glop/system"
)

var (
	key_map base.KeyMap
	anchor  *gui.AnchorBox
	chooser *gui.FileChooser
	saver   *SaveWidget
)

const (
	wdx = 1280
	wdy = 800
)

func ensureDirectory(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

func openLogFile(datadir string) (*os.File, error) {
	logFileName := filepath.Join(datadir, "logs", "planedit.log")

	err := ensureDirectory(logFileName)
	if err != nil {
		return nil, fmt.Errorf("couldn't create dir for %q: %w", logFileName, err)
	}

	f, err := os.Create(logFileName)
	if err != nil {
		return nil, fmt.Errorf("couldn't os.Create %q: %w", logFileName, err)
	}
	return f, nil
}

func onEditorPanic(recoveredValue interface{}) {
	stack := debug.Stack()
	logging.Error("PANIC", "val", recoveredValue, "stack", stack)
	fmt.Printf("PANIC: %v\n", recoveredValue)
	fmt.Printf("PANIC: %s\n", string(stack))
}

const TargetFPS = 60

func WatchForSlowJobs() *render.JobTimingListener {
	return &render.JobTimingListener{
		OnNotify: func(info *render.JobTimingInfo, attribution string) {
			logging.Warn("slow render job", "runtime", info.RunTime, "queuetime", info.QueueTime, "location", attribution)
		},
		Threshold: time.Second / TargetFPS,
	}
}

func initializeDependencies(datadir string) (system.System, io.Reader, func()) {
	gin.In().SetLogger(logging.InfoLogger())

	logging.SetLoggingLevel(slog.LevelInfo)
	sysret := system.Make(gos.NewSystemInterface(), gin.In())

	base.SetDatadir(datadir)
	logFile, err := openLogFile(base.GetDataDir())
	if err != nil {
		fmt.Printf("warning: couldn't open logfile in %q\nlogging to stdout instead\n", base.GetDataDir())
		logFile = os.Stdout
	}

	// Ignore the returned 'undo' func; it's only really for testing. We don't
	// want to _not_ log to the log file.
	_, logReader := logging.RedirectAndSpy(logFile)

	logging.Info("setting datadir", "datadir", base.GetDataDir())

	return sysret, logReader, func() {
		logFile.Close()
	}
}

// runBatch executes a layout script with no window. Defs load, the script
// runs against a headless editor, and whatever it saved is on disk when we
// return.
func runBatch(scriptPath string) error {
	catalog := plan.MakeCatalog()
	if err := catalog.LoadDir(filepath.Join(base.GetDataDir(), "defs")); err != nil {
		return fmt.Errorf("loading defs failed: %w", err)
	}
	editor := plan.MakeEditor(nil)
	engine := script.MakeEngine(editor, catalog)
	return engine.RunFile(scriptPath)
}

func Main(argv []string) {
	flags := flag.NewFlagSet("planedit", flag.ExitOnError)
	datadir := flags.String("datadir", "data", "directory holding defs, layouts, fonts and key binds")
	batchScript := flags.String("script", "", "run this layout script headless and exit")
	flags.Parse(argv[1:])

	sys, logReader, cleanup := initializeDependencies(*datadir)
	defer cleanup()

	defer func() {
		if r := recover(); r != nil {
			onEditorPanic(r)
			panic(r)
		}
	}()

	if *batchScript != "" {
		if err := runBatch(*batchScript); err != nil {
			logging.Error("batch script failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var key_binds base.KeyBinds
	err := base.LoadJson(filepath.Join(base.GetDataDir(), "key_binds.json"), &key_binds)
	if err != nil {
		panic(fmt.Errorf("couldn't load key binds: %w", err))
	}
	key_map = key_binds.MakeKeyMap()
	base.SetDefaultKeyMap(key_map)

	logging.Info("version", "version", Version())
	sys.Startup()
	queue := render.MakeQueueWithTiming(func(render.RenderQueueState) {
		sys.CreateWindow(10, 10, wdx, wdy)
		sys.EnableVSync(true)
		err := gl.Init()
		if err != 0 {
			panic(err)
		}
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}, WatchForSlowJobs())
	queue.AddErrorCallback(func(_ render.RenderQueueInterface, e error) {
		logging.Error("render-thread error", "err", e)
	})
	queue.StartProcessing()

	texture.Init(queue)

	runtime.GOMAXPROCS(8)
	ui, err := gui.Make(gui.Dims{Dx: wdx, Dy: wdy}, gin.In())
	if err != nil {
		panic(err.Error())
	}
	base.InitDictionaries(ui, queue, 18)

	defsDir := filepath.Join(base.GetDataDir(), "defs")
	catalog := plan.MakeCatalog()
	if err := catalog.LoadDir(defsDir); err != nil {
		logging.Warn("loading defs failed", "dir", defsDir, "err", err)
	}

	panel := plan.MakeEditorPanel(catalog)
	if last := base.GetStoreVal("last layout path"); last != "" {
		path := filepath.Join(base.GetDataDir(), last)
		if err := panel.Load(path); err != nil {
			logging.Warn("couldn't reopen last layout", "path", path, "err", err)
		}
	}

	// Def reloads arrive on the watcher's goroutine; the frame loop drains
	// this channel so the panel only rebuilds between frames.
	reloads := make(chan struct{}, 1)
	watcher, err := plan.WatchDefs(catalog, defsDir, func() {
		select {
		case reloads <- struct{}{}:
		default:
		}
	})
	if err != nil {
		logging.Warn("def watching disabled", "err", err)
	} else {
		defer watcher.Close()
	}

	engine := script.MakeEngine(panel.GetEditor(), catalog)
	cons := console.MakeConsole(logReader)
	cons.SetCommandRunner(engine)

	ui.AddChild(panel)
	ui.AddChild(cons)

	sys.Think()
	// Wait until now to draw because the render thread needs to be running
	// in advance.
	queue.Queue(func(render.RenderQueueState) {
		ui.Draw()
	})
	queue.Purge()

	runEditorLoop(queue, ui, sys, panel, reloads)
}

func savePanel(panel plan.Panel) {
	path, err := panel.Save()
	if err != nil {
		logging.Warn("save failed", "err", err)
		return
	}
	if path != "" {
		base.SetStoreVal("last layout path", base.TryRelative(base.GetDataDir(), path))
	}
}

// promptForLayoutName pops a SaveWidget; saving needs a layout name and
// unnamed layouts don't have one yet.
func promptForLayoutName(ui *gui.Gui, panel plan.Panel) {
	saver = MakeSaveWidget(func(name string) {
		ui.DropFocus()
		ui.RemoveChild(anchor)
		saver = nil
		anchor = nil
		if name == "" {
			return
		}
		panel.GetEditor().SetLayoutName(name)
		savePanel(panel)
	})
	anchor = gui.MakeAnchorBox(gui.Dims{Dx: wdx, Dy: wdy})
	anchor.AddChild(saver, gui.Anchor{Wx: 0.5, Wy: 0.5, Bx: 0.5, By: 0.5})
	ui.AddChild(anchor)
	ui.TakeFocus(saver)
}

func editMode(ui *gui.Gui, panel plan.Panel) {
	if ui.FocusWidget() != nil {
		return
	}

	if key_map["save"].FramePressCount() > 0 && chooser == nil && saver == nil {
		if panel.GetEditor().LayoutName() == "" {
			promptForLayoutName(ui, panel)
		} else {
			savePanel(panel)
		}
	}

	if key_map["load"].FramePressCount() > 0 && chooser == nil && saver == nil {
		callback := func(path string, err error) {
			ui.DropFocus()
			ui.RemoveChild(anchor)
			chooser = nil
			anchor = nil
			if err != nil {
				logging.Warn("file chooser", "err", err)
				return
			}
			err = panel.Load(path)
			if err != nil {
				logging.Warn("load failed", "path", path, "err", err)
			} else {
				base.SetStoreVal("last layout path", base.TryRelative(base.GetDataDir(), path))
			}
		}
		chooser = gui.MakeFileChooser(filepath.Join(base.GetDataDir(), "layouts"), callback, gui.MakeFileFilter(".plan"))
		anchor = gui.MakeAnchorBox(gui.Dims{Dx: wdx, Dy: wdy})
		anchor.AddChild(chooser, gui.Anchor{Wx: 0.5, Wy: 0.5, Bx: 0.5, By: 0.5})
		ui.AddChild(anchor)
		ui.TakeFocus(chooser)
	}

	// Don't switch tabs if the keypress was part of some other command.
	for _, v := range key_map {
		if v.FramePressCount() > 0 {
			return
		}
	}

	numericKeyId := gin.AnyKeyPad0
	for i := 1; i <= 9; i++ {
		idx := int(gin.AnyKeyPad0.Index) + i
		numericKeyId.Index = gin.KeyIndex(idx)
		if gin.In().GetKeyById(numericKeyId).FramePressCount() > 0 {
			panel.SelectTab(i - 1)
		}
	}
}

func runEditorLoop(queue render.RenderQueueInterface, ui *gui.Gui, sys system.System, panel plan.Panel, reloads <-chan struct{}) {
	var profile_output *os.File
	heap_prof_count := 0

	var tickCount int64
	for {
		if key_map["quit"].FramePressCount() != 0 {
			break
		}

		renderStart := time.Now()
		sys.Think()
		tickCount += 1
		queue.Queue(func(render.RenderQueueState) {
			gl.Finish()
		})
		queue.Queue(func(render.RenderQueueState) {
			sys.SwapBuffers()
			ui.Draw()
		})
		queue.Purge()
		logging.Trace("renderwork", "duration", time.Since(renderStart), "tick", tickCount)

		select {
		case <-reloads:
			panel.Reload()
			logging.Info("defs reloaded")
		default:
		}

		editMode(ui, panel)

		if key_map["cpu profile"].FramePressCount() > 0 {
			if profile_output == nil {
				var err error
				profile_output, err = os.Create(filepath.Join(base.GetDataDir(), "cpu.prof"))
				if err == nil {
					err = pprof.StartCPUProfile(profile_output)
					if err != nil {
						logging.Error("cpu profile", "fail to start", err)
						profile_output.Close()
						profile_output = nil
					}
					logging.Info("profile", "outputfile", profile_output)
				} else {
					logging.Error("cpu profile", "file creation failed", err)
				}
			} else {
				pprof.StopCPUProfile()
				profile_output.Close()
				profile_output = nil
			}
		}

		if key_map["heap profile"].FramePressCount() > 0 {
			out, err := os.Create(filepath.Join(base.GetDataDir(), fmt.Sprintf("heap-%d.prof", heap_prof_count)))
			heap_prof_count++
			if err == nil {
				err = pprof.WriteHeapProfile(out)
				out.Close()
				if err != nil {
					logging.Error("heap profile", "unable to write", err)
				}
			} else {
				logging.Error("heap profile", "unable to create file", err)
			}
		}

		if key_map["manual mem"].FramePressCount() > 0 {
			logging.Info("memory", "allocations", memory.TotalAllocations())
		}

		if key_map["screenshot"].FramePressCount() > 0 {
			fname := filepath.Join(base.GetDataDir(), "screen.png")
			f, err := os.Create(fname)
			if err != nil {
				panic(fmt.Errorf("couldn't os.Create %q: %w", fname, err))
			}
			defer f.Close()

			queue.Queue(func(render.RenderQueueState) {
				glopdebug.ScreenShot(wdx, wdy, f)
			})
		}
	}
}
