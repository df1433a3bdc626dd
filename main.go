package main

import (
	"os"
	"runtime"

	"github.com/floorworks/planedit/cmd"
)

func init() {
	// The window and its GL context have to live on the startup thread.
	runtime.LockOSThread()
}

func main() {
	cmd.Main(os.Args)
}
