// Bisects test cross-talk. Given a victim test that only fails when other
// tests run alongside it, this narrows the rest of the suite down to a
// small set that still makes the victim fail.
//
// Both arguments are files listing one test name per line. Runs drive the
// repo Makefile, so run it from the repo root.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"strings"
)

var recipe = flag.String("recipe", "test-nocache", "make recipe that runs the tests")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-recipe name] <victim-list> <suite-list>\n", os.Args[0])
	os.Exit(1)
}

func readTestList(fpath string) []string {
	f, err := os.Open(fpath)
	if err != nil {
		panic(fmt.Errorf("couldn't os.Open %q: %w", fpath, err))
	}
	defer f.Close()

	byteSlice, err := io.ReadAll(f)
	if err != nil {
		panic(fmt.Errorf("couldn't io.ReadAll %q: %w", fpath, err))
	}

	ret := []string{}
	for _, line := range bytes.Split(byteSlice, []byte{'\n'}) {
		if len(line) != 0 {
			ret = append(ret, string(line))
		}
	}

	slog.Info("readTestList", "fpath", fpath, "result", ret)
	return ret
}

func victimFailsWith(victim, suite []string) bool {
	// Shuffle so that repeated shrinks sample different subsets instead of
	// contiguous slices of the original order.
	rand.Shuffle(len(suite), func(i, j int) {
		suite[i], suite[j] = suite[j], suite[i]
	})

	testpattern := strings.Join(append(victim, suite...), "\\|")
	testpattern = strings.ReplaceAll(testpattern, "'", "\\'")
	testrunargs := fmt.Sprintf("testrunargs=-run %s", testpattern)

	cmd := exec.Command("make", testrunargs, *recipe)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Info("going to run 'make' command", "cmd", cmd)
	err := cmd.Run()
	return err != nil
}

func showTests(parts []string) string {
	return strings.Join(parts, ", ")
}

func reportCrossTalk(victim, suite []string) {
	fmt.Printf("cross talk reduction: %q (%d) coupled with %q (%d) still fails\n",
		showTests(victim), len(victim), showTests(suite), len(suite))
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}

	victimTests := readTestList(flag.Arg(0))
	suiteTests := readTestList(flag.Arg(1))
	fmt.Printf("attempting cross-talk reduction between %d victims and %d suite-mates\n",
		len(victimTests), len(suiteTests))

	if !victimFailsWith(victimTests, suiteTests) {
		panic("couldn't repro with original specification")
	}

	// Halve the suite as long as one of the halves keeps the victim
	// failing; stop when neither half does on its own.
	for len(suiteTests) > 0 {
		if len(suiteTests) == 1 {
			reportCrossTalk(victimTests, suiteTests)
			return
		}
		slog.Info("looping", "suiteTests", suiteTests)
		suiteLen := len(suiteTests)

		firstHalf, secondHalf := suiteTests[0:suiteLen/2], suiteTests[suiteLen/2:]

		if victimFailsWith(victimTests, firstHalf) {
			suiteTests = firstHalf
			continue
		}

		if victimFailsWith(victimTests, secondHalf) {
			suiteTests = secondHalf
			continue
		}

		// Neither half alone reproduces it, so the coupling needs most of
		// this set. Good enough to report.
		reportCrossTalk(victimTests, suiteTests)
		return
	}

	panic("ran out of input!?")
}
