// Command pascgolden is the back end's regression harness: it runs every
// pkg/pipeline unit, hashes the generated assembly with xxhash, and
// compares the hash against a checksummed file under testdata/golden/.
// This is the teacher's cmd/gtest workflow cut down to what a back end
// with no reference compiler to shell out to actually needs: content-hash
// comparison against golden files rather than a compile-and-run diff
// against a second compiler binary.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/xplshn/pascbe/pkg/codegen"
	"github.com/xplshn/pascbe/pkg/config"
	"github.com/xplshn/pascbe/pkg/diag"
	"github.com/xplshn/pascbe/pkg/pipeline"
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cNone   = "\x1b[0m"
)

var (
	goldenDir = flag.String("golden-dir", "testdata/golden", "directory holding checksummed golden files")
	update    = flag.Bool("update", false, "write the current hash as the new golden value instead of comparing")
	jobs      = flag.Int("j", 4, "number of parallel units to hash")
	verbose   = flag.Bool("v", false, "log every unit, not just failures")
)

// Result is one unit's outcome, kept sortable for a stable report the way
// cmd/gtest sorts its FileTestResult slice by name before printing.
type Result struct {
	Name   string
	Status string // PASS, FAIL, UPDATED, ERROR
	Got    string
	Want   string
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(*goldenDir, 0o755); err != nil {
		log.Fatalf("%s[ERROR]%s could not create golden dir %s: %v\n", cRed, cNone, *goldenDir, err)
	}

	tasks := make(chan string, len(pipeline.Names))
	resultsChan := make(chan Result, len(pipeline.Names))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range tasks {
				resultsChan <- runUnit(name)
			}
		}()
	}
	for _, name := range pipeline.Names {
		tasks <- name
	}
	close(tasks)
	wg.Wait()
	close(resultsChan)

	var results []Result
	for r := range resultsChan {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	failed := printSummary(results)
	if failed {
		os.Exit(1)
	}
}

// runUnit generates one pipeline unit's assembly into a temp file, hashes
// it with xxhash the way hashFile does in the teacher's cmd/gtest, and
// either compares it against or overwrites its golden file.
func runUnit(name string) Result {
	tmp, err := os.CreateTemp("", "pascgolden-*.s")
	if err != nil {
		return Result{Name: name, Status: "ERROR", Want: fmt.Sprintf("could not create temp file: %v", err)}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	out, err := codegen.NewOutput(tmpPath)
	if err != nil {
		return Result{Name: name, Status: "ERROR", Want: fmt.Sprintf("could not open output: %v", err)}
	}

	cfg := config.New()
	sink := diag.NewSink(io.Discard)
	pipeline.Run(out, cfg, sink, name, name, nil)

	if err := out.Close(); err != nil {
		return Result{Name: name, Status: "ERROR", Want: fmt.Sprintf("could not close output: %v", err)}
	}

	got, err := hashFile(tmpPath)
	if err != nil {
		return Result{Name: name, Status: "ERROR", Want: fmt.Sprintf("could not hash output: %v", err)}
	}

	goldenPath := filepath.Join(*goldenDir, name+".xxh64")
	if *update {
		if err := os.WriteFile(goldenPath, []byte(got+"\n"), 0o644); err != nil {
			return Result{Name: name, Status: "ERROR", Got: got, Want: fmt.Sprintf("could not write golden file: %v", err)}
		}
		return Result{Name: name, Status: "UPDATED", Got: got}
	}

	wantBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		return Result{Name: name, Status: "FAIL", Got: got, Want: fmt.Sprintf("no golden file (run with -update): %v", err)}
	}
	want := trimNewline(string(wantBytes))
	if want != got {
		return Result{Name: name, Status: "FAIL", Got: got, Want: want}
	}
	return Result{Name: name, Status: "PASS", Got: got, Want: want}
}

// hashFile computes the xxhash of a file's content, mirroring the
// teacher's cmd/gtest hashFile helper.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func printSummary(results []Result) (failed bool) {
	for _, r := range results {
		switch r.Status {
		case "PASS":
			if *verbose {
				fmt.Printf("%s[PASS]%s %s %s\n", cGreen, cNone, r.Name, r.Got)
			}
		case "UPDATED":
			fmt.Printf("%s[UPDATED]%s %s %s\n", cYellow, cNone, r.Name, r.Got)
		case "FAIL":
			failed = true
			fmt.Printf("%s[FAIL]%s %s: got %s, want %s\n", cRed, cNone, r.Name, r.Got, r.Want)
		case "ERROR":
			failed = true
			fmt.Printf("%s[ERROR]%s %s: %s\n", cRed, cNone, r.Name, r.Want)
		}
	}
	passed := 0
	for _, r := range results {
		if r.Status == "PASS" {
			passed++
		}
	}
	fmt.Printf("%d/%d units matched their golden hash\n", passed, len(results))
	return failed
}
