// Command pd-inspect summarises a prediction file and optionally validates
// it or renders score charts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/banshee-data/pdwriter/internal/fsutil"
	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/report"
	"github.com/banshee-data/pdwriter/internal/security"
	"github.com/banshee-data/pdwriter/internal/version"
)

// imageExts are the formats the histogram writer can produce.
var imageExts = []string{".png", ".svg", ".pdf", ".jpg", ".jpeg"}

func main() {
	if err := run(os.Args[1:], os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("pd-inspect: %v", err)
	}
}

func run(args []string, stdout io.Writer, fsys fsutil.FileSystem) error {
	fs := flag.NewFlagSet("pd-inspect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		validate    = fs.Bool("validate", false, "validate records and fail on errors")
		task        = fs.String("task", string(prediction.TaskDetection3D), "task used for validation")
		limit       = fs.Int("limit", prediction.DefaultMaxObjectsPerFrame, "per-frame soft limit (negative disables)")
		htmlPath    = fs.String("html", "", "write an HTML score report to this path")
		pngPath     = fs.String("png", "", "write a score histogram image (.png, .svg, .pdf or .jpg) to this path")
		asJSON      = fs.Bool("json", false, "print the summary as JSON")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: pd-inspect [flags] <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("pd-inspect"))
		return nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one prediction file, got %d arguments", fs.NArg())
	}
	path := fs.Arg(0)

	objs, err := prediction.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	summary := prediction.Summarize(objs, *limit)
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summaryJSON(path, summary)); err != nil {
			return err
		}
	} else {
		printSummary(stdout, path, summary)
	}

	if *htmlPath != "" {
		if err := security.CheckOutputName(*htmlPath, ".html", ".htm"); err != nil {
			return err
		}
		f, err := fsys.Create(*htmlPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *htmlPath, err)
		}
		if err := report.WriteHTML(f, path, objs, *limit); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", *htmlPath, err)
		}
		fmt.Fprintf(stdout, "html report: %s\n", *htmlPath)
	}
	if *pngPath != "" {
		if err := security.ValidateOutputPath(*pngPath, imageExts...); err != nil {
			return err
		}
		if err := report.WriteScoreHistogramPNG(*pngPath, objs, report.DefaultBins); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "histogram: %s\n", *pngPath)
	}

	if *validate {
		t, err := prediction.ParseTask(*task)
		if err != nil {
			return err
		}
		r := prediction.Validate(objs, prediction.ValidateOptions{Task: t, MaxObjectsPerFrame: *limit})
		for _, w := range r.Warnings {
			fmt.Fprintf(stdout, "warning: %s\n", w)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(stdout, "error: %s\n", e)
		}
		if err := r.Err(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "valid for %s\n", t)
	}
	return nil
}

func sortedTypes(s prediction.Summary) []prediction.ObjectType {
	types := make([]prediction.ObjectType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func printSummary(w io.Writer, path string, s prediction.Summary) {
	fmt.Fprintf(w, "file:          %s\n", path)
	fmt.Fprintf(w, "objects:       %d\n", s.Total)
	fmt.Fprintf(w, "contexts:      %d\n", s.Contexts)
	fmt.Fprintf(w, "frames:        %d (max %d per frame, %d over limit)\n", s.Frames, s.MaxPerFrame, s.FramesOverLimit)
	for _, t := range sortedTypes(s) {
		fmt.Fprintf(w, "  %-16s %d\n", t, s.ByType[t])
	}
	if s.Score.Count > 0 {
		fmt.Fprintf(w, "score:         min=%.3f max=%.3f mean=%.3f sd=%.3f p50=%.3f p90=%.3f\n",
			s.Score.Min, s.Score.Max, s.Score.Mean, s.Score.StdDev, s.Score.P50, s.Score.P90)
	}
	if s.Score.OutOfRange > 0 {
		fmt.Fprintf(w, "out of range:  %d scores\n", s.Score.OutOfRange)
	}
}

type jsonSummary struct {
	File            string                `json:"file"`
	Objects         int                   `json:"objects"`
	Contexts        int                   `json:"contexts"`
	Frames          int                   `json:"frames"`
	MaxPerFrame     int                   `json:"max_per_frame"`
	FramesOverLimit int                   `json:"frames_over_limit"`
	ByType          map[string]int        `json:"by_type"`
	Score           prediction.ScoreStats `json:"score"`
}

func summaryJSON(path string, s prediction.Summary) jsonSummary {
	byType := make(map[string]int, len(s.ByType))
	for t, n := range s.ByType {
		byType[t.String()] = n
	}
	return jsonSummary{
		File:            path,
		Objects:         s.Total,
		Contexts:        s.Contexts,
		Frames:          s.Frames,
		MaxPerFrame:     s.MaxPerFrame,
		FramesOverLimit: s.FramesOverLimit,
		ByType:          byType,
		Score:           s.Score,
	}
}
