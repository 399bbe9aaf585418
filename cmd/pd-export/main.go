// Command pd-export moves prediction runs between the SQLite store and
// submission files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pdwriter/internal/config"
	"github.com/banshee-data/pdwriter/internal/fsutil"
	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/predstore"
	"github.com/banshee-data/pdwriter/internal/security"
	"github.com/banshee-data/pdwriter/internal/version"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("pd-export: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, fsys fsutil.FileSystem) error {
	defaults := config.DefaultWriterConfig()

	fs := flag.NewFlagSet("pd-export", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		dbPath      = fs.String("db", defaults.GetDBPath(), "path to sqlite db")
		runID       = fs.String("run", "", "run ID to export, or to append to with -import")
		outPath     = fs.String("o", "", "output file for -run (default preds_<run>.bin in the temp dir)")
		list        = fs.Bool("list", false, "list stored runs")
		importPath  = fs.String("import", "", "store this prediction file as a new run")
		task        = fs.String("task", string(prediction.TaskDetection3D), "task recorded for -import")
		deleteRun   = fs.String("delete", "", "delete a stored run")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("pd-export"))
		return nil
	}
	if !*list && *runID == "" && *importPath == "" && *deleteRun == "" {
		return fmt.Errorf("one of -list, -run, -import or -delete is required")
	}

	store, err := predstore.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	switch {
	case *list:
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %-12s  %6d objects  %s  %s\n",
				r.RunID, r.Task, r.ObjectCount, time.Unix(0, r.CreatedAt).UTC().Format(time.RFC3339), r.Notes)
		}
		return nil

	case *importPath != "":
		t, err := prediction.ParseTask(*task)
		if err != nil {
			return err
		}
		objs, err := prediction.ReadFile(fsys, *importPath)
		if err != nil {
			return err
		}
		if *runID != "" {
			n, err := store.InsertObjects(ctx, *runID, objs)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "appended %d objects to run %s\n", n, *runID)
			return nil
		}
		r, err := store.CreateRunWithObjects(ctx, t, "imported from "+*importPath, objs)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d objects as run %s\n", r.ObjectCount, r.RunID)
		return nil

	case *deleteRun != "":
		if err := store.DeleteRun(ctx, *deleteRun); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted run %s\n", *deleteRun)
		return nil
	}

	objs, err := store.LoadObjects(ctx, *runID)
	if err != nil {
		return err
	}
	if *outPath == "" {
		*outPath = filepath.Join(os.TempDir(), "preds_"+security.SanitizeFilename(*runID)+".bin")
	}
	if err := fsutil.EnsureParentDir(fsys, *outPath); err != nil {
		return err
	}
	if err := prediction.WriteFile(fsys, *outPath, objs); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %d objects from run %s to %s\n", objs.Len(), *runID, *outPath)
	return nil
}
