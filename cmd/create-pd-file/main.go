// Command create-pd-file writes a prediction file for submission. With no
// arguments it writes the single example record to /tmp/your_preds.bin.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/pdwriter/internal/config"
	"github.com/banshee-data/pdwriter/internal/fsutil"
	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/submission"
	"github.com/banshee-data/pdwriter/internal/version"
)

const submitTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("create-pd-file: %v", err)
	}
}

func run(args []string, stdout io.Writer, fsys fsutil.FileSystem) error {
	fs := flag.NewFlagSet("create-pd-file", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		outPath     = fs.String("o", prediction.DefaultOutputPath, "output file path")
		configPath  = fs.String("config", "", "writer config JSON (optional)")
		mode        = fs.String("validate", "", "validation mode: off, warn or strict")
		task        = fs.String("task", "", "task: detection_3d, detection_2d, tracking_3d or tracking_2d")
		frames      = fs.Int("synthetic", 0, "write N frames of synthetic tracks instead of the example record")
		seed        = fs.Int64("seed", 1, "random seed for -synthetic")
		contextName = fs.String("context", "synthetic-context", "context name for -synthetic")
		objType     = fs.String("type", "", "override every object's type, e.g. vehicle or TYPE_SIGN")
		camera      = fs.String("camera", "", "override every object's camera, e.g. front or SIDE_LEFT")
		submitAddr  = fs.String("submit", "", "also submit the collection to a pd-server at this address")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("create-pd-file"))
		return nil
	}

	cfg := config.DefaultWriterConfig()
	if *configPath != "" {
		loaded, err := config.LoadWriterConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	// Explicit flags override the config file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutputPath = outPath
		case "validate":
			if _, err := prediction.ParseValidationMode(*mode); err != nil {
				flagErr = err
			}
			cfg.ValidationMode = mode
		case "task":
			if _, err := prediction.ParseTask(*task); err != nil {
				flagErr = err
			}
			cfg.Task = task
		}
	})
	if flagErr != nil {
		return flagErr
	}

	var overrides []func(*prediction.Object)
	if *objType != "" {
		t, err := prediction.ParseObjectType(*objType)
		if err != nil {
			return err
		}
		overrides = append(overrides, func(o *prediction.Object) { o.ObjectType = t })
	}
	if *camera != "" {
		c, err := prediction.ParseCameraName(*camera)
		if err != nil {
			return err
		}
		overrides = append(overrides, func(o *prediction.Object) { o.CameraName = c })
	}

	var records []prediction.Object
	if *frames > 0 {
		g := prediction.NewSyntheticGenerator(*contextName, 0, *seed)
		for i := 0; i < *frames; i++ {
			objs, err := g.NextFrame()
			if err != nil {
				return err
			}
			records = append(records, objs...)
		}
	} else {
		records = append(records, prediction.ExampleObject())
	}
	for i := range records {
		for _, apply := range overrides {
			apply(&records[i])
		}
	}

	b := prediction.NewBuilder(cfg.BuilderOptions()...)
	b.Add(records...)

	objs, err := b.Build()
	if err != nil {
		return err
	}
	path := cfg.GetOutputPath()
	if err := prediction.WriteFile(fsys, path, objs); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d objects to %s\n", objs.Len(), path)

	if *submitAddr != "" {
		return submit(*submitAddr, objs, stdout)
	}
	return nil
}

func submit(addr string, objs *prediction.Objects, stdout io.Writer) error {
	client, conn, err := submission.Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	res, err := client.Submit(ctx, objs)
	if err != nil {
		return fmt.Errorf("submit to %s: %w", addr, err)
	}
	fmt.Fprintf(stdout, "submitted %d objects as run %s\n", res.Accepted, res.RunID)
	return nil
}
