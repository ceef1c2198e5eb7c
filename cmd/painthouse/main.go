// Command painthouse paints the surfaces of a house model and exports the result.
//
//	painthouse view   [-config file] [-model name] [-area name] [-watch] [-profile]
//	painthouse export [-config file] [-model name] [-area name] [-paint x,y=#HEX ...] [-format pdf|png] [-out dir]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine"
	"github.com/Carmen-Shannon/paint-house/engine/brush"
	"github.com/Carmen-Shannon/paint-house/engine/catalog"
	"github.com/Carmen-Shannon/paint-house/engine/window"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "view":
		err = runView(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("painthouse %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: painthouse <view|export> [flags]")
	fmt.Fprintln(os.Stderr, "run 'painthouse <command> -h' for the flags of a command")
}

// loadCatalog returns the embedded catalog, or the file at path merged over it.
func loadCatalog(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	configPath := fs.String("config", "", "catalog config file (.yaml, .yml or .toml)")
	model := fs.String("model", "", "model to open (default from config)")
	area := fs.String("area", "", "area of the model to open")
	watchFiles := fs.Bool("watch", false, "reload the model when its file changes")
	profile := fs.Bool("profile", false, "log frame and memory stats every second")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := loadCatalog(*configPath)
	if err != nil {
		return err
	}
	cfg := cat.Config()

	eng := engine.NewEngine(
		engine.WithCatalog(cat),
		engine.WithWatch(*watchFiles),
		engine.WithProfiling(*profile),
		engine.WithWindow(window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
			window.WithCursor(brush.CursorDefault),
		)),
	)
	defer eng.Close()

	if *model != "" || *area != "" {
		if err := eng.SelectModel(common.Coalesce(*model, cfg.Defaults.Model), *area); err != nil {
			return err
		}
	}
	log.Printf("[Engine] keys: P paint mode, E export PDF, S export PNG, H house, R room, 1-3 areas, Esc quit")
	return eng.Run()
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "catalog config file (.yaml, .yml or .toml)")
	model := fs.String("model", "", "model to export (default from config)")
	area := fs.String("area", "", "area of the model to export")
	format := fs.String("format", "", "document format: pdf or png (default from config)")
	out := fs.String("out", "", "output directory (default from config)")
	var ops paintOps
	fs.Var(&ops, "paint", "paint the surface under x,y with a color, e.g. 400,300=#FF5733 (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := loadCatalog(*configPath)
	if err != nil {
		return err
	}
	cfg := cat.Config()

	eng := engine.NewEngine(
		engine.WithCatalog(cat),
		engine.WithOutputDir(common.Coalesce(*out, cfg.Capture.Output)),
	)
	defer eng.Close()

	if err := eng.SelectModel(common.Coalesce(*model, cfg.Defaults.Model), *area); err != nil {
		return err
	}

	b := eng.Brush()
	b.SetPainting(true)
	painted := 0
	for _, op := range ops {
		b.SetHexInput(op.Hex)
		before := eng.Viewer().PaintCount()
		eng.HandleMouseDown(common.MouseLeft, int32(op.X), int32(op.Y))
		eng.HandleMouseUp(common.MouseLeft, int32(op.X), int32(op.Y))
		if eng.Viewer().PaintCount() > before {
			painted++
		}
	}
	b.SetPainting(false)
	if len(ops) > 0 {
		log.Printf("[Export] %d of %d paint operations hit a surface", painted, len(ops))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := eng.Export(ctx, common.Coalesce(*format, cfg.Capture.Format))
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	return nil
}
