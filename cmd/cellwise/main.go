// Command cellwise loads and recalculates spreadsheet workbooks, either
// as a one-shot CLI pass or as a live HTTP/WebSocket recalculation
// server.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/arlowgrid/cellwise/internal/config"
	"github.com/arlowgrid/cellwise/internal/loader"
	"github.com/arlowgrid/cellwise/internal/parser"
	"github.com/arlowgrid/cellwise/internal/value"
	"github.com/arlowgrid/cellwise/internal/workbook"
	"github.com/arlowgrid/cellwise/internal/wsserver"
)

func main() {
	logger := log.New(os.Stderr, "cellwise: ", log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "eval":
		err = runEval(os.Args[2:], logger)
	case "serve":
		err = runServe(os.Args[2:], logger)
	case "fmt":
		err = runFmt(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cellwise <eval|serve|fmt> [flags]")
}

func runEval(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	in := fs.String("in", "", "workbook file to load (.yaml or .xlsx)")
	out := fs.String("out", "", "workbook file to write (defaults to -in)")
	settings := config.FromEnv()
	fs.IntVar(&settings.NumberPrecision, "precision", settings.NumberPrecision, "decimal places for numeric display")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("eval: -in is required")
	}
	if *out == "" {
		*out = *in
	}

	ld := loader.ForPath(*in)
	book, err := ld.Load(*in)
	if err != nil {
		return fmt.Errorf("load %s: %w", *in, err)
	}

	proc := workbook.NewProcessor(settings.NumberPrecision)
	if err := proc.Process(book); err != nil {
		return fmt.Errorf("process: %w", err)
	}

	outLoader := loader.ForPath(*out)
	if err := outLoader.Save(book, *out); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}

	for _, sheetName := range book.SheetNames() {
		sheet, _ := book.LookupSheet(sheetName)
		for _, id := range sheet.CellIDs() {
			cell := sheet.Cells[id]
			logger.Printf("%s!%s = %s", sheetName, id, value.Display(cell.Result, settings.NumberPrecision))
		}
	}
	return nil
}

func runServe(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	settings := config.FromEnv()
	fs.StringVar(&settings.ListenAddr, "addr", settings.ListenAddr, "HTTP listen address")
	fs.StringVar(&settings.WorkbookPath, "in", settings.WorkbookPath, "workbook file to load at startup")
	fs.IntVar(&settings.NumberPrecision, "precision", settings.NumberPrecision, "decimal places for numeric display")
	if err := fs.Parse(args); err != nil {
		return err
	}

	book := workbook.New()
	if settings.WorkbookPath != "" {
		loaded, err := loader.ForPath(settings.WorkbookPath).Load(settings.WorkbookPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", settings.WorkbookPath, err)
		}
		book = loaded
	}

	srv := wsserver.New(book, settings.NumberPrecision, logger)
	logger.Printf("listening on %s", settings.ListenAddr)
	return http.ListenAndServe(settings.ListenAddr, srv.Handler())
}

func runFmt(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("fmt: expected a single formula argument")
	}
	node, err := parser.ParseFormula(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println("=" + node.Pretty())
	return nil
}
