package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/JonMunkholm/tablewrap/internal/coerce"
	"github.com/JonMunkholm/tablewrap/internal/config"
	"github.com/JonMunkholm/tablewrap/internal/grid"
	"github.com/JonMunkholm/tablewrap/internal/logging"
	"github.com/JonMunkholm/tablewrap/internal/report"
	"github.com/JonMunkholm/tablewrap/internal/store"
)

// extractOutput is printed as JSON by the extract command.
type extractOutput struct {
	ImportID  string `json:"import_id,omitempty"`
	SavedRows int64  `json:"saved_rows,omitempty"`
	*report.Result
}

func extract(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	shape := fs.String("shape", "", "report shape key (see `tablewrap shapes`)")
	format := fs.String("format", "", "csv | tsv | xlsx (default: from file extension)")
	sheet := fs.String("sheet", "", "worksheet name (default: first sheet)")
	save := fs.Bool("save", false, "save records to the database")
	if err := fs.Parse(args); err != nil {
		return exitError{code: 2, msg: fmt.Sprintf("extract: %v\n%s", err, usage)}
	}
	if *shape == "" || fs.NArg() != 1 {
		return exitError{code: 2, msg: "extract: -shape and exactly one FILE are required\n" + usage}
	}
	path := fs.Arg(0)

	def, ok := report.Get(*shape)
	if !ok {
		return exitError{code: 2, msg: fmt.Sprintf("extract: unknown shape %q", *shape)}
	}
	if *save && !cfg.Database.Enabled() {
		return errors.New("-save requires DATABASE_URL")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheetData, err := readSheet(cfg, f, path, *format, *sheet)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	res, err := report.Extract(sheetData, def, name, report.Options{
		Logger: logging.ForImport(ctx, def.Info.Key, name),
	})
	if err != nil {
		return err
	}

	out := extractOutput{Result: res}
	if *save {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		imp, err := store.New(pool).Save(ctx, def, res)
		if err != nil {
			return err
		}
		out.ImportID = imp.ID.String()
		out.SavedRows = imp.Rows
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readSheet(cfg *config.Config, r io.Reader, path, format, sheet string) (*grid.Sheet, error) {
	f, err := grid.ParseFormat(format, path)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Import.Location()
	if err != nil {
		return nil, err
	}
	comma, _ := utf8.DecodeRuneInString(cfg.Import.Comma)

	return grid.Read(io.LimitReader(r, cfg.Import.MaxFileSize), grid.ReadOptions{
		Name:     filepath.Base(path),
		Format:   f,
		Sheet:    sheet,
		Comma:    comma,
		MaxRows:  cfg.Import.MaxRows,
		Coercion: coerce.Cells{Location: loc, TwoDigitYearPivot: cfg.Import.TwoDigitYearPivot},
	})
}
