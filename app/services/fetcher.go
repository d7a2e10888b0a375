package services

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jhwlcrzzz/attendance-dashboard/app/attendance"
	"github.com/jhwlcrzzz/attendance-dashboard/app/cache"
	"github.com/jhwlcrzzz/attendance-dashboard/app/config"
	"github.com/jhwlcrzzz/attendance-dashboard/app/sheets"
)

// sheetFetcher adapts the spreadsheet source to the cache's Fetcher
// interface: the marker cell read plus the full worksheet read and parse.
type sheetFetcher struct {
	src sheets.Source
	cfg config.SheetConfig
	loc *time.Location
}

// NewSheetFetcher wires a sheet source and the attendance reader together.
func NewSheetFetcher(src sheets.Source, cfg config.SheetConfig, loc *time.Location) cache.Fetcher {
	if loc == nil {
		loc = time.Local
	}
	return &sheetFetcher{src: src, cfg: cfg, loc: loc}
}

// FetchMarker reads and parses the last-modified cell. Both a failed read and
// an unparseable value come back as errors, which the cache absorbs as "no
// change detected".
func (f *sheetFetcher) FetchMarker(ctx context.Context) (time.Time, error) {
	raw, err := f.src.ReadCell(ctx, f.cfg.MarkerWorksheet, f.cfg.MarkerCell)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, fmt.Errorf("marker cell %s!%s is empty", f.cfg.MarkerWorksheet, f.cfg.MarkerCell)
	}
	t, err := dateparse.ParseIn(raw, f.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("marker cell %s!%s: %w", f.cfg.MarkerWorksheet, f.cfg.MarkerCell, err)
	}
	return t, nil
}

// FetchEvents does the expensive full read and normalization.
func (f *sheetFetcher) FetchEvents(ctx context.Context) (*attendance.ReadResult, error) {
	table, err := f.src.ReadRows(ctx, f.cfg.Worksheet)
	if err != nil {
		return nil, err
	}
	return attendance.ParseRows(table, f.loc)
}
