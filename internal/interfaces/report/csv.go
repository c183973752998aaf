package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/riskibarqy/fantasy-sync/internal/domain/podium"
	"github.com/valyala/bytebufferpool"
)

// Header is the column order of the league table export.
var Header = []string{"club_name", "rank", "win", "loss", "draw", "pf", "pa", "max"}

// CSVWriter writes league tables as CSV files. Rows are written in the order
// given.
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteTable renders rows and replaces path atomically.
func (w *CSVWriter) WriteTable(ctx context.Context, path string, rows []podium.Podium) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := Render(buf, rows); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace report %s: %w", path, err)
	}
	return nil
}

// Render writes the header and one record per row.
func Render(buf *bytebufferpool.ByteBuffer, rows []podium.Podium) error {
	out := csv.NewWriter(buf)
	if err := out.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := out.Write(record(row)); err != nil {
			return fmt.Errorf("write csv row club=%s: %w", row.ClubName, err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func record(row podium.Podium) []string {
	rank := ""
	if row.Rank > 0 {
		rank = strconv.Itoa(row.Rank)
	}
	return []string{
		row.ClubName,
		rank,
		strconv.Itoa(row.Win),
		strconv.Itoa(row.Loss),
		strconv.Itoa(row.Draw),
		formatPoints(row.PointsFor),
		formatPoints(row.PointsAgainst),
		formatPoints(row.Max),
	}
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
