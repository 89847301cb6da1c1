package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
)

// csvHeader is the pick log layout shared with the performance tracker
var csvHeader = []string{"Date", "Ticker", "Score", "Price", "Regime"}

// CSVLog appends each cycle's top picks to a CSV file
// ⭐ SSOT: 추천 기록 파일 포맷은 여기서만
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog creates a log writer for path
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Path returns the log file path
func (l *CSVLog) Path() string {
	return l.path
}

// Report implements contracts.Reporter. The header is written only when the file is new or empty.
func (l *CSVLog) Report(ctx context.Context, r *contracts.RankedReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open pick log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}

	date := r.AsOf.Format("2006-01-02")
	for _, e := range r.Entries {
		row := []string{
			date,
			e.Symbol,
			strconv.FormatFloat(e.Score, 'f', 1, 64),
			strconv.FormatFloat(e.Price, 'f', 2, 64),
			e.Regime.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write pick log: %w", err)
	}
	return nil
}

// ReadCSVLog loads every logged pick from path
func ReadCSVLog(path string) ([]contracts.LoggedSignal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pick log: %w", err)
	}
	defer f.Close()

	return ParseCSVLog(f)
}

// ParseCSVLog reads Date,Ticker,Score,Price,Regime rows; a header line is optional
func ParseCSVLog(r io.Reader) ([]contracts.LoggedSignal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	var out []contracts.LoggedSignal
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pick log line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(rec[0], csvHeader[0]) {
			continue
		}

		sig, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("pick log line %d: %w", line, err)
		}
		out = append(out, sig)
	}
	return out, nil
}

func parseRow(rec []string) (contracts.LoggedSignal, error) {
	date, err := time.Parse("2006-01-02", rec[0])
	if err != nil {
		return contracts.LoggedSignal{}, fmt.Errorf("date %q: %w", rec[0], err)
	}
	score, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return contracts.LoggedSignal{}, fmt.Errorf("score %q: %w", rec[2], err)
	}
	price, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return contracts.LoggedSignal{}, fmt.Errorf("price %q: %w", rec[3], err)
	}

	return contracts.LoggedSignal{
		Date:   date,
		Symbol: rec[1],
		Score:  score,
		Price:  price,
		Regime: rec[4],
	}, nil
}
