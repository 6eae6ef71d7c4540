package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// ScanReport is the archived result of one buy-side scan.
type ScanReport struct {
	Date         string                `json:"date"`
	GeneratedAt  time.Time             `json:"generated_at"`
	UniverseSize int                   `json:"universe_size"`
	Shortlisted  int                   `json:"shortlisted"`
	Picks        []core.Recommendation `json:"picks"`
}

// SellCheckReport is the archived result of one portfolio monitoring cycle.
type SellCheckReport struct {
	At      time.Time               `json:"at"`
	Signals []core.SellSignalRecord `json:"signals"`
	Holds   []core.HoldAnalysis     `json:"holds"`
}

// Reporter persists daily analysis reports on top of a Storage backend.
// Scan reports are keyed by date; sell checks are keyed by date and time
// so intraday cycles do not overwrite each other.
type Reporter struct {
	store Storage
}

// NewReporter creates a reporter over the given backend.
func NewReporter(store Storage) *Reporter {
	return &Reporter{store: store}
}

func scanPath(date string) string {
	return path.Join("scans", date+".json")
}

func sellCheckPath(at time.Time) string {
	return path.Join("sell-checks", at.Format("2006-01-02"), at.Format("150405")+".json")
}

// SaveScan archives a scan report under its date, replacing any earlier
// report for the same day.
func (r *Reporter) SaveScan(ctx context.Context, report ScanReport) error {
	if report.Date == "" {
		report.Date = report.GeneratedAt.Format("2006-01-02")
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scan report: %w", err)
	}
	return r.store.Write(ctx, scanPath(report.Date), data)
}

// LoadScan retrieves the scan report for a date (YYYY-MM-DD).
func (r *Reporter) LoadScan(ctx context.Context, date string) (*ScanReport, error) {
	data, err := r.store.Read(ctx, scanPath(date))
	if err != nil {
		return nil, err
	}
	var report ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling scan report: %w", err)
	}
	return &report, nil
}

// ScanDates lists dates with an archived scan report, oldest first.
func (r *Reporter) ScanDates(ctx context.Context) ([]string, error) {
	paths, err := r.store.List(ctx, "scans")
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		if strings.HasSuffix(name, ".json") {
			dates = append(dates, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// SaveSellCheck archives a portfolio monitoring cycle.
func (r *Reporter) SaveSellCheck(ctx context.Context, report SellCheckReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sell check report: %w", err)
	}
	return r.store.Write(ctx, sellCheckPath(report.At), data)
}
