package journal

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// SnapshotColumns is the required header of the snapshot log. Older files
// written before a column existed are repaired by Heal.
var SnapshotColumns = []string{"date", "account_dict", "total_value", "end_of_day_save"}

// TimeLayout is the full timestamp stored in the date column. It sorts
// lexicographically and round-trips to the microsecond.
const TimeLayout = "2006-01-02 15:04:05.000000"

// DefaultEndOfDayHour is the hour an end-of-day save is expected at.
const DefaultEndOfDayHour = 16

// maxLookbackRows bounds the backward scan in ValueAsOf so a malformed or
// tiny file cannot loop forever.
const maxLookbackRows = 1000

var (
	// ErrNoSnapshot means the log has a header but no data rows yet.
	ErrNoSnapshot = errors.New("no snapshot rows")
	// ErrMissingColumn means a required column is absent from the log.
	ErrMissingColumn = errors.New("snapshot log missing column")
	// ErrScanExhausted means the bounded lookback found no qualifying row.
	ErrScanExhausted = errors.New("lookback scan exhausted")
)

// Snapshot is one appended row of whole-account state.
type Snapshot struct {
	Time       time.Time
	State      json.RawMessage
	TotalValue float64
	EndOfDay   bool
}

// SnapshotLog is the append-only CSV of account snapshots. The last row is
// the current state; reload is last-write-wins. Single writer per file.
type SnapshotLog struct {
	Path         string
	EndOfDayHour int

	// now is swappable for tests.
	now func() time.Time
}

func NewSnapshotLog(path string) *SnapshotLog {
	return &SnapshotLog{
		Path:         path,
		EndOfDayHour: DefaultEndOfDayHour,
		now:          time.Now,
	}
}

// Exists reports whether the log file is already on disk. Callers use this
// to tell a new account from an existing one.
func (l *SnapshotLog) Exists() bool {
	_, err := os.Stat(l.Path)
	return err == nil
}

// Heal verifies and repairs the log header. Data rows are kept; rows missing
// trailing columns are back-filled with "0". A correct file is untouched, so
// running Heal repeatedly is safe. A missing file gets a header only.
func (l *SnapshotLog) Heal() error {
	f, err := os.Open(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return l.writeAll(nil)
	}
	if err != nil {
		return fmt.Errorf("heal snapshot log: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	f.Close()
	if err != nil {
		return fmt.Errorf("heal snapshot log: %w", err)
	}

	if len(records) > 0 && !missingAny(records[0]) {
		return nil
	}

	// Header is absent or stale. Treat the first line as a bad header and
	// keep the rest, padding short rows.
	var rows [][]string
	if len(records) > 1 {
		rows = records[1:]
	}
	for i, row := range rows {
		for len(row) < len(SnapshotColumns) {
			row = append(row, "0")
		}
		rows[i] = row[:len(SnapshotColumns)]
	}
	return l.writeAll(rows)
}

func missingAny(header []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, want := range SnapshotColumns {
		if !present[want] {
			return true
		}
	}
	return false
}

func (l *SnapshotLog) writeAll(rows [][]string) error {
	f, err := os.Create(l.Path)
	if err != nil {
		return fmt.Errorf("rewrite snapshot log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(SnapshotColumns); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Append heals the header if needed, then appends one snapshot row.
func (l *SnapshotLog) Append(s Snapshot) error {
	if err := l.Heal(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	w := csv.NewWriter(f)
	err = w.Write([]string{
		s.Time.Format(TimeLayout),
		string(s.State),
		strconv.FormatFloat(s.TotalValue, 'f', -1, 64),
		strconv.FormatBool(s.EndOfDay),
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("append snapshot: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append snapshot: %w", err)
	}
	return f.Close()
}

// read returns the header index and all data rows.
func (l *SnapshotLog) read() (map[string]int, [][]string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot rows: %w", err)
	}
	return idx, rows, nil
}

func parseRow(idx map[string]int, row []string) (Snapshot, error) {
	var s Snapshot

	col := func(name string) (string, error) {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return row[i], nil
	}

	raw, err := col("date")
	if err != nil {
		return s, err
	}
	if s.Time, err = time.Parse(TimeLayout, raw); err != nil {
		return s, fmt.Errorf("parse snapshot date %q: %w", raw, err)
	}

	if raw, err = col("account_dict"); err != nil {
		return s, err
	}
	s.State = json.RawMessage(raw)

	if raw, err = col("total_value"); err != nil {
		return s, err
	}
	if s.TotalValue, err = strconv.ParseFloat(raw, 64); err != nil {
		return s, fmt.Errorf("parse snapshot total value %q: %w", raw, err)
	}

	if raw, err = col("end_of_day_save"); err != nil {
		return s, err
	}
	// Older files back-fill this column with "0"; anything unparseable is
	// treated as a regular save.
	s.EndOfDay, _ = strconv.ParseBool(raw)

	return s, nil
}

// Last returns the most recent snapshot row.
func (l *SnapshotLog) Last() (Snapshot, error) {
	idx, rows, err := l.read()
	if err != nil {
		return Snapshot{}, err
	}
	if len(rows) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	return parseRow(idx, rows[len(rows)-1])
}

// ValueAsOf scans backward for the most recent end-of-day save at least
// daysBack days old and returns its valuation (rounded to cents) and
// timestamp. A missing column triggers a self-heal and, when allowRetry is
// set, a single retry. The scan gives up after maxLookbackRows rows.
func (l *SnapshotLog) ValueAsOf(daysBack int, allowRetry bool) (float64, time.Time, error) {
	for attempt := 0; ; attempt++ {
		value, ts, err := l.valueAsOf(daysBack)
		if errors.Is(err, ErrMissingColumn) {
			// Best-effort repair either way; retry at most once.
			if healErr := l.Heal(); healErr != nil {
				return 0, time.Time{}, fmt.Errorf("heal after %v: %w", err, healErr)
			}
			if allowRetry && attempt == 0 {
				continue
			}
		}
		return value, ts, err
	}
}

func (l *SnapshotLog) valueAsOf(daysBack int) (float64, time.Time, error) {
	idx, rows, err := l.read()
	if err != nil {
		return 0, time.Time{}, err
	}

	now := l.now()
	for delta := 1; ; delta++ {
		i := len(rows) - (daysBack + delta)
		if i < 0 || delta > maxLookbackRows {
			return 0, time.Time{}, fmt.Errorf("no end-of-day value %d day(s) back: %w", daysBack, ErrScanExhausted)
		}

		s, err := parseRow(idx, rows[i])
		if err != nil {
			return 0, time.Time{}, err
		}

		// Allow a little slack: the save lands around the close, not a
		// full 24h multiple before now.
		days := math.Abs(now.Sub(s.Time).Hours() / 24)
		if days > float64(daysBack)-0.1 && s.Time.Hour() == l.EndOfDayHour {
			return math.Round(s.TotalValue*100) / 100, s.Time, nil
		}
	}
}
