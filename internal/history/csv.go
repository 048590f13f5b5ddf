package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"undoCalc/internal/domain"
)

// Header — фиксированный заголовок CSV-файла истории.
var Header = []string{"operation", "a", "b", "result", "error", "timestamp"}

// timestampLayouts: свой формат и формат без зоны, который писала прежняя версия (считаем его UTC).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// LookupEncoding возвращает кодировку по имени (utf-8, latin1, windows-1251, ...).
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown encoding %q", domain.ErrConfiguration, name)
	}
	return enc, nil
}

// Exists сообщает, существует ли файл по пути path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Encode пишет заголовок и записи в w.
func Encode(w io.Writer, recs []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(encodeRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode читает записи из CSV. Пустой поток — пустая история.
func Decode(r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryFormat, err)
	}
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	if !equalHeader(head) {
		return nil, fmt.Errorf("%w: unexpected header %v", domain.ErrHistoryFormat, head)
	}

	var recs []domain.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrHistoryFormat, err)
		}
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrHistoryFormat, line, err)
		}
		recs = append(recs, rec)
	}
}

// WriteFile сохраняет записи в path, создавая родительские каталоги.
// Файл сначала пишется во временный и затем переименовывается.
func WriteFile(path string, recs []domain.Record, enc encoding.Encoding) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create history dir: %v", domain.ErrConfiguration, err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("%w: history dir is not writable: %v", domain.ErrConfiguration, err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if enc != nil {
		w = enc.NewEncoder().Writer(tmp)
	}
	if err := Encode(w, recs); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// ReadFile читает записи из path. Отсутствующий файл — domain.ErrNotFound.
func ReadFile(path string, enc encoding.Encoding) ([]domain.Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = enc.NewDecoder().Reader(f)
	}
	return Decode(r)
}

func equalHeader(head []string) bool {
	if len(head) != len(Header) {
		return false
	}
	for i := range Header {
		if strings.TrimSpace(head[i]) != Header[i] {
			return false
		}
	}
	return true
}

func encodeRecord(r domain.Record) []string {
	result := ""
	if r.Succeeded() {
		result = formatFloat(r.Result)
	}
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return []string{r.Operation, formatFloat(r.A), formatFloat(r.B), result, r.Err, ts}
}

func decodeRecord(row []string) (domain.Record, error) {
	if len(row) != len(Header) {
		return domain.Record{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}
	a, err := parseFloat(row[1])
	if err != nil {
		return domain.Record{}, fmt.Errorf("field a: %w", err)
	}
	b, err := parseFloat(row[2])
	if err != nil {
		return domain.Record{}, fmt.Errorf("field b: %w", err)
	}
	ts, err := parseTimestamp(row[5])
	if err != nil {
		return domain.Record{}, fmt.Errorf("field timestamp: %w", err)
	}

	rec := domain.Record{Operation: row[0], A: a, B: b, Err: row[4], Timestamp: ts}
	switch {
	case row[3] == "" && row[4] == "":
		return domain.Record{}, errors.New("neither result nor error is set")
	case row[3] != "" && row[4] != "":
		return domain.Record{}, errors.New("both result and error are set")
	case row[3] != "":
		if rec.Result, err = parseFloat(row[3]); err != nil {
			return domain.Record{}, fmt.Errorf("field result: %w", err)
		}
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
