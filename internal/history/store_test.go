package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"undoCalc/internal/domain"
	"undoCalc/internal/mocks"
)

// newTestLogger создаёт логгер для тестов (выводит только ошибки, чтобы не засорять вывод).
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testTime = time.Date(2026, 10, 18, 12, 30, 0, 123456789, time.UTC)

func sampleRecords() []domain.Record {
	return []domain.Record{
		domain.NewSuccess("add", 1, 2, 3, testTime),
		domain.NewFailure("/", 1, 0, domain.ErrDivisionByZero, testTime.Add(time.Second)),
		domain.NewSuccess("**", 2.5, -1.25, 0.31830988618379064, testTime.Add(2*time.Second)),
	}
}

// recordingObserver запоминает полученные события.
type recordingObserver struct {
	events []domain.HistoryEvent
	err    error
	panic  bool
}

func (o *recordingObserver) Update(_ context.Context, ev domain.HistoryEvent) error {
	o.events = append(o.events, ev)
	if o.panic {
		panic("observer exploded")
	}
	return o.err
}

func (o *recordingObserver) kinds() []domain.EventKind {
	kinds := make([]domain.EventKind, len(o.events))
	for i, ev := range o.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestStore_AddNotifiesObserversInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockIHistoryObserver(ctrl)
	second := mocks.NewMockIHistoryObserver(ctrl)
	rec := domain.NewSuccess("add", 1, 2, 3, testTime)

	gomock.InOrder(
		first.EXPECT().Update(gomock.Any(), domain.HistoryEvent{Kind: domain.EventAdded, Record: &rec}).Return(nil),
		second.EXPECT().Update(gomock.Any(), domain.HistoryEvent{Kind: domain.EventAdded, Record: &rec}).Return(nil),
	)

	s := New(newTestLogger())
	s.Attach(first)
	s.Attach(second)
	s.Add(context.Background(), rec)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, rec, s.Records()[0])
}

func TestStore_ObserverFailuresAreIsolated(t *testing.T) {
	failing := &recordingObserver{err: errors.New("boom")}
	panicking := &recordingObserver{panic: true}
	healthy := &recordingObserver{}

	s := New(newTestLogger())
	s.Attach(failing)
	s.Attach(panicking)
	s.Attach(healthy)

	assert.NotPanics(t, func() {
		s.Add(context.Background(), domain.NewSuccess("+", 1, 1, 2, testTime))
	})
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []domain.EventKind{domain.EventAdded}, failing.kinds())
	assert.Equal(t, []domain.EventKind{domain.EventAdded}, panicking.kinds())
	assert.Equal(t, []domain.EventKind{domain.EventAdded}, healthy.kinds())
}

func TestStore_Detach(t *testing.T) {
	obs := &recordingObserver{}
	s := New(newTestLogger())
	s.Attach(obs)
	s.Detach(obs)
	// повторное отключение не должно паниковать
	s.Detach(obs)

	s.Add(context.Background(), domain.NewSuccess("+", 1, 1, 2, testTime))
	assert.Empty(t, obs.events)
}

func TestStore_RecordsReturnsCopy(t *testing.T) {
	s := New(newTestLogger())
	s.Add(context.Background(), domain.NewSuccess("+", 1, 1, 2, testTime))

	recs := s.Records()
	recs[0].Operation = "changed"
	assert.Equal(t, "+", s.Records()[0].Operation)

	s.Restore(recs)
	recs[0].Operation = "again"
	assert.Equal(t, "changed", s.Records()[0].Operation)
}

func TestStore_RestoreTrimsToMaxSize(t *testing.T) {
	s := New(newTestLogger(), WithMaxSize(2))
	s.Restore([]domain.Record{
		domain.NewSuccess("+", 1, 0, 1, testTime),
		domain.NewSuccess("+", 2, 0, 2, testTime),
		domain.NewSuccess("+", 3, 0, 3, testTime),
	})

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2.0, recs[0].A)
	assert.Equal(t, 3.0, recs[1].A)
}

func TestStore_MaxSize(t *testing.T) {
	s := New(newTestLogger(), WithMaxSize(2))
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		s.Add(ctx, domain.NewSuccess("+", float64(i), 0, float64(i), testTime))
	}

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2.0, recs[0].A)
	assert.Equal(t, 3.0, recs[1].A)
}

func TestStore_SaveWithoutPath(t *testing.T) {
	s := New(newTestLogger())
	err := s.Save(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStore_LoadWithoutPath(t *testing.T) {
	s := New(newTestLogger())
	s.Add(context.Background(), domain.NewSuccess("+", 1, 2, 3, time.Time{}))

	err := s.Load(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrConfiguration)
	assert.Len(t, s.Records(), 1)
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.csv")

	src := New(newTestLogger())
	for _, r := range sampleRecords() {
		src.Add(ctx, r)
	}
	saver := &recordingObserver{}
	src.Attach(saver)
	require.NoError(t, src.Save(ctx, path))
	assert.FileExists(t, path)
	require.Len(t, saver.events, 1)
	assert.Equal(t, domain.HistoryEvent{Kind: domain.EventSaved, Path: path}, saver.events[0])

	dst := New(newTestLogger(), WithPath(path))
	dst.Add(ctx, domain.NewSuccess("-", 9, 9, 0, testTime))
	loader := &recordingObserver{}
	dst.Attach(loader)
	require.NoError(t, dst.Load(ctx, ""))

	assert.Equal(t, sampleRecords(), dst.Records())
	require.Len(t, loader.events, 1)
	assert.Equal(t, domain.HistoryEvent{Kind: domain.EventLoaded, Path: path}, loader.events[0])
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := New(newTestLogger(), WithPath(filepath.Join(t.TempDir(), "missing.csv")))
	err := s.Load(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStore_LoadMalformedKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644))

	s := New(newTestLogger())
	s.Add(context.Background(), domain.NewSuccess("+", 1, 1, 2, testTime))
	err := s.Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrHistoryFormat)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Clear(t *testing.T) {
	obs := &recordingObserver{}
	s := New(newTestLogger())
	s.Attach(obs)
	s.Add(context.Background(), domain.NewSuccess("+", 1, 1, 2, testTime))
	s.Clear(context.Background())

	assert.Zero(t, s.Len())
	assert.Equal(t, []domain.EventKind{domain.EventAdded, domain.EventCleared}, obs.kinds())
}

func TestStore_Encoding(t *testing.T) {
	enc, err := LookupEncoding("windows-1251")
	require.NoError(t, err)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cp1251.csv")
	rec := domain.NewFailure("корень", -4, 2, errors.New("чётный корень"), testTime)

	src := New(newTestLogger(), WithEncoding(enc))
	src.Add(ctx, rec)
	require.NoError(t, src.Save(ctx, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "корень", "файл должен быть в windows-1251, а не в UTF-8")

	dst := New(newTestLogger(), WithEncoding(enc))
	require.NoError(t, dst.Load(ctx, path))
	assert.Equal(t, []domain.Record{rec}, dst.Records())
}
