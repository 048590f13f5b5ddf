package calculator

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
	"undoCalc/internal/history"
	"undoCalc/internal/memento"
	"undoCalc/internal/mocks"
)

// newTestLogger создаёт логгер для тестов (выводит только ошибки, чтобы не засорять вывод).
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// newUseCase создаёт фасад над пустой историей с фиксированными часами.
func newUseCase(t *testing.T, storeOpts []history.Option, opts ...Option) (*UseCase, *history.Store) {
	t.Helper()
	store := history.New(newTestLogger(), storeOpts...)
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(store, newTestLogger(), opts...), store
}

func TestEvaluate_MatchesFormula(t *testing.T) {
	tests := []struct {
		token string
		a, b  string
		want  float64
	}{
		{token: "+", a: "2", b: "3", want: 5},
		{token: "subtract", a: "2", b: "3", want: -1},
		{token: "*", a: "2.5", b: "4", want: 10},
		{token: "/", a: "7", b: "2", want: 3.5},
		{token: "**", a: "2", b: "10", want: 1024},
		{token: "root", a: "-8", b: "3", want: -2},
		{token: "%", a: "10", b: "4", want: 2},
		{token: "//", a: "10", b: "4", want: 2},
		{token: "percent", a: "1", b: "4", want: 25},
		{token: "abs", a: "4", b: "10", want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			uc, store := newUseCase(t, nil)
			rec, err := uc.Evaluate(context.Background(), tt.token, tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, rec.Result, 1e-9)
			assert.True(t, rec.Succeeded())
			assert.Equal(t, fixedNow, rec.Timestamp)
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestEvaluate_DivisionByZeroIsRecorded(t *testing.T) {
	uc, store := newUseCase(t, nil)

	rec, err := uc.Evaluate(context.Background(), "/", "1", "0")
	assert.Nil(t, rec)
	require.ErrorIs(t, err, domain.ErrDivisionByZero)

	recs := store.Records()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Succeeded())
	assert.Equal(t, "division by zero", recs[0].Err)
	assert.Zero(t, recs[0].Result)
}

func TestEvaluate_EvenRootOfNegative(t *testing.T) {
	uc, store := newUseCase(t, nil)

	_, err := uc.Evaluate(context.Background(), "root", "-16", "2")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Equal(t, 1, store.Len())
	assert.Contains(t, store.Records()[0].Err, "even root")

	// неудачное вычисление тоже отменяется
	require.NoError(t, uc.Undo(context.Background()))
	assert.Zero(t, store.Len())
}

func TestEvaluate_InputErrorsDoNotTouchHistory(t *testing.T) {
	c := memento.NewCaretaker(0)
	uc, store := newUseCase(t, nil, WithCaretaker(c))
	depth := c.UndoDepth()

	_, err := uc.Evaluate(context.Background(), "add", "", "2")
	assert.ErrorIs(t, err, domain.ErrOperand)
	_, err = uc.Evaluate(context.Background(), "nope", "1", "2")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	assert.Zero(t, store.Len())
	assert.Equal(t, depth, c.UndoDepth(), "снимок не должен сохраняться при ошибке ввода")
}

func TestUndoRedo_AreInverses(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	inputs := [][2]string{{"1", "2"}, {"3", "4"}, {"5", "6"}, {"7", "8"}}
	var states [][]domain.Record
	states = append(states, store.Records())
	for _, in := range inputs {
		_, err := uc.Evaluate(ctx, "+", in[0], in[1])
		require.NoError(t, err)
		states = append(states, store.Records())
	}
	final := store.Records()

	for i := len(inputs) - 1; i >= 0; i-- {
		require.NoError(t, uc.Undo(ctx))
		assert.Equal(t, states[i], store.Records())
	}
	assert.Empty(t, store.Records())
	assert.True(t, uc.CanRedo())

	for i := 1; i <= len(inputs); i++ {
		require.NoError(t, uc.Redo(ctx))
		assert.Equal(t, states[i], store.Records())
	}
	assert.Equal(t, final, store.Records())
	assert.False(t, uc.CanRedo())
}

func TestUndoRedo_EmptyStacks(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()

	err := uc.Redo(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyStack)

	// начальный снимок пустой истории
	require.True(t, uc.CanUndo())
	require.NoError(t, uc.Undo(ctx))

	err = uc.Undo(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyStack)
	assert.Zero(t, store.Len())
}

func TestEvaluate_NewBranchInvalidatesRedo(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	_, err := uc.Evaluate(ctx, "+", "1", "1")
	require.NoError(t, err)
	require.NoError(t, uc.Undo(ctx))
	require.True(t, uc.CanRedo())

	_, err = uc.Evaluate(ctx, "*", "2", "2")
	require.NoError(t, err)
	assert.False(t, uc.CanRedo())
}

func TestClear_IsNotUndoable(t *testing.T) {
	c := memento.NewCaretaker(0)
	uc, store := newUseCase(t, nil, WithCaretaker(c))
	ctx := context.Background()

	_, err := uc.Evaluate(ctx, "+", "1", "1")
	require.NoError(t, err)
	depth := c.UndoDepth()

	uc.Clear(ctx)
	assert.Zero(t, store.Len())
	assert.Equal(t, depth, c.UndoDepth())
	assert.Empty(t, uc.History(ctx))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.csv")
	uc, _ := newUseCase(t, []history.Option{history.WithPath(path)})

	_, err := uc.Evaluate(ctx, "+", "1", "2")
	require.NoError(t, err)
	_, err = uc.Evaluate(ctx, "/", "1", "0")
	require.Error(t, err)
	want := uc.History(ctx)

	require.NoError(t, uc.Save(ctx, ""))
	uc.Clear(ctx)
	require.NoError(t, uc.Load(ctx, ""))
	assert.Equal(t, want, uc.History(ctx))
}

func TestLoad_MissingFile(t *testing.T) {
	uc, _ := newUseCase(t, []history.Option{history.WithPath(filepath.Join(t.TempDir(), "nope.csv"))})
	assert.ErrorIs(t, uc.Load(context.Background(), ""), domain.ErrNotFound)
}

func TestLoad_NoPath(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	assert.ErrorIs(t, uc.Load(context.Background(), ""), domain.ErrNotFound)
}

func TestSave_NoPath(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	assert.ErrorIs(t, uc.Save(context.Background(), ""), domain.ErrConfiguration)
}

func TestLoad_LegacyFallback(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(legacy, []byte("operation,a,b,result,error,timestamp\nadd,1.0,2.0,3.0,,2024-05-01T10:00:00\n"), 0o644))

	uc, _ := newUseCase(t, []history.Option{history.WithPath(filepath.Join(dir, "calculator_history.csv"))}, WithLegacyPath(legacy))
	require.NoError(t, uc.Load(context.Background(), ""))

	recs := uc.History(context.Background())
	require.Len(t, recs, 1)
	assert.Equal(t, 3.0, recs[0].Result)
}

func TestEvaluate_AutoSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auto", "history.csv")
	uc, store := newUseCase(t, nil)
	store.Attach(history.NewAutoSaveObserver(store, path, newTestLogger()))

	rec, err := uc.Evaluate(ctx, "*", "6", "7")
	require.NoError(t, err)

	saved, err := history.ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{*rec}, saved)
}

func TestEvaluate_AutoSaveFailureDoesNotPropagate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "busy")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "x"), nil, 0o644))

	uc, store := newUseCase(t, nil)
	store.Attach(history.NewAutoSaveObserver(store, target, newTestLogger()))

	rec, err := uc.Evaluate(context.Background(), "+", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.Result)
}

func TestEvaluate_ObserverSeesRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	obs := mocks.NewMockIHistoryObserver(ctrl)
	want := domain.NewSuccess("+", 1, 2, 3, fixedNow)
	obs.EXPECT().Update(gomock.Any(), domain.HistoryEvent{Kind: domain.EventAdded, Record: &want}).Return(errors.New("ignored"))

	uc, store := newUseCase(t, nil)
	store.Attach(obs)

	rec, err := uc.Evaluate(context.Background(), "+", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, want, *rec)
}

// Cache Hit: результат берётся из кэша, операция не выполняется, Set не вызывается.
func TestEvaluate_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockICache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), "10 + 5").Return(15.0, true, nil)

	uc, store := newUseCase(t, nil, WithCache(mockCache))
	rec, err := uc.Evaluate(context.Background(), "add", 10, 5)

	require.NoError(t, err)
	assert.Equal(t, 15.0, rec.Result)
	assert.Equal(t, "add", rec.Operation)
	assert.Equal(t, 1, store.Len())
}

// Cache Miss: расчёт и запись в кэш в строгом порядке.
func TestEvaluate_CacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockICache(ctrl)
	gomock.InOrder(
		mockCache.EXPECT().Get(gomock.Any(), "10 / 4").Return(0.0, false, nil),
		mockCache.EXPECT().Set(gomock.Any(), "10 / 4", 2.5).Return(nil),
	)

	uc, _ := newUseCase(t, nil, WithCache(mockCache))
	rec, err := uc.Evaluate(context.Background(), "/", "10", "4")

	require.NoError(t, err)
	assert.Equal(t, 2.5, rec.Result)
}

// Ошибки кэша не мешают вычислению; неудачный результат в кэш не пишется.
func TestEvaluate_CacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockICache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), "1 / 0").Return(0.0, false, errors.New("redis down"))

	uc, store := newUseCase(t, nil, WithCache(mockCache))
	_, err := uc.Evaluate(context.Background(), "/", "1", "0")

	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
	assert.Equal(t, 1, store.Len())
}

func TestHandleOperationEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	analytics := mocks.NewMockIOperationAnalytics(ctrl)
	rec := domain.NewSuccess("+", 1, 2, 3, fixedNow)
	analytics.EXPECT().WriteOperation(gomock.Any(), rec).Return(nil)
	analytics.EXPECT().WriteOperation(gomock.Any(), rec).Return(errors.New("click down"))

	uc, _ := newUseCase(t, nil, WithAnalytics(analytics))
	require.NoError(t, uc.HandleOperationEvent(context.Background(), rec))
	assert.Error(t, uc.HandleOperationEvent(context.Background(), rec))
}

func TestHandleOperationEvent_NoAnalytics(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	assert.NoError(t, uc.HandleOperationEvent(context.Background(), domain.Record{}))
}
