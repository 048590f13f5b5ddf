package calculator

import (
	"context"

	"undoCalc/internal/domain"
	"undoCalc/internal/history"
)

// Evaluate проверяет ввод, сохраняет снимок истории, выполняет операцию и записывает результат.
// Ошибки ввода возвращаются до любых изменений. Арифметическая ошибка сначала записывается
// в историю, затем возвращается вызывающему.
func (u *UseCase) Evaluate(ctx context.Context, token string, a, b any) (*domain.Record, error) {
	calc, err := u.factory.Create(token, a, b)
	if err != nil {
		u.log.Debug("calculation rejected", "token", token, "error", err)
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.caretaker.Save(u.history.Records())

	result, err := u.execute(ctx, calc)
	if err != nil {
		rec := domain.NewFailure(calc.Token, calc.A, calc.B, err, u.now())
		u.history.Add(ctx, rec)
		u.log.Info("calculation failed", "key", cacheKey(calc), "error", err)
		return nil, err
	}

	rec := domain.NewSuccess(calc.Token, calc.A, calc.B, result, u.now())
	u.history.Add(ctx, rec)
	u.log.Info("calculation recorded", "key", cacheKey(calc), "result", result)
	return &rec, nil
}

// execute берёт результат из кэша или считает его и кладёт в кэш. Ошибки кэша не фатальны.
func (u *UseCase) execute(ctx context.Context, calc domain.Calculation) (float64, error) {
	if u.cache == nil {
		return calc.Perform()
	}

	key := cacheKey(calc)
	cached, found, err := u.cache.Get(ctx, key)
	if err != nil {
		u.log.Warn("cache get", "key", key, "error", err)
	} else if found {
		u.log.Debug("cache hit", "key", key)
		return cached, nil
	}

	result, err := calc.Perform()
	if err != nil {
		return 0, err
	}
	if err := u.cache.Set(ctx, key, result); err != nil {
		u.log.Warn("cache set", "key", key, "error", err)
	}
	return result, nil
}

// Undo возвращает историю к состоянию до последнего вычисления.
func (u *UseCase) Undo(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	prev, err := u.caretaker.Undo(u.history.Records())
	if err != nil {
		return err
	}
	u.history.Restore(prev)
	u.log.DebugContext(ctx, "undo", "records", len(prev))
	return nil
}

// Redo повторяет последнее отменённое изменение.
func (u *UseCase) Redo(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	next, err := u.caretaker.Redo(u.history.Records())
	if err != nil {
		return err
	}
	u.history.Restore(next)
	u.log.DebugContext(ctx, "redo", "records", len(next))
	return nil
}

// CanUndo сообщает, доступна ли отмена.
func (u *UseCase) CanUndo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.caretaker.CanUndo()
}

// CanRedo сообщает, доступен ли повтор.
func (u *UseCase) CanRedo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.caretaker.CanRedo()
}

// Save сохраняет историю в path или в путь из конфига.
func (u *UseCase) Save(ctx context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.history.Save(ctx, path)
}

// Load заменяет историю содержимым файла. Без явного пути, если основного файла нет,
// читается файл прежней версии.
func (u *UseCase) Load(ctx context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if path == "" && u.legacyPath != "" && !history.Exists(u.history.Path()) && history.Exists(u.legacyPath) {
		u.log.Info("loading legacy history", "path", u.legacyPath)
		path = u.legacyPath
	}
	return u.history.Load(ctx, path)
}

// Clear очищает историю. Очистка не попадает в стек undo.
func (u *UseCase) Clear(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.history.Clear(ctx)
}

// History возвращает копию текущей истории.
func (u *UseCase) History(_ context.Context) []domain.Record {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.history.Records()
}

// HandleOperationEvent вызывается консьюмером при получении записи из топика (часть ICalculatorUseCase).
func (u *UseCase) HandleOperationEvent(ctx context.Context, rec domain.Record) error {
	if u.analytics == nil {
		u.log.Debug("analytics disabled, event dropped", "operation", rec.Operation)
		return nil
	}
	if err := u.analytics.WriteOperation(ctx, rec); err != nil {
		u.log.Warn("analytics write", "error", err)
		return err
	}
	u.log.Info("operation written to analytics", "operation", rec.Operation, "a", rec.A, "b", rec.B, "succeeded", rec.Succeeded())
	return nil
}
