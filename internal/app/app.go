package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	apihttp "undoCalc/internal/api/http"
	"undoCalc/internal/api/http/controllers/calculator"
	"undoCalc/internal/api/http/controllers/system"
	"undoCalc/internal/api/repl"
	"undoCalc/internal/domain"
	"undoCalc/internal/history"
	"undoCalc/internal/infrastructure/click"
	"undoCalc/internal/infrastructure/kafka"
	"undoCalc/internal/infrastructure/mongo"
	"undoCalc/internal/infrastructure/pg"
	"undoCalc/internal/infrastructure/redis"
	"undoCalc/internal/memento"
	"undoCalc/internal/pkg/logger"
	"undoCalc/internal/ports"
	calclUsecase "undoCalc/internal/usecase/calculator"
)

// App — приложение, хранит только конфиг. Зависимости собираются в каждом режиме заново.
type App struct {
	cfg Config
}

// New создаёт приложение с конфигом (подключения к внешним системам — при запуске режима).
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// Config возвращает конфиг приложения.
func (a *App) Config() Config {
	return a.cfg
}

// mode — чем отличаются режимы запуска при сборке зависимостей.
type mode struct {
	console   bool // дублировать логи в stderr
	preload   bool // загрузить историю до создания фасада
	analytics bool // подключить ClickHouse для событий из Kafka
}

// deps — собранные зависимости режима.
type deps struct {
	log     *slog.Logger
	store   *history.Store
	uc      *calclUsecase.UseCase
	repo    ports.IOperationRepository
	closers []func() error
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn("close failed", "error", err)
		}
	}
}

// build собирает логгер, хранилище истории с наблюдателями, внешние приёмники и фасад.
func (a *App) build(ctx context.Context, m mode) (*deps, error) {
	log, closeLog := logger.New(logger.Options{
		File:    a.cfg.LogFile,
		Level:   a.cfg.LogLevel,
		Console: m.console,
	})
	slog.SetDefault(log)
	d := &deps{log: log, closers: []func() error{closeLog}}

	enc, err := history.LookupEncoding(a.cfg.Encoding)
	if err != nil {
		d.close()
		return nil, err
	}

	d.store = history.New(log,
		history.WithPath(a.cfg.HistoryFile),
		history.WithMaxSize(a.cfg.MaxHistorySize),
		history.WithEncoding(enc),
	)
	d.store.Attach(history.NewLoggingObserver(log.With("component", "history")))
	if a.cfg.AutoSave {
		d.store.Attach(history.NewAutoSaveObserver(d.store, a.cfg.AutoSavePath, log))
	}

	opts := []calclUsecase.Option{
		calclUsecase.WithFactory(calclUsecase.NewFactory(a.cfg.MaxInputValue)),
		calclUsecase.WithCaretaker(memento.NewCaretaker(a.cfg.MaxUndoDepth)),
		calclUsecase.WithLegacyPath(a.cfg.LegacyHistoryPath),
	}
	sinkOpts, err := a.connectSinks(ctx, d, m)
	if err != nil {
		d.close()
		return nil, err
	}
	opts = append(opts, sinkOpts...)

	if m.preload || bool(a.cfg.LoadOnStart) {
		a.preload(ctx, d)
	}

	d.uc = calclUsecase.New(d.store, log, opts...)
	log.Info("calculator ready",
		"history_file", a.cfg.HistoryFile,
		"records", d.store.Len(),
		"auto_save", bool(a.cfg.AutoSave),
	)
	return d, nil
}

// connectSinks подключает включённые в конфиге внешние системы: зеркала истории, брокер, кэш и аналитику.
func (a *App) connectSinks(ctx context.Context, d *deps, m mode) ([]calclUsecase.Option, error) {
	var opts []calclUsecase.Option

	if a.cfg.DB.Enabled {
		db, err := pg.New(&a.cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := pg.NewOperationRepo(db, d.log)
		d.store.Attach(history.NewRepositoryObserver(repo))
		d.repo = repo
	}

	if a.cfg.Mongo.Enabled {
		cli, err := mongo.New(ctx, &a.cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		d.closers = append(d.closers, cli.Close)
		repo := mongo.NewOperationRepo(cli, d.log)
		d.store.Attach(history.NewRepositoryObserver(repo))
		if d.repo == nil {
			d.repo = repo
		}
	}

	if a.cfg.Kafka.Enabled {
		producer := kafka.NewProducer(&a.cfg.Kafka)
		d.closers = append(d.closers, producer.Close)
		d.store.Attach(history.NewBrokerObserver(producer))
	}

	if a.cfg.Redis.Enabled {
		rdb, err := redis.New(&a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		d.closers = append(d.closers, rdb.Close)
		opts = append(opts, calclUsecase.WithCache(redis.NewCache(rdb, a.cfg.Redis.TTL, d.log)))
	}

	if m.analytics && a.cfg.ClickHouse.Enabled {
		ch, err := click.New(&a.cfg.ClickHouse)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		d.closers = append(d.closers, ch.Close)
		writer := click.NewOperationWriter(ch)
		if err := writer.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("clickhouse table: %w", err)
		}
		opts = append(opts, calclUsecase.WithAnalytics(writer))
	}

	return opts, nil
}

// preload загружает сохранённую историю (или файл прежней версии) до создания фасада,
// чтобы загруженное состояние стало исходным снимком отмены. Если файлов нет, история
// берётся из подключённой БД-зеркала. Ошибки только логируются.
func (a *App) preload(ctx context.Context, d *deps) {
	path := a.cfg.HistoryFile
	if !history.Exists(path) && a.cfg.LegacyHistoryPath != "" && history.Exists(a.cfg.LegacyHistoryPath) {
		path = a.cfg.LegacyHistoryPath
	}
	if !history.Exists(path) {
		preloadFromRepo(ctx, d.store, d.repo, d.log)
		return
	}
	if err := d.store.Load(ctx, path); err != nil {
		d.log.Warn("history preload failed", "path", path, "error", err)
	}
}

// preloadFromRepo восстанавливает историю из зеркала без уведомления наблюдателей,
// иначе записи продублировались бы в том же зеркале.
func preloadFromRepo(ctx context.Context, store *history.Store, repo ports.IOperationRepository, log *slog.Logger) {
	if repo == nil {
		return
	}
	recs, err := repo.GetHistory(ctx)
	if err != nil {
		log.Warn("history preload from repository failed", "error", err)
		return
	}
	store.Restore(recs)
	log.Info("history preloaded from repository", "records", store.Len())
}

// RunREPL запускает интерактивную оболочку поверх in/out. Блокируется до exit или конца ввода.
func (a *App) RunREPL(ctx context.Context, in io.Reader, out io.Writer) error {
	d, err := a.build(ctx, mode{})
	if err != nil {
		return err
	}
	defer d.close()

	return repl.New(d.uc, in, out, a.cfg.Precision, d.log).Run(ctx)
}

// Eval выполняет одну операцию поверх сохранённой истории и возвращает запись.
// При включённом автосохранении результат дописывается в файл истории.
func (a *App) Eval(ctx context.Context, token, x, y string) (*domain.Record, error) {
	d, err := a.build(ctx, mode{preload: true})
	if err != nil {
		return nil, err
	}
	defer d.close()

	return d.uc.Evaluate(ctx, token, x, y)
}

// Run поднимает HTTP API и, если включены Kafka и ClickHouse, консьюмер событий истории.
// Блокируется до SIGINT/SIGTERM, затем делает graceful shutdown.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := a.build(ctx, mode{console: true, analytics: true})
	if err != nil {
		return err
	}
	defer d.close()

	consumerDone := make(chan error, 1)
	if a.cfg.Kafka.Enabled && a.cfg.ClickHouse.Enabled {
		consumer := kafka.NewConsumer(&a.cfg.Kafka, d.uc, d.log)
		go func() {
			consumerDone <- consumer.Run(ctx)
			_ = consumer.Close()
		}()
	} else {
		close(consumerDone)
	}

	srv := apihttp.NewServer(a.cfg.Server, d.log)
	srv.AddController(
		system.New(d.repo, d.log),
		calculator.New(d.uc, d.log, a.cfg.Precision),
	)

	d.log.Info("application started", "http", a.cfg.Server.Addr())
	if err := srv.Start(ctx); err != nil {
		return err
	}

	if err := <-consumerDone; err != nil && !errors.Is(err, context.Canceled) {
		d.log.Warn("kafka consumer finished with error", "error", err)
	}
	return nil
}
