package mongo

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

var _ ports.IOperationRepository = (*OperationRepo)(nil)

// recordDoc — документ в коллекции operations. Отсутствующая сторона пары result/error не пишется.
type recordDoc struct {
	Operation string    `bson:"operation"`
	A         float64   `bson:"a"`
	B         float64   `bson:"b"`
	Result    *float64  `bson:"result,omitempty"`
	Error     string    `bson:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// OperationRepo реализует ports.IOperationRepository для MongoDB.
type OperationRepo struct {
	client *Client
	log    *slog.Logger
}

// NewOperationRepo возвращает репозиторий операций.
func NewOperationRepo(client *Client, log *slog.Logger) *OperationRepo {
	return &OperationRepo{client: client, log: log}
}

// SaveOperation сохраняет запись в коллекцию.
func (r *OperationRepo) SaveOperation(ctx context.Context, rec domain.Record) error {
	doc := recordDoc{
		Operation: rec.Operation,
		A:         rec.A,
		B:         rec.B,
		Error:     rec.Err,
		CreatedAt: rec.Timestamp,
	}
	if rec.Succeeded() {
		result := rec.Result
		doc.Result = &result
	}
	_, err := r.client.Coll().InsertOne(ctx, doc)
	if err != nil {
		r.log.Debug("SaveOperation failed", "error", err)
		return err
	}
	return nil
}

// GetHistory возвращает записи в порядке времени создания.
func (r *OperationRepo) GetHistory(ctx context.Context) ([]domain.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.client.Coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Debug("GetHistory failed", "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	list := make([]domain.Record, 0, len(docs))
	for _, d := range docs {
		rec := domain.Record{
			Operation: d.Operation,
			A:         d.A,
			B:         d.B,
			Err:       d.Error,
			Timestamp: d.CreatedAt,
		}
		if d.Result != nil {
			rec.Result = *d.Result
		}
		list = append(list, rec)
	}
	return list, nil
}

// Ping проверяет доступность БД.
func (r *OperationRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
