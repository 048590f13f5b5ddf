package domain

import (
	"errors"
	"time"
)

// Таксономия ошибок калькулятора. Транспорты классифицируют ошибки через errors.Is.
var (
	// ErrInvalidOperation возвращается, когда токен операции пуст или не найден в реестре.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrOperand возвращается для пустого, нечислового или слишком большого операнда.
	ErrOperand = errors.New("invalid operand")
	// ErrDivisionByZero возвращается операциями с делением на ноль.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidArgument возвращается, когда аргументы недопустимы для операции (например, корень нулевой степени).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyStack возвращается, когда отменять или повторять нечего.
	ErrEmptyStack = errors.New("empty stack")
	// ErrNotFound возвращается при загрузке истории из несуществующего файла или без заданного пути.
	ErrNotFound = errors.New("history file not found")
	// ErrConfiguration возвращается, когда путь сохранения не задан или каталог недоступен для записи.
	ErrConfiguration = errors.New("configuration error")
	// ErrHistoryFormat возвращается, когда файл истории не удаётся разобрать.
	ErrHistoryFormat = errors.New("malformed history file")
)

// Record — одна строка истории. Ровно одно из {Result, Err} имеет смысл:
// при успехе Err пуст, при ошибке Err содержит сообщение, а Result не используется.
type Record struct {
	Operation string    `json:"operation"`
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Result    float64   `json:"result,omitempty"`
	Err       string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Succeeded сообщает, завершилось ли вычисление успешно.
func (r Record) Succeeded() bool {
	return r.Err == ""
}

// NewSuccess создаёт запись успешного вычисления.
func NewSuccess(token string, a, b, result float64, at time.Time) Record {
	return Record{Operation: token, A: a, B: b, Result: result, Timestamp: at}
}

// NewFailure создаёт запись неудачного вычисления с сообщением ошибки.
func NewFailure(token string, a, b float64, cause error, at time.Time) Record {
	msg := "unknown error"
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return Record{Operation: token, A: a, B: b, Err: msg, Timestamp: at}
}

// Calculation — провалидированный запрос на вычисление: операция из реестра и числовые операнды.
type Calculation struct {
	Token string
	Op    Operation
	A     float64
	B     float64
}

// Perform выполняет операцию над операндами.
func (c Calculation) Perform() (float64, error) {
	return c.Op.Execute(c.A, c.B)
}

// EventKind — тип события истории, о котором уведомляются наблюдатели.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventSaved   EventKind = "saved"
	EventLoaded  EventKind = "loaded"
	EventCleared EventKind = "cleared"
)

// HistoryEvent — событие истории. Record заполнен для added, Path для saved и loaded.
type HistoryEvent struct {
	Kind   EventKind
	Record *Record
	Path   string
}
