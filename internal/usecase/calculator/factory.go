package calculator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"undoCalc/internal/domain"
)

// Factory проверяет и преобразует сырой ввод в domain.Calculation.
type Factory struct {
	maxInput float64
}

// NewFactory создаёт фабрику. maxInput <= 0 — модуль операнда не ограничен.
func NewFactory(maxInput float64) Factory {
	return Factory{maxInput: maxInput}
}

// Create проверяет ввод строго по порядку: токен не пуст, токен известен, операнд A не пуст,
// операнд B не пуст, A числовой, B числовой, модуль операндов в пределах. Побеждает первая ошибка.
// Операнды принимаются строками или уже числами.
func (f Factory) Create(token string, rawA, rawB any) (domain.Calculation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Calculation{}, fmt.Errorf("%w: operation must be provided", domain.ErrInvalidOperation)
	}
	op, err := domain.Resolve(token)
	if err != nil {
		return domain.Calculation{}, err
	}
	if isBlank(rawA) {
		return domain.Calculation{}, fmt.Errorf("%w: first operand empty", domain.ErrOperand)
	}
	if isBlank(rawB) {
		return domain.Calculation{}, fmt.Errorf("%w: second operand empty", domain.ErrOperand)
	}
	a, err := toFloat(rawA)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("%w: operands must be numbers: %v", domain.ErrOperand, err)
	}
	b, err := toFloat(rawB)
	if err != nil {
		return domain.Calculation{}, fmt.Errorf("%w: operands must be numbers: %v", domain.ErrOperand, err)
	}
	for _, v := range []float64{a, b} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Calculation{}, fmt.Errorf("%w: operands must be finite numbers", domain.ErrOperand)
		}
		if f.maxInput > 0 && math.Abs(v) > f.maxInput {
			return domain.Calculation{}, fmt.Errorf("%w: value exceeds maximum allowed: %g", domain.ErrOperand, f.maxInput)
		}
	}
	return domain.Calculation{Token: token, Op: op, A: a, B: b}, nil
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("unsupported operand type %T", raw)
	}
}
