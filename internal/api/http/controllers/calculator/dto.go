package calculator

import (
	"time"

	"undoCalc/internal/domain"
)

// CalculateRequest — запрос на вычисление (POST /api/v1/calculate).
// Операнды принимаются числами или строками: "a": 3 и "a": "3" равнозначны.
type CalculateRequest struct {
	Operation string `json:"operation" binding:"required"`
	A         any    `json:"a"`
	B         any    `json:"b"`
}

// CalculateResponse — ответ с результатом. Display — результат, округлённый для показа.
type CalculateResponse struct {
	Operation string   `json:"operation,omitempty"`
	A         float64  `json:"a,omitempty"`
	B         float64  `json:"b,omitempty"`
	Result    *float64 `json:"result,omitempty"`
	Display   string   `json:"display,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// HistoryItem — одна запись истории.
type HistoryItem struct {
	Operation string    `json:"operation"`
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Result    *float64  `json:"result,omitempty"`
	Display   string    `json:"display,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse — ответ со списком записей в порядке добавления.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

// ErrorResponse — ответ с ошибкой.
type ErrorResponse struct {
	Message string `json:"message"`
}

func toHistoryItem(r domain.Record, precision int) HistoryItem {
	item := HistoryItem{
		Operation: r.Operation,
		A:         r.A,
		B:         r.B,
		Error:     r.Err,
		Timestamp: r.Timestamp,
	}
	if r.Succeeded() {
		result := r.Result
		item.Result = &result
		item.Display = domain.FormatNumber(result, precision)
	}
	return item
}
