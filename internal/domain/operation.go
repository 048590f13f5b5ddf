package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Operation — закрытый набор арифметических операций калькулятора.
type Operation int

const (
	OpAdd Operation = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpRoot
	OpModulus
	OpIntDivide
	OpPercent
	OpAbsDiff
)

type operationDef struct {
	name    string
	symbol  string
	execute func(a, b float64) (float64, error)
}

var operationDefs = map[Operation]operationDef{
	OpAdd:       {name: "add", symbol: "+", execute: add},
	OpSubtract:  {name: "subtract", symbol: "-", execute: subtract},
	OpMultiply:  {name: "multiply", symbol: "*", execute: multiply},
	OpDivide:    {name: "divide", symbol: "/", execute: divide},
	OpPower:     {name: "power", symbol: "**", execute: power},
	OpRoot:      {name: "root", symbol: "root", execute: root},
	OpModulus:   {name: "modulus", symbol: "%", execute: modulus},
	OpIntDivide: {name: "int_divide", symbol: "//", execute: intDivide},
	OpPercent:   {name: "percent", symbol: "percent", execute: percent},
	OpAbsDiff:   {name: "abs_diff", symbol: "abs", execute: absDiff},
}

// registry: нормализованный токен (имя или символ) -> операция.
var registry = func() map[string]Operation {
	m := make(map[string]Operation, 2*len(operationDefs))
	for op, s := range operationDefs {
		m[s.name] = op
		m[s.symbol] = op
	}
	return m
}()

// Resolve находит операцию по имени или символу без учёта регистра и крайних пробелов.
func Resolve(token string) (Operation, error) {
	op, ok := registry[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperation, token)
	}
	return op, nil
}

// Operations возвращает все операции в порядке объявления.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationDefs))
	for op := range operationDefs {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Name возвращает каноническое имя операции.
func (o Operation) Name() string {
	return operationDefs[o].name
}

// Symbol возвращает символьный псевдоним операции.
func (o Operation) Symbol() string {
	return operationDefs[o].symbol
}

func (o Operation) String() string {
	if s, ok := operationDefs[o]; ok {
		return s.name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Execute вычисляет результат операции. Операции без состояния и не имеют побочных эффектов.
// NaN и бесконечность в результате считаются ошибкой аргумента.
func (o Operation) Execute(a, b float64) (float64, error) {
	s, ok := operationDefs[o]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperation, o)
	}
	r, err := s.execute(a, b)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: %s result is not a finite number", ErrInvalidArgument, s.name)
	}
	return r, nil
}

func add(a, b float64) (float64, error)      { return a + b, nil }
func subtract(a, b float64) (float64, error) { return a - b, nil }
func multiply(a, b float64) (float64, error) { return a * b, nil }
func power(a, b float64) (float64, error)    { return math.Pow(a, b), nil }
func absDiff(a, b float64) (float64, error)  { return math.Abs(a - b), nil }

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// root считает корень степени b. Чётность определяется по целой части b:
// отрицательное основание допустимо только для нечётной целой части.
func root(a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: root degree cannot be zero", ErrInvalidArgument)
	}
	if a < 0 {
		if int64(b)%2 == 0 {
			return 0, fmt.Errorf("%w: even root of negative number not supported", ErrInvalidArgument)
		}
		return -math.Pow(-a, 1/b), nil
	}
	return math.Pow(a, 1/b), nil
}

// modulus возвращает остаток со знаком делителя.
func modulus(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r, nil
}

func intDivide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return math.Floor(a / b), nil
}

func percent(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b * 100, nil
}
