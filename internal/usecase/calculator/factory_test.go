package calculator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undoCalc/internal/domain"
)

func TestFactory_Create(t *testing.T) {
	tests := []struct {
		name  string
		token string
		a, b  any
		want  domain.Calculation
	}{
		{
			name:  "строки",
			token: "add",
			a:     "1",
			b:     " 2.5 ",
			want:  domain.Calculation{Token: "add", Op: domain.OpAdd, A: 1, B: 2.5},
		},
		{
			name:  "числа как есть",
			token: " / ",
			a:     10,
			b:     4.0,
			want:  domain.Calculation{Token: "/", Op: domain.OpDivide, A: 10, B: 4},
		},
		{
			name:  "json.Number",
			token: "POWER",
			a:     json.Number("2"),
			b:     int64(8),
			want:  domain.Calculation{Token: "POWER", Op: domain.OpPower, A: 2, B: 8},
		},
		{
			name:  "научная запись",
			token: "%",
			a:     "1e3",
			b:     "-7",
			want:  domain.Calculation{Token: "%", Op: domain.OpModulus, A: 1000, B: -7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFactory(0).Create(tt.token, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactory_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		a, b    any
		wantErr error
		wantMsg string
	}{
		{name: "пустой токен важнее операндов", token: "  ", a: "", b: "", wantErr: domain.ErrInvalidOperation, wantMsg: "must be provided"},
		{name: "неизвестный токен важнее операндов", token: "foo", a: "", b: "x", wantErr: domain.ErrInvalidOperation, wantMsg: "foo"},
		{name: "пустой A важнее пустого B", token: "+", a: " ", b: "", wantErr: domain.ErrOperand, wantMsg: "first operand empty"},
		{name: "пустой B важнее нечислового A", token: "+", a: "x", b: "", wantErr: domain.ErrOperand, wantMsg: "second operand empty"},
		{name: "nil считается пустым", token: "+", a: 1, b: nil, wantErr: domain.ErrOperand, wantMsg: "second operand empty"},
		{name: "нечисловой A", token: "+", a: "abc", b: "1", wantErr: domain.ErrOperand, wantMsg: `parsing "abc"`},
		{name: "нечисловой B", token: "+", a: "1", b: "1,5", wantErr: domain.ErrOperand, wantMsg: `parsing "1,5"`},
		{name: "NaN в операнде", token: "+", a: "NaN", b: "1", wantErr: domain.ErrOperand, wantMsg: "finite"},
		{name: "бесконечность в операнде", token: "+", a: "1", b: "-Inf", wantErr: domain.ErrOperand, wantMsg: "finite"},
		{name: "неподдерживаемый тип", token: "+", a: []int{1}, b: "1", wantErr: domain.ErrOperand, wantMsg: "unsupported operand type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(0).Create(tt.token, tt.a, tt.b)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFactory_MaxInput(t *testing.T) {
	f := NewFactory(1000)

	_, err := f.Create("+", "1000", "-1000")
	require.NoError(t, err)

	_, err = f.Create("+", "1", "-1000.5")
	assert.ErrorIs(t, err, domain.ErrOperand)
	assert.ErrorContains(t, err, "exceeds maximum")
}
