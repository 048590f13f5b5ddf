package calculator

import (
	"testing"

	"undoCalc/internal/domain"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name string
		calc domain.Calculation
		want string
	}{
		{
			name: "сложение целых",
			calc: domain.Calculation{Op: domain.OpAdd, A: 10, B: 5},
			want: "10 + 5",
		},
		{
			name: "имя операции сводится к символу",
			calc: domain.Calculation{Token: "subtract", Op: domain.OpSubtract, A: 100, B: 50},
			want: "100 - 50",
		},
		{
			name: "умножение с дробными",
			calc: domain.Calculation{Op: domain.OpMultiply, A: 3.14, B: 2},
			want: "3.14 * 2",
		},
		{
			name: "отрицательные числа",
			calc: domain.Calculation{Op: domain.OpAdd, A: -10, B: -5},
			want: "-10 + -5",
		},
		{
			name: "большие числа",
			calc: domain.Calculation{Op: domain.OpIntDivide, A: 1000000, B: 999999},
			want: "1000000 // 999999",
		},
		{
			name: "очень маленькое дробное",
			calc: domain.Calculation{Op: domain.OpRoot, A: 0.000001, B: 0.000002},
			want: "0.000001 root 0.000002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cacheKey(tt.calc)
			if got != tt.want {
				t.Errorf("cacheKey(%+v) = %q, want %q", tt.calc, got, tt.want)
			}
		})
	}
}
