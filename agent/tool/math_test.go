package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

func TestMathEvaluate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2 + 3 * (4 - 1)": "11",
		"10 / 4":          "2.5",
		"2 ^ 3 ^ 2":       "512",
		"-3 + 5":          "2",
		"7 % 3":           "1",
	}

	m := NewMathEvaluate()
	for expression, want := range cases {
		out, err := m.Execute(context.Background(), expression)
		if err != nil {
			t.Fatalf("%s: Execute() error = %v", expression, err)
		}
		if out != want {
			t.Fatalf("%s: expected %s, got %s", expression, want, out)
		}
	}
}

func TestMathEvaluateInvalidExpressions(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"2 + abc",
		"(2 + 3",
		"2 +",
		"4 / 0",
		"* 2",
	}

	m := NewMathEvaluate()
	for _, expression := range cases {
		if _, err := m.Execute(context.Background(), expression); !errors.Is(err, contractx.ErrInvalidArgument) {
			t.Fatalf("%q: expected ErrInvalidArgument, got %v", expression, err)
		}
	}
}
