package tool

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

const ToolMathEvaluate = "math.evaluate"

// Accepts digits, whitespace, decimal points, operators, and parentheses.
var mathExpressionPattern = regexp.MustCompile(`^[\d\s\+\-\*/%\^\(\)\.]+$`)

// MathEvaluate computes plain arithmetic locally; it is the one catalog
// entry with no external collaborator, so it never fails transiently.
type MathEvaluate struct{}

func NewMathEvaluate() *MathEvaluate { return &MathEvaluate{} }

func (m *MathEvaluate) Name() string { return ToolMathEvaluate }

func (m *MathEvaluate) Description() string {
	return "Evaluate a plain arithmetic expression, e.g. (120 - 35) * 2."
}

func (m *MathEvaluate) Execute(ctx context.Context, input string) (string, error) {
	expression := strings.TrimSpace(input)
	if expression == "" {
		return "", fmt.Errorf("%w: expression is empty", contractx.ErrInvalidArgument)
	}
	if !mathExpressionPattern.MatchString(expression) {
		return "", fmt.Errorf("%w: expression contains invalid characters", contractx.ErrInvalidArgument)
	}

	result, err := evaluateExpression(expression)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrInvalidArgument, err)
	}
	return strconv.FormatFloat(result, 'f', -1, 64), nil
}

type mathToken struct {
	kind  byte // 'n' number, 'o' operator, '(' or ')'
	value float64
	op    byte
}

// evaluateExpression runs a shunting-yard pass over the token stream and
// folds the RPN output on the fly.
func evaluateExpression(expression string) (float64, error) {
	tokens, err := tokenizeExpression(expression)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("expression is empty")
	}

	var operands []float64
	var operators []byte

	applyTop := func() error {
		if len(operators) == 0 {
			return fmt.Errorf("misplaced operator")
		}
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		if len(operands) < 2 {
			return fmt.Errorf("operator %c is missing an operand", op)
		}
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]

		value, err := applyOperator(op, left, right)
		if err != nil {
			return err
		}
		operands = append(operands, value)
		return nil
	}

	for _, tok := range tokens {
		switch tok.kind {
		case 'n':
			operands = append(operands, tok.value)
		case '(':
			operators = append(operators, '(')
		case ')':
			for len(operators) > 0 && operators[len(operators)-1] != '(' {
				if err := applyTop(); err != nil {
					return 0, err
				}
			}
			if len(operators) == 0 {
				return 0, fmt.Errorf("expression has unbalanced parentheses")
			}
			operators = operators[:len(operators)-1]
		case 'o':
			for len(operators) > 0 && operators[len(operators)-1] != '(' &&
				shouldApplyFirst(operators[len(operators)-1], tok.op) {
				if err := applyTop(); err != nil {
					return 0, err
				}
			}
			operators = append(operators, tok.op)
		}
	}

	for len(operators) > 0 {
		if operators[len(operators)-1] == '(' {
			return 0, fmt.Errorf("expression has unbalanced parentheses")
		}
		if err := applyTop(); err != nil {
			return 0, err
		}
	}
	if len(operands) != 1 {
		return 0, fmt.Errorf("expression is incomplete")
	}
	return operands[0], nil
}

func tokenizeExpression(expression string) ([]mathToken, error) {
	var tokens []mathToken
	i := 0
	for i < len(expression) {
		ch := expression[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '(' || ch == ')':
			tokens = append(tokens, mathToken{kind: ch})
			i++
		case strings.IndexByte("+-*/%^", ch) >= 0:
			// A leading minus (or one after an operator or open paren)
			// binds to the following number.
			if ch == '-' && expectsOperand(tokens) {
				value, width, err := scanNumber(expression[i+1:])
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, mathToken{kind: 'n', value: -value})
				i += width + 1
				break
			}
			if expectsOperand(tokens) {
				return nil, fmt.Errorf("misplaced operator %c", ch)
			}
			tokens = append(tokens, mathToken{kind: 'o', op: ch})
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			value, width, err := scanNumber(expression[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, mathToken{kind: 'n', value: value})
			i += width
		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}
	return tokens, nil
}

func expectsOperand(tokens []mathToken) bool {
	if len(tokens) == 0 {
		return true
	}
	last := tokens[len(tokens)-1]
	return last.kind == 'o' || last.kind == '('
}

func scanNumber(s string) (float64, int, error) {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, 0, fmt.Errorf("expected a number")
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", s[:end])
	}
	return value, end, nil
}

func precedence(op byte) int {
	switch op {
	case '^':
		return 3
	case '*', '/', '%':
		return 2
	default:
		return 1
	}
}

func shouldApplyFirst(stacked, incoming byte) bool {
	if incoming == '^' {
		// Exponentiation is right-associative.
		return precedence(stacked) > precedence(incoming)
	}
	return precedence(stacked) >= precedence(incoming)
}

func applyOperator(op byte, left, right float64) (float64, error) {
	switch op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case '%':
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return math.Mod(left, right), nil
	case '^':
		return math.Pow(left, right), nil
	default:
		return 0, fmt.Errorf("unsupported operator %c", op)
	}
}
