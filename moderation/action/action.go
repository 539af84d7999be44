// Package action maps active violation counts to punitive commands via
// threshold rules. Every rule whose predicate is satisfied fires; callers
// wanting exclusive tiers author mutually exclusive predicates (eg, `==1`,
// `==2`, `>=3`).
package action

import (
	"fmt"
	"log/slog"
	"strings"
)

// Operator compares an active violation count against a rule's amount.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
)

// ParseOperator maps a config string to an Operator. Unrecognized values
// default to equality with a logged warning rather than failing.
func ParseOperator(s string) Operator {
	switch strings.TrimSpace(s) {
	case "==", "=", "eq", "EQ", "equal":
		return OpEqual
	case "!=", "ne", "NE":
		return OpNotEqual
	case ">", "gt", "GT":
		return OpGreater
	case "<", "lt", "LT":
		return OpLess
	case ">=", "gte", "GTE":
		return OpGreaterEqual
	case "<=", "lte", "LTE":
		return OpLessEqual
	default:
		slog.Warn("unrecognized threshold operator, defaulting to equality", "operator", s)
		return OpEqual
	}
}

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpGreater:
		return ">"
	case OpLess:
		return "<"
	case OpGreaterEqual:
		return ">="
	case OpLessEqual:
		return "<="
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Satisfied reports whether count stands in relation o to amount.
func (o Operator) Satisfied(count, amount int) bool {
	switch o {
	case OpEqual:
		return count == amount
	case OpNotEqual:
		return count != amount
	case OpGreater:
		return count > amount
	case OpLess:
		return count < amount
	case OpGreaterEqual:
		return count >= amount
	case OpLessEqual:
		return count <= amount
	default:
		return false
	}
}

// Rule maps a violation-count predicate to a command template. The template
// may reference `{player}`, substituted at resolution time.
type Rule struct {
	Op      Operator
	Amount  int
	Command string
}

// Fires reports whether the rule's predicate holds for activeCount.
func (r Rule) Fires(activeCount int) bool {
	return r.Op.Satisfied(activeCount, r.Amount)
}

// Resolve evaluates every rule against activeCount and returns the
// commands to run, with `{player}` substituted. Identical resolved command
// strings collapse to one; result order carries no meaning.
func Resolve(rules []Rule, activeCount int, playerName string) []string {
	seen := make(map[string]bool, len(rules))
	var out []string
	for _, r := range rules {
		if !r.Fires(activeCount) {
			continue
		}
		cmd := strings.ReplaceAll(r.Command, "{player}", playerName)
		if seen[cmd] {
			continue
		}
		seen[cmd] = true
		out = append(out, cmd)
	}
	return out
}
