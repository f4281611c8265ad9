package defaults

import (
	"strconv"
	"strings"

	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/script"
)

// registerOperators wires the RNA operator table, grounded on
// xepl_operator_kit.hpp's Register_Operator call sites. Every operator
// reads and mutates s.Value/s.Truth in place, matching the teacher's
// Script-as-accumulator shape; rhs arrives as "" both when a call omits
// "(...)" entirely and when it supplies empty parens, since script.Script
// makes no distinction between the two (see script/eval.go's
// operatorCall) — operators below treat rhs == "" as "no rhs", which
// matches every call site these operators are grounded on.
func registerOperators(c *cortex.Cortex) {
	c.RegisterOperator("after", opAfter)
	c.RegisterOperator("afterAny", opAfterAny)
	c.RegisterOperator("afterLast", opAfterLast)
	c.RegisterOperator("before", opBefore)
	c.RegisterOperator("beforeAny", opBeforeAny)
	c.RegisterOperator("nextAny", opNextAny)
	c.RegisterOperator("append", opAppend)
	c.RegisterOperator("empty", opEmpty)
	c.RegisterOperator("has", opHas)
	c.RegisterOperator("is", opIs)
	c.RegisterOperator("lower", opLower)
	c.RegisterOperator("lt", opLt)
	c.RegisterOperator("gt", opGt)
	c.RegisterOperator("eq", opEq)
	c.RegisterOperator("add", opAdd)
	c.RegisterOperator("sub", opSub)
	c.RegisterOperator("mul", opMul)
	c.RegisterOperator("period", opSeparator('.'))
	c.RegisterOperator("slash", opSeparator('/'))
	c.RegisterOperator("space", opSeparator(' '))
	c.RegisterOperator("tab", opSeparator('\t'))
	c.RegisterOperator("cr", opSeparator('\r'))
	c.RegisterOperator("lf", opSeparator('\n'))
	c.RegisterOperator("crlf", opLiteral("\r\n"))
	c.RegisterOperator("depercent", opDepercent)
	c.RegisterOperator("percentify", opDepercent)
}

func opAfter(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.Index(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[idx+len(rhs):]
			s.Truth = true
			return nil
		}
	}
	s.Truth = false
	return nil
}

func opAfterAny(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.IndexAny(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[idx+1:]
			s.Truth = true
			return nil
		}
	}
	s.Value = ""
	s.Truth = false
	return nil
}

func opAfterLast(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.LastIndex(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[idx+len(rhs):]
			s.Truth = true
			return nil
		}
	}
	s.Truth = false
	return nil
}

func opBefore(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.Index(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[:idx]
			s.Truth = true
			return nil
		}
	}
	s.Truth = false
	return nil
}

func opBeforeAny(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.IndexAny(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[:idx]
			s.Truth = true
			return nil
		}
	}
	s.Truth = false
	return nil
}

func opNextAny(s *script.Script, rhs string) error {
	if rhs != "" {
		if idx := strings.IndexAny(s.Value, rhs); idx >= 0 {
			s.Value = s.Value[idx : idx+1]
			s.Truth = true
			return nil
		}
	}
	s.Value = ""
	s.Truth = false
	return nil
}

func opAppend(s *script.Script, rhs string) error {
	if rhs != "" {
		s.Value += rhs
	}
	s.Truth = s.Value != ""
	return nil
}

func opEmpty(s *script.Script, _ string) error {
	s.Truth = s.Value == ""
	return nil
}

func opHas(s *script.Script, rhs string) error {
	s.Truth = rhs != "" && strings.Contains(s.Value, rhs)
	return nil
}

func opIs(s *script.Script, rhs string) error {
	s.Truth = rhs != "" && s.Value == rhs
	return nil
}

func opLower(s *script.Script, rhs string) error {
	s.Value = strings.ToLower(s.Value)
	if rhs != "" {
		s.Value += rhs
	}
	s.Truth = s.Value != ""
	return nil
}

// numberFrom mirrors the original's number_from: an empty string is 0,
// and any value is parsed the same way strtol would - the longest valid
// leading integer, defaulting to 0 when none is present.
func numberFrom(v string) int64 {
	if v == "" {
		return 0
	}
	i := 0
	if i < len(v) && (v[i] == '+' || v[i] == '-') {
		i++
	}
	start := i
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseInt(v[:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func opLt(s *script.Script, rhs string) error {
	s.Truth = numberFrom(s.Value) < numberFrom(rhs)
	return nil
}

func opGt(s *script.Script, rhs string) error {
	s.Truth = numberFrom(s.Value) > numberFrom(rhs)
	return nil
}

func opEq(s *script.Script, rhs string) error {
	s.Truth = numberFrom(s.Value) == numberFrom(rhs)
	return nil
}

func opAdd(s *script.Script, rhs string) error {
	s.Value = strconv.FormatInt(numberFrom(s.Value)+numberFrom(rhs), 10)
	return nil
}

func opSub(s *script.Script, rhs string) error {
	s.Value = strconv.FormatInt(numberFrom(s.Value)-numberFrom(rhs), 10)
	return nil
}

func opMul(s *script.Script, rhs string) error {
	s.Value = strconv.FormatInt(numberFrom(s.Value)*numberFrom(rhs), 10)
	return nil
}

// opSeparator returns an operator that unconditionally pushes ch, then
// appends rhs if one was supplied - period/slash/space/tab/cr/lf all
// share this shape in the original kit.
func opSeparator(ch byte) script.OperatorFunc {
	return func(s *script.Script, rhs string) error {
		s.Value += string(ch)
		if rhs != "" {
			s.Value += rhs
		}
		return nil
	}
}

func opLiteral(lit string) script.OperatorFunc {
	return func(s *script.Script, rhs string) error {
		s.Value += lit
		if rhs != "" {
			s.Value += rhs
		}
		return nil
	}
}

// opDepercent decodes %HH escapes and '+' as space, the shared body
// xepl_operator_kit.hpp registers under both "depercent" and
// "percentify".
func opDepercent(s *script.Script, rhs string) error {
	var b strings.Builder
	changed := false
	in := s.Value
	for i := 0; i < len(in); i++ {
		switch {
		case in[i] == '%' && i+2 < len(in) && isHex(in[i+1]) && isHex(in[i+2]):
			b.WriteByte(hexByte(in[i+1], in[i+2]))
			i += 2
			changed = true
		case in[i] == '+':
			b.WriteByte(' ')
			changed = true
		default:
			b.WriteByte(in[i])
		}
	}
	if changed {
		s.Value = b.String()
	}
	s.Truth = s.Value != ""
	if rhs != "" {
		s.Value += rhs
	}
	return nil
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func hexByte(hi, lo byte) byte {
	return hexVal(hi)<<4 | hexVal(lo)
}
