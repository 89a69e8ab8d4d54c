package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type CalcKind string

const (
	CalcSum        CalcKind = "sum"
	CalcAverage    CalcKind = "average"
	CalcPercentage CalcKind = "percentage"
	CalcGoal       CalcKind = "goal"
)

// defaultPercentage applies when a percentage method is stored without a
// parameter.
const defaultPercentage = 100

// CalcMethod is the domain form of a calc folder's aggregation method.
// Percentage and goal carry a parameter; sum and average do not.
//
// The persisted form is a single string: the bare method name, or
// "name:param" for parameterized methods (EncodeCalcMethod/ParseCalcMethod).
type CalcMethod struct {
	Kind     CalcKind
	Param    float64
	HasParam bool
}

// Parameter returns the effective parameter for the method, applying the
// percentage default when none was stored.
func (m CalcMethod) Parameter() float64 {
	if m.HasParam {
		return m.Param
	}
	if m.Kind == CalcPercentage {
		return defaultPercentage
	}
	return 0
}

func (m CalcMethod) Parameterized() bool {
	return m.Kind == CalcPercentage || m.Kind == CalcGoal
}

// EncodeCalcMethod renders the persistence-boundary string form.
// A zero-value method encodes as "" (no method chosen yet).
func EncodeCalcMethod(m CalcMethod) string {
	if m.Kind == "" {
		return ""
	}
	if m.Parameterized() && m.HasParam {
		return string(m.Kind) + ":" + strconv.FormatFloat(m.Param, 'f', -1, 64)
	}
	return string(m.Kind)
}

// ParseCalcMethod splits the stored "name" or "name:param" form back into the
// method name and parameter.
func ParseCalcMethod(s string) (CalcMethod, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalcMethod{}, nil
	}
	name, rawParam, hasParam := strings.Cut(s, ":")
	var m CalcMethod
	switch CalcKind(name) {
	case CalcSum, CalcAverage, CalcPercentage, CalcGoal:
		m.Kind = CalcKind(name)
	default:
		return CalcMethod{}, fmt.Errorf("unknown calc method %q", name)
	}
	if hasParam {
		if !m.Parameterized() {
			return CalcMethod{}, fmt.Errorf("calc method %q takes no parameter", name)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(rawParam), 64)
		if err != nil {
			return CalcMethod{}, errors.New("invalid calc method parameter")
		}
		m.Param = p
		m.HasParam = true
	}
	return m, nil
}
