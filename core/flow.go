package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Flow names a prompt sequence
type Flow string

const (
	FlowOnboarding Flow = "onboarding"
	FlowDaily      Flow = "daily"
)

func (f Flow) Valid() bool {
	return f == FlowOnboarding || f == FlowDaily
}

// ParseFlow validates a flow name coming from a client.
func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.TrimSpace(s))
	if !f.Valid() {
		return "", ErrInvalidFlow
	}
	return f, nil
}

// ResolveFlow returns the canonical flow of a stored record.
//
// Records written before the rename carry only the legacy "stage" field.
func ResolveFlow(flow, stage string) Flow {
	if flow != "" {
		return Flow(flow)
	}
	return Flow(stage)
}

// Plan is a subscription billing period
type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// ParsePlan defaults an empty plan to monthly
func ParsePlan(s string) (Plan, error) {
	switch Plan(strings.TrimSpace(s)) {
	case "", PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	default:
		return "", ErrInvalidPlan
	}
}

const (
	MinCalmness = 1
	MaxCalmness = 5
)

// ParseCalmness accepts an integer rating in [1, 5] given as a JSON number
// or a numeric string.
func ParseCalmness(raw any) (int, error) {
	f, ok := calmnessNumber(raw)
	if !ok || f != math.Trunc(f) {
		return 0, ErrInvalidCalmness
	}
	return int(f), nil
}

// StoredCalmness reads a rating back from storage. Unlike ParseCalmness it
// keeps fractional values, which earlier clients were allowed to write.
func StoredCalmness(raw any) (float64, bool) {
	return calmnessNumber(raw)
}

// calmnessNumber converts raw to a finite number in [1, 5]
func calmnessNumber(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < MinCalmness || f > MaxCalmness {
		return 0, false
	}
	return f, true
}
