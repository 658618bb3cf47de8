package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AlertCondition is a closed set: GT fires on price > threshold, LT on
// price < threshold. Equality never fires.
type AlertCondition string

const (
	ConditionGT AlertCondition = "GT"
	ConditionLT AlertCondition = "LT"
)

func ParseAlertCondition(s string) (AlertCondition, error) {
	switch strings.ToUpper(s) {
	case string(ConditionGT):
		return ConditionGT, nil
	case string(ConditionLT):
		return ConditionLT, nil
	default:
		return "", fmt.Errorf("unknown alert condition %q", s)
	}
}

// Alert transitions triggered false -> true at most once and never back.
type Alert struct {
	AlertID   int64
	OwnerID   int64
	Symbol    string
	Condition AlertCondition
	Threshold decimal.Decimal
	Triggered bool
	CreatedAt time.Time
}

// Satisfied reports whether price crosses the alert threshold (strict inequality).
func (a Alert) Satisfied(price decimal.Decimal) bool {
	switch a.Condition {
	case ConditionGT:
		return price.GreaterThan(a.Threshold)
	case ConditionLT:
		return price.LessThan(a.Threshold)
	default:
		return false
	}
}

// AlertEvent is the payload emitted to the notification sink when an alert fires.
type AlertEvent struct {
	OwnerID   int64
	Symbol    string
	Condition AlertCondition
	Threshold decimal.Decimal
	Price     decimal.Decimal
}
