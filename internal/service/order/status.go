package order

import (
	"errors"
	"fmt"
	"strings"

	"colognehub/internal/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// Lifecycle lists the forward path of an order.
var Lifecycle = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
}

var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:  {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	domain.OrderStatusDelivered:  nil,
	domain.OrderStatusCancelled:  nil,
}

// ParseStatus normalises a status string.
func ParseStatus(s string) (domain.OrderStatus, error) {
	st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Terminal reports whether no transition leaves s.
func Terminal(s domain.OrderStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Next returns the statuses reachable from s in one step.
func Next(s domain.OrderStatus) []domain.OrderStatus {
	return append([]domain.OrderStatus(nil), transitions[s]...)
}

// CheckTransition returns ErrInvalidTransition unless to directly follows from.
func CheckTransition(from, to domain.OrderStatus) error {
	if _, ok := transitions[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Step is one entry of the tracking timeline.
type Step struct {
	Status  domain.OrderStatus `json:"status"`
	Reached bool               `json:"reached"`
	Current bool               `json:"current"`
}

// Timeline renders the tracking progress for s. A cancelled order shows no
// reached steps beyond pending.
func Timeline(s domain.OrderStatus) []Step {
	pos := -1
	for i, st := range Lifecycle {
		if st == s {
			pos = i
		}
	}
	steps := make([]Step, len(Lifecycle))
	for i, st := range Lifecycle {
		steps[i] = Step{Status: st, Reached: i <= pos || (pos < 0 && i == 0), Current: i == pos}
	}
	return steps
}
