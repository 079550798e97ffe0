package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/swnshop/checkout-pipeline/internal/models"
)

// Destination is anywhere the bus can forward a matched event to.
type Destination interface {
	Name() string
	Enqueue(ctx context.Context, body []byte) (string, error)
}

// Matcher decides whether a rule applies to an event. Rule evaluation is
// pure; matching the same event against the same rules is deterministic.
type Matcher interface {
	Matches(event *models.CheckoutEvent) bool
}

// MatchSourceAndType matches events whose source and detail type both equal
// the configured values. Comparison is exact and case-sensitive.
type MatchSourceAndType struct {
	Source     string
	DetailType string
}

func (m MatchSourceAndType) Matches(event *models.CheckoutEvent) bool {
	return event.Source == m.Source && event.DetailType == m.DetailType
}

// Rule binds a matcher to a delivery destination.
type Rule struct {
	Matcher     Matcher
	Destination Destination
}

// DeliveryFailure reports one destination that rejected the enqueue.
type DeliveryFailure struct {
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
}

// PublishResult reports where a published event went. Matched counts every
// rule that matched; Failures lists destinations whose enqueue failed.
// Enqueues that succeeded are not rolled back on partial failure.
type PublishResult struct {
	Matched  int               `json:"matched"`
	Failures []DeliveryFailure `json:"failures,omitempty"`
}

func (r PublishResult) Ok() bool { return len(r.Failures) == 0 }

// Bus evaluates registered rules against published events and fans matches
// out to their destinations. It decouples the basket service from any
// knowledge of downstream consumers.
type Bus struct {
	rules []Rule
}

func NewBus(rules ...Rule) *Bus {
	return &Bus{rules: rules}
}

// Publish validates the envelope and forwards the event to every matching
// destination in registration order. An event matching no rule is accepted
// and dropped; publishers are not destination-aware.
func (b *Bus) Publish(ctx context.Context, event *models.CheckoutEvent) (PublishResult, error) {
	var result PublishResult

	if err := event.ValidateEnvelope(); err != nil {
		return result, err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return result, fmt.Errorf("failed to marshal event: %w", err)
	}

	for _, rule := range b.rules {
		if !rule.Matcher.Matches(event) {
			continue
		}
		result.Matched++

		id, err := rule.Destination.Enqueue(ctx, body)
		if err != nil {
			log.Printf("❌ Failed to deliver %s/%s to %s: %v", event.Source, event.DetailType, rule.Destination.Name(), err)
			result.Failures = append(result.Failures, DeliveryFailure{
				Destination: rule.Destination.Name(),
				Reason:      err.Error(),
			})
			continue
		}
		log.Printf("📤 Event %s/%s delivered to %s (message %s)", event.Source, event.DetailType, rule.Destination.Name(), id)
	}

	if result.Matched == 0 {
		log.Printf("🗑️ Event %s/%s matched no rules, dropped", event.Source, event.DetailType)
	}

	return result, nil
}
