package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonwraymond/coachkit/auth"
	"github.com/jonwraymond/coachkit/quota"
)

// Request is one conversation turn submitted to the Coordinator.
type Request struct {
	// Identity is the resolved actor. Anonymous identities are valid.
	Identity *auth.Identity

	// Text is the practice input. Required.
	Text string

	// Category is the optional practice scenario. When set it must be
	// one of the known categories and gates on the actor's tier.
	Category string
}

// ScenarioLimit is a monthly ceiling that renders quota.Unlimited as
// the string "unlimited".
type ScenarioLimit int

// MarshalJSON implements json.Marshaler.
func (l ScenarioLimit) MarshalJSON() ([]byte, error) {
	if int(l) == quota.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(int(l))
}

// Response is the Coordinator's answer to one Request. Quota fields are
// present only when quota was consulted for the request.
type Response struct {
	Success        bool           `json:"success"`
	Response       string         `json:"response,omitempty"`
	Feedback       string         `json:"feedback,omitempty"`
	Category       string         `json:"category,omitempty"`
	TierRequired   string         `json:"tier_required,omitempty"`
	ScenariosUsed  *int           `json:"scenarios_used,omitempty"`
	ScenariosLimit *ScenarioLimit `json:"scenarios_limit,omitempty"`
	Message        string         `json:"message,omitempty"`

	// Cached reports whether the response was served from the cache.
	Cached bool `json:"-"`
}

// ConversationRecord is one persisted exchange.
type ConversationRecord struct {
	ID        string
	UserID    string
	Input     string
	Response  string
	Feedback  string
	Category  string
	CreatedAt time.Time
}

// ConversationStore persists completed exchanges.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: failures are reported, never panicked; the Coordinator
//   logs and swallows them.
type ConversationStore interface {
	SaveConversation(ctx context.Context, rec ConversationRecord) error
}
