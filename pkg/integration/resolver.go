package integration

import (
	"context"
	"errors"
	"log"

	"github.com/zen-systems/agentgate/pkg/intent"
)

// ErrNotFound reports that no active integration exists for a chatbot
// and platform.
var ErrNotFound = errors.New("integration not found")

// Store is the narrow read contract the resolver consumes from the
// persistence layer.
type Store interface {
	FindActiveIntegration(ctx context.Context, chatbotID string, platform Platform) (Credentials, error)
}

// toolPlatforms maps suggested tools to the platform whose credentials
// they need. Tools absent here (contact capture) run against local
// storage and need no external credentials.
var toolPlatforms = map[intent.Tool]Platform{
	intent.ToolCreatePaymentLink: PlatformStripe,
	intent.ToolScheduleReminder:  PlatformCalendar,
}

// RequiresCredentials reports whether a tool needs external platform
// credentials to run. Tools that only touch local storage do not.
func RequiresCredentials(tool intent.Tool) bool {
	_, ok := toolPlatforms[tool]
	return ok
}

// Resolver loads integration credentials on demand.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads credentials for exactly the tools the decision
// suggested, and only when the decision committed to tools. Lookups
// are independent: a failure for one tool is logged and omitted, never
// blocking resolution of the others. An empty suggestion set performs
// zero storage lookups.
func (r *Resolver) Resolve(ctx context.Context, chatbotID string, decision intent.Decision) map[intent.Tool]Credentials {
	resolved := make(map[intent.Tool]Credentials)
	if !decision.NeedsTools || len(decision.SuggestedTools) == 0 {
		return resolved
	}

	for _, tool := range decision.SuggestedTools {
		platform, ok := toolPlatforms[tool]
		if !ok {
			continue
		}

		creds, err := r.store.FindActiveIntegration(ctx, chatbotID, platform)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Printf("[integration] lookup failed chatbot=%s platform=%s: %v", chatbotID, platform, err)
			}
			continue
		}
		resolved[tool] = creds
	}

	return resolved
}
