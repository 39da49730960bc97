package services

import (
	"fmt"
	"sort"

	"github.com/lborres/kalma/core"
)

// Operation ids shared by the endpoint table and the HTTP adapters
const (
	OpListContent        = "listContent"
	OpListOnboarding     = "listOnboardingContent"
	OpListDaily          = "listDailyContent"
	OpRecordAnswer       = "recordAnswer"
	OpRecordCalmness     = "recordCalmness"
	OpGetHistory         = "getHistory"
	OpGetInsights        = "getInsights"
	OpGetWeekly          = "getWeeklyReport"
	OpGetAnswers         = "getAnswers"
	OpGetEntitlement     = "getEntitlement"
	OpDeleteUser         = "deleteUserData"
	OpStartCheckout      = "startCheckout"
	OpHandleStripeEvents = "handleStripeWebhook"
)

// BaseEndpoints returns framework-agnostic endpoint specifications
// for the journaling API. Adapters resolve handlers by operation id.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/content",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpListContent,
				Description: "List the prompts of a flow ordered by step",
			},
		},
		{
			Path:   "/onboarding",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpListOnboarding,
				Description: "List the active onboarding prompts",
			},
		},
		{
			Path:   "/daily",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpListDaily,
				Description: "List the daily prompts",
			},
		},
		{
			Path:   "/session",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpRecordAnswer,
				Description: "Record one answered prompt and update the session summary",
			},
		},
		{
			Path:   "/calmness",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpRecordCalmness,
				Description: "Record a 1-5 calmness rating for a session",
			},
		},
		{
			Path:   "/history",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetHistory,
				Description: "List the latest session summaries of a user",
			},
		},
		{
			Path:   "/insights",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetInsights,
				Description: "Session counters and day buckets of a user",
			},
		},
		{
			Path:   "/weekly",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetWeekly,
				Description: "Compare this week of daily sessions with the previous one",
			},
		},
		{
			Path:   "/answers",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetAnswers,
				Description: "List the most recent non-empty answers of a user",
			},
		},
		{
			Path:   "/entitlements",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetEntitlement,
				Description: "Get the pro entitlement of a user",
			},
		},
		{
			Path:   "/delete-user",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteUser,
				Description: "Erase all answers and summaries of a user",
			},
		},
		{
			Path:   "/stripe/checkout",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpStartCheckout,
				Description: "Create a hosted subscription checkout",
			},
		},
		{
			Path:   "/stripe/webhook",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpHandleStripeEvents,
				Description: "Receive signed billing events",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a new registry with all base endpoints pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		reg.endpoints[endpointKey(&base[i])] = &base[i]
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// Register adds extra endpoints to the registry.
// Returns error if any endpoint conflicts with existing endpoints
// or with other endpoints in the same batch.
//
// If an error occurs, none of the endpoints are registered.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpointKey(&endpoints[i])

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		r.endpoints[endpointKey(&endpoints[i])] = &endpoints[i]
	}

	return nil
}

// Endpoints returns all registered endpoints sorted by path, then method
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
