package firestore

import (
	"math"

	"github.com/lborres/kalma/core"
)

// Documents are decoded from their raw field maps rather than struct tags:
// timestamps were written by several clients over time and arrive as native
// timestamps, {_seconds, _nanoseconds} maps or nothing at all.

func decodeContent(id string, data map[string]any) *core.ContentItem {
	item := &core.ContentItem{
		ID:      id,
		Flow:    core.ResolveFlow(stringField(data, "flow"), stringField(data, "stage")),
		Step:    intField(data, "step"),
		Title:   stringField(data, "title"),
		Content: stringField(data, "content"),
		Hint:    optionalString(data, "hint"),
	}
	// only documents explicitly marked active are served as active
	item.Active, _ = data["active"].(bool)
	return item
}

func decodeAnswer(id string, data map[string]any) *core.SessionAnswer {
	return &core.SessionAnswer{
		ID:        id,
		SessionID: stringField(data, "sessionId"),
		UserID:    stringField(data, "userId"),
		Flow:      core.ResolveFlow(stringField(data, "flow"), stringField(data, "stage")),
		Step:      intField(data, "step"),
		ContentID: stringField(data, "contentId"),
		Answer:    stringField(data, "answer"),
		CreatedAt: core.TimestampPtr(data["createdAt"]),
	}
}

func decodeSummary(id string, data map[string]any) *core.SessionSummary {
	s := &core.SessionSummary{
		SessionID:    id,
		UserID:       stringField(data, "userId"),
		Flow:         core.ResolveFlow(stringField(data, "flow"), stringField(data, "stage")),
		AnswersCount: intField(data, "answersCount"),
		LastStep:     intField(data, "lastStep"),
		CalmnessAt:   core.TimestampPtr(data["calmnessAt"]),
		CreatedAt:    core.TimestampPtr(data["createdAt"]),
		UpdatedAt:    core.TimestampPtr(data["updatedAt"]),
	}
	if calmness, ok := core.StoredCalmness(data["calmness"]); ok {
		s.Calmness = &calmness
	}
	return s
}

func decodeUser(id string, data map[string]any) *core.UserRecord {
	isPro, _ := data["isPro"].(bool)
	return &core.UserRecord{
		UserID:               id,
		IsPro:                isPro,
		SubscriptionStatus:   optionalString(data, "subscriptionStatus"),
		StripeCustomerID:     optionalString(data, "stripeCustomerId"),
		StripeSubscriptionID: optionalString(data, "stripeSubscriptionId"),
		CurrentPeriodEnd:     core.TimestampPtr(data["currentPeriodEnd"]),
		ProSince:             core.TimestampPtr(data["proSince"]),
	}
}

func answerFields(a *core.SessionAnswer) map[string]any {
	fields := map[string]any{
		"sessionId": a.SessionID,
		"userId":    a.UserID,
		"flow":      string(a.Flow),
		"step":      a.Step,
		"contentId": a.ContentID,
		"answer":    a.Answer,
	}
	if a.CreatedAt != nil {
		fields["createdAt"] = *a.CreatedAt
	}
	return fields
}

// summaryFields lists the fields a patch writes. Only flow is written; the
// legacy stage field is never touched.
func summaryFields(p *core.SummaryPatch, created bool) map[string]any {
	fields := map[string]any{
		"userId":    p.UserID,
		"updatedAt": p.UpdatedAt,
	}
	if p.Flow != "" {
		fields["flow"] = string(p.Flow)
	}
	if p.AnswersCount != nil {
		fields["answersCount"] = *p.AnswersCount
	}
	if p.LastStep != nil {
		fields["lastStep"] = *p.LastStep
	}
	if p.Calmness != nil {
		fields["calmness"] = *p.Calmness
	}
	if p.CalmnessAt != nil {
		fields["calmnessAt"] = *p.CalmnessAt
	}
	if created {
		fields["createdAt"] = p.CreatedAt
	}
	return fields
}

func userFields(p *core.UserPatch) map[string]any {
	fields := map[string]any{}
	if p.IsPro != nil {
		fields["isPro"] = *p.IsPro
	}
	if p.SubscriptionStatus != nil {
		fields["subscriptionStatus"] = *p.SubscriptionStatus
	}
	if p.StripeCustomerID != nil {
		fields["stripeCustomerId"] = *p.StripeCustomerID
	}
	if p.StripeSubscriptionID != nil {
		fields["stripeSubscriptionId"] = *p.StripeSubscriptionID
	}
	if p.CurrentPeriodEnd != nil {
		fields["currentPeriodEnd"] = *p.CurrentPeriodEnd
	}
	if p.ProSince != nil {
		fields["proSince"] = *p.ProSince
	}
	return fields
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func optionalString(data map[string]any, key string) *string {
	s, ok := data[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// intField accepts the integer and float encodings Firestore clients produce
func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	default:
		return 0
	}
}
