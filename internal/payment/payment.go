// Package payment holds the adapters for the two external payment networks.
// An adapter's only job is translating provider wire formats into the
// approved/rejected/pending trichotomy plus a correlation order id; all state
// transitions happen in the settlement service.
package payment

// Outcome is the normalized result of a provider confirmation step.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	// OutcomePending means the provider has no definitive result yet; the
	// caller must not transition any order state.
	OutcomePending Outcome = "pending"
)
