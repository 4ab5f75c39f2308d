// Package providers defines the capability surface a metadata source must
// implement to participate in enrichment, the Candidate result shape shared
// by all sources, and the error taxonomy workers use to classify failures.
// Concrete clients live in subpackages, one per source.
package providers
