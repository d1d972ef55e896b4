// Package auth resolves caller identities and verifies capabilities on
// datasets.
//
// The Authorizer is consumed by the ingestion pipeline as a single call that
// must succeed before any extraction or persistence step runs. Proofs are
// either signed JWTs (HS256) or registered API keys; only key digests are
// kept in memory.
package auth
