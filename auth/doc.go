// Package auth resolves request identity for the conversation pipeline.
//
// The scope is deliberately narrow: validate an HS256 bearer token and
// extract the subject and subscription tier, or fall back to an
// anonymous identity keyed by network origin. Token issuance, password
// handling, and session management live elsewhere.
package auth
