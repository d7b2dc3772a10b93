// Package feedback scores free-text conversation practice input.
//
// Scoring is deterministic: a lexicon-based sentiment analyzer supplies
// polarity and subjectivity, an ordered pattern catalog flags verbal
// habits (apologizing, filler words, hedging), and a fixed rule ladder
// turns the combination into an advisory message and a 0-100 score.
// The same input always produces the same result.
//
// Free-tier callers may request the degraded mode, which skips the
// sentiment and pattern passes and returns only the affirming default
// and a word count. That is a cost-control policy, not a limitation of
// the scorer.
package feedback
