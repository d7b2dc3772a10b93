package feedback

import "strings"

// Advisory messages selected by the rule ladder.
const (
	adviceTooNegative   = "Try to sound more positive in your responses."
	adviceStayAuthentic = "Your positivity is great, just make sure to remain authentic."
	adviceElaborate     = "Try to elaborate more to create engaging conversations."
	adviceBalanceFacts  = "Consider balancing subjective opinions with objective facts."
	adviceAskQuestions  = "Try including questions to engage the other person."
	adviceAffirming     = "Good response! Your communication is balanced and effective."
)

// Result is the scorer output for one input.
type Result struct {
	Message        string
	Polarity       float64
	Subjectivity   float64
	WordCount      int
	PatternMatches []string
	Score          int
}

// Scorer analyzes practice input. Zero external state; safe for
// concurrent use.
type Scorer struct {
	analyzer Analyzer
	patterns []Pattern
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithAnalyzer overrides the sentiment analyzer.
func WithAnalyzer(a Analyzer) ScorerOption {
	return func(s *Scorer) {
		s.analyzer = a
	}
}

// NewScorer creates a Scorer with the default VADER analyzer and the
// default pattern catalog.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		analyzer: NewVaderAnalyzer(),
		patterns: defaultPatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces the full feedback result for the input.
func (s *Scorer) Analyze(text string) Result {
	sentiment := s.analyzer.Analyze(text)
	wordCount := len(strings.Fields(text))
	hasQuestion := strings.Contains(text, "?")
	matches := matchPatterns(s.patterns, strings.ToLower(text))

	message := selectAdvisory(sentiment, wordCount, hasQuestion)
	if len(matches) > 0 {
		message += " " + matches[0]
	}

	return Result{
		Message:        message,
		Polarity:       sentiment.Polarity,
		Subjectivity:   sentiment.Subjectivity,
		WordCount:      wordCount,
		PatternMatches: matches,
		Score:          computeScore(sentiment, wordCount, hasQuestion, len(matches)),
	}
}

// Degraded returns the cost-controlled result for free-tier callers:
// the affirming default plus a word count, with no analysis performed.
func (s *Scorer) Degraded(text string) Result {
	return Result{
		Message:   adviceAffirming,
		WordCount: len(strings.Fields(text)),
		Score:     50,
	}
}

// selectAdvisory walks the rule ladder; the first applicable rule wins.
func selectAdvisory(sentiment Sentiment, wordCount int, hasQuestion bool) string {
	switch {
	case sentiment.Polarity < -0.2:
		return adviceTooNegative
	case sentiment.Polarity > 0.6:
		return adviceStayAuthentic
	case wordCount < 5:
		return adviceElaborate
	case sentiment.Subjectivity > 0.8:
		return adviceBalanceFacts
	case !hasQuestion && wordCount > 20:
		return adviceAskQuestions
	default:
		return adviceAffirming
	}
}

// computeScore applies the fixed arithmetic and clamps to [0, 100].
func computeScore(sentiment Sentiment, wordCount int, hasQuestion bool, patternCount int) int {
	score := 50

	switch {
	case sentiment.Polarity >= -0.1 && sentiment.Polarity <= 0.5:
		score += 10
	case sentiment.Polarity > 0.5:
		score += 5
	case sentiment.Polarity < -0.2:
		score -= 10
	}

	if wordCount >= 10 && wordCount <= 30 {
		score += 10
	}
	if wordCount < 5 {
		score -= 10
	}
	if hasQuestion {
		score += 10
	}

	score -= 5 * patternCount

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
