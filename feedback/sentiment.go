package feedback

import "github.com/jonreiter/govader"

// Sentiment is the analyzer output: polarity in [-1, 1], subjectivity
// in [0, 1].
type Sentiment struct {
	Polarity     float64
	Subjectivity float64
}

// Analyzer derives sentiment from text.
//
// Contract:
// - Determinism: the same input must always yield the same values.
// - Concurrency: implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(text string) Sentiment
}

// vaderAnalyzer adapts the VADER lexicon analyzer. Polarity is the
// compound score; subjectivity is the non-neutral fraction of the text
// (1 - neutral ratio), which tracks how opinion-laden the wording is.
type vaderAnalyzer struct {
	inner *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer creates the default lexicon-based analyzer.
func NewVaderAnalyzer() Analyzer {
	return &vaderAnalyzer{inner: govader.NewSentimentIntensityAnalyzer()}
}

func (a *vaderAnalyzer) Analyze(text string) Sentiment {
	scores := a.inner.PolarityScores(text)
	return Sentiment{
		Polarity:     scores.Compound,
		Subjectivity: clampFloat(1-scores.Neutral, 0, 1),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ensure vaderAnalyzer implements Analyzer
var _ Analyzer = (*vaderAnalyzer)(nil)
