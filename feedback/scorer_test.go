package feedback

import (
	"reflect"
	"strings"
	"testing"
)

// stubAnalyzer returns fixed sentiment for rule-boundary tests.
type stubAnalyzer struct {
	sentiment Sentiment
}

func (a *stubAnalyzer) Analyze(string) Sentiment {
	return a.sentiment
}

func scorerWith(polarity, subjectivity float64) *Scorer {
	return NewScorer(WithAnalyzer(&stubAnalyzer{sentiment: Sentiment{
		Polarity:     polarity,
		Subjectivity: subjectivity,
	}}))
}

func TestAnalyze_AdvisoryLadder(t *testing.T) {
	tests := []struct {
		name         string
		polarity     float64
		subjectivity float64
		text         string
		want         string
	}{
		{
			name:     "negative polarity wins first",
			polarity: -0.5, subjectivity: 0.9,
			text: "this is a terrible no good conversation honestly",
			want: adviceTooNegative,
		},
		{
			name:     "very positive",
			polarity: 0.7, subjectivity: 0.1,
			text: "what a wonderful day to chat with everyone here",
			want: adviceStayAuthentic,
		},
		{
			name:     "short input",
			polarity: 0.0, subjectivity: 0.0,
			text: "ok then",
			want: adviceElaborate,
		},
		{
			name:     "highly subjective",
			polarity: 0.0, subjectivity: 0.9,
			text: "this topic feels really important to me personally",
			want: adviceBalanceFacts,
		},
		{
			name:     "long monologue without questions",
			polarity: 0.0, subjectivity: 0.1,
			text: strings.Repeat("word ", 25),
			want: adviceAskQuestions,
		},
		{
			name:     "balanced default",
			polarity: 0.2, subjectivity: 0.3,
			text: "how was your weekend? mine was quite busy overall",
			want: adviceAffirming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorerWith(tt.polarity, tt.subjectivity).Analyze(tt.text)
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestAnalyze_FirstPatternAdvisoryAppended(t *testing.T) {
	s := scorerWith(0.0, 0.0)
	// Matches the apology pattern (first in catalog) and the hedging
	// pattern; only the apology advisory is appended.
	res := s.Analyze("sorry, maybe we could talk about the weather today?")

	if len(res.PatternMatches) != 2 {
		t.Fatalf("PatternMatches = %d entries, want 2: %v", len(res.PatternMatches), res.PatternMatches)
	}
	if !strings.HasSuffix(res.Message, defaultPatterns[0].Advisory) {
		t.Errorf("Message = %q, want apology advisory appended", res.Message)
	}
	if strings.Contains(res.Message, "qualifiers") {
		t.Error("only the first matched advisory should be appended")
	}
}

func TestAnalyze_PatternCatalogOrder(t *testing.T) {
	s := scorerWith(0.0, 0.0)
	res := s.Analyze("i think we should um possibly try again? I'm not sure really")

	want := []string{
		defaultPatterns[1].Advisory, // filler words (um)
		defaultPatterns[2].Advisory, // i think
		defaultPatterns[5].Advisory, // qualifiers (possibly)
	}
	if !reflect.DeepEqual(res.PatternMatches, want) {
		t.Errorf("PatternMatches = %v, want catalog order %v", res.PatternMatches, want)
	}
}

func TestAnalyze_ScoreArithmetic(t *testing.T) {
	tests := []struct {
		name         string
		polarity     float64
		subjectivity float64
		text         string
		want         int
	}{
		{
			// 50 +10 (polarity in band) +10 (10 words) +10 (question) = 80
			name:     "balanced question",
			polarity: 0.2,
			text:     "how do you enjoy spending your free weekends these days?",
			want:     80,
		},
		{
			// 50 +5 (polarity > 0.5) +10 (question) -10 (short) = 55
			name:     "short positive question",
			polarity: 0.8,
			text:     "really? great!",
			want:     55,
		},
		{
			// 50 -10 (negative) -10 (short) -5 (cant pattern) = 25
			name:     "short negative with habit",
			polarity: -0.5,
			text:     "i cant do this",
			want:     25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorerWith(tt.polarity, tt.subjectivity).Analyze(tt.text)
			if got.Score != tt.want {
				t.Errorf("Score = %d, want %d", got.Score, tt.want)
			}
		})
	}
}

func TestAnalyze_ScoreAlwaysClamped(t *testing.T) {
	inputs := []string{
		"",
		"sorry sorry i cant never always maybe um uh like you know i think",
		strings.Repeat("terrible ", 50),
		"wonderful? " + strings.Repeat("great day ", 12),
	}
	polarities := []float64{-1, -0.5, 0, 0.5, 1}

	for _, text := range inputs {
		for _, p := range polarities {
			res := scorerWith(p, 0.5).Analyze(text)
			if res.Score < 0 || res.Score > 100 {
				t.Errorf("Score = %d outside [0,100] for polarity=%v text=%q", res.Score, p, text)
			}
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	s := NewScorer()
	const input = "I am sorry but I think maybe I can't do this"

	first := s.Analyze(input)
	for i := 0; i < 10; i++ {
		again := s.Analyze(input)
		if again.Score != first.Score {
			t.Fatalf("run %d Score = %d, want %d", i, again.Score, first.Score)
		}
		if again.Message != first.Message {
			t.Fatalf("run %d Message = %q, want %q", i, again.Message, first.Message)
		}
		if !reflect.DeepEqual(again.PatternMatches, first.PatternMatches) {
			t.Fatalf("run %d PatternMatches = %v, want %v", i, again.PatternMatches, first.PatternMatches)
		}
	}

	// The apology advisory is the first catalog entry this input hits.
	if len(first.PatternMatches) == 0 || first.PatternMatches[0] != defaultPatterns[0].Advisory {
		t.Errorf("first matched advisory = %v, want apology advisory", first.PatternMatches)
	}
}

func TestAnalyze_VaderRanges(t *testing.T) {
	s := NewScorer()
	texts := []string{
		"I love this, it is absolutely wonderful!",
		"This is awful and I hate everything about it.",
		"The meeting is at three on Tuesday.",
	}
	for _, text := range texts {
		res := s.Analyze(text)
		if res.Polarity < -1 || res.Polarity > 1 {
			t.Errorf("Polarity = %v outside [-1,1] for %q", res.Polarity, text)
		}
		if res.Subjectivity < 0 || res.Subjectivity > 1 {
			t.Errorf("Subjectivity = %v outside [0,1] for %q", res.Subjectivity, text)
		}
	}
}

func TestDegraded(t *testing.T) {
	s := NewScorer()
	res := s.Degraded("sorry i cant never do this awful thing")

	if res.Message != adviceAffirming {
		t.Errorf("Message = %q, want affirming default", res.Message)
	}
	if res.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", res.WordCount)
	}
	if len(res.PatternMatches) != 0 {
		t.Error("degraded mode must not run pattern analysis")
	}
	if res.Polarity != 0 || res.Subjectivity != 0 {
		t.Error("degraded mode must not run sentiment analysis")
	}
}

func BenchmarkAnalyze(b *testing.B) {
	s := NewScorer()
	const input = "I think the conversation went well, but maybe I should have asked more questions about their work?"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Analyze(input)
	}
}
