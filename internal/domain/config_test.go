package domain

import (
	"testing"
	"time"
)

func TestSearchConfig_WithDefaults_Zero(t *testing.T) {
	got := SearchConfig{}.WithDefaults()
	if got != DefaultSearchConfig() {
		t.Errorf("zero config = %+v, want defaults", got)
	}
}

func TestSearchConfig_WithDefaults_KeepsSetFields(t *testing.T) {
	got := SearchConfig{LexicalWeight: 1, MaxResults: 10, AnswerTimeout: time.Second}.WithDefaults()

	if got.LexicalWeight != 1 || got.SemanticWeight != 0 {
		t.Errorf("weights = %v/%v, want 1/0", got.LexicalWeight, got.SemanticWeight)
	}
	if got.MaxResults != 10 || got.AnswerTimeout != time.Second {
		t.Errorf("overridden fields lost: %+v", got)
	}
	if got.RequestTimeout != DefaultSearchConfig().RequestTimeout {
		t.Errorf("RequestTimeout = %v, want default", got.RequestTimeout)
	}
}

func TestSearchConfig_Validate(t *testing.T) {
	if err := DefaultSearchConfig().Validate(); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
	if err := (SearchConfig{LexicalWeight: -0.1, SemanticWeight: 1}).Validate(); err == nil {
		t.Error("expected error for a negative weight")
	}
}
