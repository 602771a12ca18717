package classifier_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/lostfound/internal/classifier"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		preds     []classifier.Prediction
		limit     int
		wantLabel string
		wantConf  float64
		wantOrder []string
	}{
		{
			name:      "empty yields unknown",
			preds:     nil,
			limit:     5,
			wantLabel: classifier.UnknownLabel,
			wantConf:  0,
			wantOrder: []string{},
		},
		{
			name: "sorted descending",
			preds: []classifier.Prediction{
				{Label: "umbrella", Confidence: 12},
				{Label: "backpack", Confidence: 81.5},
				{Label: "suitcase", Confidence: 40},
			},
			limit:     5,
			wantLabel: "backpack",
			wantConf:  81.5,
			wantOrder: []string{"backpack", "suitcase", "umbrella"},
		},
		{
			name: "truncated to limit",
			preds: []classifier.Prediction{
				{Label: "a", Confidence: 10},
				{Label: "b", Confidence: 20},
				{Label: "c", Confidence: 30},
			},
			limit:     2,
			wantLabel: "c",
			wantConf:  30,
			wantOrder: []string{"c", "b"},
		},
		{
			name: "confidence clamped",
			preds: []classifier.Prediction{
				{Label: "wallet", Confidence: 140},
				{Label: "purse", Confidence: -3},
			},
			limit:     5,
			wantLabel: "wallet",
			wantConf:  100,
			wantOrder: []string{"wallet", "purse"},
		},
		{
			name: "blank labels dropped",
			preds: []classifier.Prediction{
				{Label: "", Confidence: 99},
				{Label: "keys", Confidence: 60},
			},
			limit:     5,
			wantLabel: "keys",
			wantConf:  60,
			wantOrder: []string{"keys"},
		},
		{
			name: "zero limit uses default",
			preds: []classifier.Prediction{
				{Label: "a", Confidence: 6}, {Label: "b", Confidence: 5}, {Label: "c", Confidence: 4},
				{Label: "d", Confidence: 3}, {Label: "e", Confidence: 2}, {Label: "f", Confidence: 1},
			},
			limit:     0,
			wantLabel: "a",
			wantConf:  6,
			wantOrder: []string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Summarize(tt.preds, tt.limit)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}

			order := make([]string, len(got.Ranked))
			for i, p := range got.Ranked {
				order[i] = p.Label
			}
			if !reflect.DeepEqual(order, tt.wantOrder) {
				t.Errorf("order = %v, want %v", order, tt.wantOrder)
			}
			if len(got.Display) != len(got.Ranked) {
				t.Errorf("display has %d entries, ranked has %d", len(got.Display), len(got.Ranked))
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	got := classifier.Display([]classifier.Prediction{
		{Label: "backpack", Confidence: 87.5},
		{Label: "tote bag", Confidence: 3.1},
	})
	want := []string{"backpack: 87.50%", "tote bag: 3.10%"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Display = %v, want %v", got, want)
	}
}
