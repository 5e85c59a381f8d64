package fetch_test

import (
	"testing"

	"market-pulse/internal/domain/entity"
	fetchUC "market-pulse/internal/usecase/fetch"
)

func TestKeywords_IsRelevant(t *testing.T) {
	kw := fetchUC.DefaultKeywords().Normalized()

	tests := []struct {
		name  string
		title string
		desc  string
		want  bool
	}{
		{name: "strong keyword alone", title: "SENSEX ends higher", want: true},
		{name: "strong phrase", title: "What moved the Indian stock market today", want: true},
		{name: "financial with Indian context", title: "Tata Motors profit doubles", want: true},
		{name: "context in description", title: "Quarterly earnings beat", desc: "Reliance Industries posts gains", want: true},
		{name: "financial without Indian context", title: "Tech stocks slump on Wall Street", want: false},
		{name: "Indian context without financial", title: "Delhi weather turns cold", want: false},
		{name: "neither", title: "Football results", want: false},
		{name: "case insensitive", title: "nIfTy50 climbs", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kw.IsRelevant(entity.Article{Title: tt.title, Description: tt.desc})
			if got != tt.want {
				t.Errorf("IsRelevant(%q, %q) = %v, want %v", tt.title, tt.desc, got, tt.want)
			}
		})
	}
}

func TestKeywords_Normalized(t *testing.T) {
	kw := fetchUC.Keywords{
		Financial:     []string{" Stock ", ""},
		IndianContext: []string{"MUMBAI"},
		StrongMarket:  nil,
	}.Normalized()

	if len(kw.Financial) != 1 || kw.Financial[0] != "stock" {
		t.Errorf("Financial = %q", kw.Financial)
	}
	if !kw.IsRelevant(entity.Article{Title: "Mumbai stock exchange opens"}) {
		t.Error("expected normalized keywords to match")
	}
}

func TestKeywords_Validate(t *testing.T) {
	if err := fetchUC.DefaultKeywords().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if err := (fetchUC.Keywords{StrongMarket: []string{"sensex"}}).Validate(); err != nil {
		t.Errorf("strong-only should be valid: %v", err)
	}
	if err := (fetchUC.Keywords{Financial: []string{"stock"}}).Validate(); err == nil {
		t.Error("financial-only should be invalid")
	}
}
