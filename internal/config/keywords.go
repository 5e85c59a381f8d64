package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"market-pulse/internal/usecase/fetch"
)

// keywordFile is the layout of KEYWORDS_FILE:
//
//	keywords:
//	  financial: [stock, market, ...]
//	  indian_context: [india, rbi, ...]
//	  strong_market: [sensex, nifty, ...]
//
// Lists left out keep their built-in values.
type keywordFile struct {
	Keywords fetch.Keywords `yaml:"keywords"`
}

// LoadKeywords reads the relevance keyword lists from a YAML file.
// The path comes from the operator's environment.
func LoadKeywords(path string) (fetch.Keywords, error) {
	// #nosec G304 -- path is operator configuration, not request input
	data, err := os.ReadFile(path)
	if err != nil {
		return fetch.Keywords{}, fmt.Errorf("LoadKeywords: %w", err)
	}

	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fetch.Keywords{}, fmt.Errorf("LoadKeywords: parse %s: %w", path, err)
	}

	kw := fetch.DefaultKeywords()
	if len(f.Keywords.Financial) > 0 {
		kw.Financial = f.Keywords.Financial
	}
	if len(f.Keywords.IndianContext) > 0 {
		kw.IndianContext = f.Keywords.IndianContext
	}
	if len(f.Keywords.StrongMarket) > 0 {
		kw.StrongMarket = f.Keywords.StrongMarket
	}
	if err := kw.Validate(); err != nil {
		return fetch.Keywords{}, fmt.Errorf("LoadKeywords: %w", err)
	}
	return kw, nil
}
