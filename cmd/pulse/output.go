package main

import (
	"encoding/json"
	"fmt"
	"time"

	"market-pulse/internal/domain/entity"
	sentimenthttp "market-pulse/internal/handler/http/sentiment"
	"market-pulse/internal/usecase/pipeline"
)

// CycleOutput is the JSON form of one analysis cycle.
type CycleOutput struct {
	CycleID     string   `json:"cycle_id"`
	Fetched     int      `json:"fetched"`
	Analyzed    int      `json:"analyzed"`
	Failed      int      `json:"failed"`
	Cached      int      `json:"cached"`
	CacheFailed int      `json:"cache_failed"`
	Vectorized  int      `json:"vectorized"`
	AlertsSent  int      `json:"alerts_sent"`
	DurationMS  int64    `json:"duration_ms"`
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
	Neutral     []string `json:"neutral"`
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func (c *cli) printCycle(s *pipeline.CycleStats) error {
	if c.jsonOut {
		return c.printJSON(CycleOutput{
			CycleID:     s.CycleID,
			Fetched:     s.Fetched,
			Analyzed:    s.Summary.Analyzed,
			Failed:      s.Summary.Failed,
			Cached:      s.Cached,
			CacheFailed: s.CacheFailed,
			Vectorized:  s.Vectorized,
			AlertsSent:  s.AlertsSent,
			DurationMS:  s.Duration.Milliseconds(),
			Positive:    nonNil(s.Summary.Positive),
			Negative:    nonNil(s.Summary.Negative),
			Neutral:     nonNil(s.Summary.Neutral),
		})
	}

	fmt.Fprintf(c.out, "Cycle %s\n", s.CycleID)
	fmt.Fprintf(c.out, "  fetched:    %d\n", s.Fetched)
	fmt.Fprintf(c.out, "  analyzed:   %d (failed %d)\n", s.Summary.Analyzed, s.Summary.Failed)
	fmt.Fprintf(c.out, "  cached:     %d (failed %d)\n", s.Cached, s.CacheFailed)
	fmt.Fprintf(c.out, "  vectorized: %d\n", s.Vectorized)
	fmt.Fprintf(c.out, "  alerts:     %d\n", s.AlertsSent)
	fmt.Fprintf(c.out, "  duration:   %s\n", s.Duration.Round(time.Millisecond))
	printTitles(c, "Positive", s.Summary.Positive)
	printTitles(c, "Negative", s.Summary.Negative)
	printTitles(c, "Neutral", s.Summary.Neutral)
	return nil
}

func printTitles(c *cli, heading string, titles []string) {
	if len(titles) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n%s (%d)\n", heading, len(titles))
	for _, t := range titles {
		fmt.Fprintf(c.out, "  - %s\n", t)
	}
}

func (c *cli) printResults(results []entity.SentimentResult) error {
	if c.jsonOut {
		return c.printJSON(sentimenthttp.ToResultDTOs(results))
	}
	for i, r := range results {
		fmt.Fprintf(c.out, "%d. [%s] %s\n", i+1, r.Label, r.Article.Title)
		fmt.Fprintf(c.out, "   score %+.3f  confidence %.0f%%", r.Score, r.Confidence*100)
		if r.ContextUsed {
			fmt.Fprint(c.out, "  (with similar-news context)")
		}
		fmt.Fprintln(c.out)
		if r.Article.URL != "" {
			fmt.Fprintf(c.out, "   %s\n", r.Article.URL)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
