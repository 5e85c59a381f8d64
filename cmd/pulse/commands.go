package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"market-pulse/internal/domain/entity"
	sentimenthttp "market-pulse/internal/handler/http/sentiment"
	"market-pulse/internal/infra/notifier"
	"market-pulse/internal/usecase/report"
)

func (c *cli) onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one analysis cycle and exit",
		Long:  "Fetch news, score every relevant article, update the cache and send alerts for high-confidence results.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			stats, err := c.app.Pipeline.RunCycle(ctx)
			if stats != nil {
				if perr := c.printCycle(stats); perr != nil {
					return perr
				}
			}
			return err
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var send bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print today's digest",
		Long:  "Build the digest of articles processed since local midnight. With --send the digest is also delivered to the configured channels.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			digest, err := c.app.Reports.BuildDailyReport(ctx, time.Now())
			if errors.Is(err, report.ErrNoArticles) {
				fmt.Fprintln(c.out, "No articles processed today.")
				return nil
			}
			if err != nil {
				return err
			}

			if c.jsonOut {
				if err := c.printJSON(sentimenthttp.NewReportResponse(digest)); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(c.out, notifier.RenderDigestMarkdown(digest))
			}

			if send {
				return c.app.Notify.SendDigest(ctx, digest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "deliver the digest to the configured channels")
	return cmd
}

func (c *cli) scoreCmd() *cobra.Command {
	var (
		description string
		save        bool
	)
	cmd := &cobra.Command{
		Use:   "score [headline]",
		Short: "Score a single headline",
		Example: `  pulse score "RELIANCE stock surges 10% on strong earnings"
  pulse score "Rupee slumps" --description "RBI intervenes" --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			r, err := c.app.Analyzer.AnalyzeArticle(ctx, entity.Article{
				Title:       strings.TrimSpace(args[0]),
				Description: strings.TrimSpace(description),
				Source:      "cli",
				PublishedAt: time.Now(),
			})
			if err != nil {
				return err
			}
			if save {
				if err := c.app.Cache.Upsert(ctx, entity.NewCachedSentiment(r)); err != nil {
					return fmt.Errorf("save result: %w", err)
				}
			}
			return c.printResults([]entity.SentimentResult{*r})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional article description")
	cmd.Flags().BoolVar(&save, "save", false, "store the result in the cache")
	return cmd
}

func (c *cli) topCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:       "top [label]",
		Short:     "List the strongest cached results for a label",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"positive", "negative", "neutral"},
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := entity.ParseSentimentLabel(args[0])
			if err != nil {
				return err
			}
			if limit < 1 || limit > 100 {
				return fmt.Errorf("limit must be between 1 and 100, got %d", limit)
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			results, err := c.app.Reports.Top(ctx, label, limit)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(sentimenthttp.TopResponse{
					Label:   string(label),
					Limit:   limit,
					Results: sentimenthttp.ToResultDTOs(results),
				})
			}
			if len(results) == 0 {
				fmt.Fprintf(c.out, "No %s results cached.\n", strings.ToLower(string(label)))
				return nil
			}
			return c.printResults(results)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of results (1-100)")
	return cmd
}

func (c *cli) selfTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Score a reference article to check the classifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			r, err := c.app.Pipeline.SelfTest(ctx)
			if err != nil {
				return err
			}
			return c.printResults([]entity.SentimentResult{*r})
		},
	}
}
