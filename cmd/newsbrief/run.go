package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newsbrief/internal/briefing"
	"github.com/seenimoa/newsbrief/internal/config"
)

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, summarize and send today's briefing",
	Long: `Fetch recent articles for every configured topic, summarize up to
newsletter.max_articles of them and email the briefing.

Search and summarization failures are logged and skipped. A delivery
failure is logged too; the command still exits 0 so a scheduler does
not retry and send the briefing twice.

Examples:
  newsbrief run
  newsbrief run --dry-run
  newsbrief run --topics golang,rust --per-topic 3`,
	RunE: runBriefing,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "print the newsletter instead of sending it")
	cmd.Flags().StringSlice("topics", nil, "comma-separated topics overriding newsletter.topics")
	cmd.Flags().Int("per-topic", 0, "articles requested per topic (default: news.page_size)")
}

func runBriefing(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	perTopic, _ := cmd.Flags().GetInt("per-topic")

	applyTopicsFlag(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	ctx := cmd.Context()
	c, err := briefing.NewFromConfig(ctx, cfg, briefing.Options{
		Topics:   cfg.Newsletter.Topics,
		PerTopic: perTopic,
		DryRun:   dryRun,
		Output:   cmd.OutOrStdout(),
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	log.Info("starting briefing",
		slog.Any("topics", cfg.Newsletter.Topics),
		slog.String("llm", c.Router.Name()),
		slog.String("news", c.Searcher.Name()),
		slog.Bool("dry_run", dryRun),
	)

	report := c.Pipeline.Run(ctx)

	attrs := []any{
		slog.Int("fetched", report.Fetched),
		slog.Int("included", len(report.Newsletter.Entries)),
		slog.Int("fallbacks", report.Fallbacks()),
		slog.Int("failed_topics", len(report.FailedTopics())),
		slog.Bool("sent", report.Sent),
		slog.Duration("duration", report.Duration),
	}
	if report.Err != nil || report.SendErr != nil {
		log.Warn("briefing finished with errors", attrs...)
	} else {
		log.Info("briefing finished", attrs...)
	}
	return nil
}

// applyTopicsFlag overrides c's topics when --topics was given.
func applyTopicsFlag(cmd *cobra.Command, c *config.Config) {
	if topics, _ := cmd.Flags().GetStringSlice("topics"); len(topics) > 0 {
		c.SetTopics(topics)
	}
}
