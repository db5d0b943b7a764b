package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsbrief/internal/briefing"
	"github.com/seenimoa/newsbrief/internal/config"
	"github.com/seenimoa/newsbrief/internal/news"
	"github.com/seenimoa/newsbrief/pkg/utils"
)

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and, with --check, probe the services",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  newsbrief: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		loc, _ := utils.LoadLocation(cfg.Newsletter.Timezone)
		fmt.Printf("  Time:          %s (%s)\n", utils.FormatDateTime(time.Now().In(loc)), loc)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News:          %s (page size %d, %d day window)\n", cfg.News.Provider, cfg.News.PageSize, cfg.News.Days)
		fmt.Printf("    LLM Provider:  %s (model: %s)\n", cfg.LLM.Primary, utils.FirstNonEmpty(cfg.LLM.Model, "default"))
		if len(cfg.LLM.Fallbacks) > 0 {
			fmt.Printf("    LLM Fallbacks: %v\n", cfg.LLM.Fallbacks)
		}
		fmt.Printf("    Mail:          %s %s -> %s\n", cfg.Mail.Transport, cfg.Mail.Sender, cfg.Mail.Recipient)
		if cfg.Mail.Transport == config.TransportSMTP {
			fmt.Printf("    SMTP Server:   %s:%d\n", cfg.Mail.SMTPHost, cfg.Mail.SMTPPort)
		}
		fmt.Printf("    Topics:        %v (max %d articles)\n", cfg.Newsletter.Topics, cfg.Newsletter.MaxArticles)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Println()
			fmt.Println("  Problems:")
			fmt.Printf("    %s\n", err)
		} else if check {
			fmt.Println()
			fmt.Println("  Connectivity:")
			runChecks(cmd.Context())
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("check", false, "ping the news service and LLM providers")
}

type probe struct {
	name string
	err  error
}

// runChecks probes the news backend and every LLM provider concurrently.
func runChecks(ctx context.Context) {
	c, err := briefing.NewFromConfig(ctx, cfg, briefing.Options{Logger: log})
	if err != nil {
		fmt.Printf("    ❌ %s\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var (
		newsErr error
		llmErrs map[string]error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, newsErr = c.Searcher.Search(gctx, news.Query{
			Term:     cfg.Newsletter.Topics[0],
			From:     utils.DaysAgo(time.Now(), cfg.News.Days),
			Language: cfg.News.Language,
			PageSize: 1,
		})
		return nil
	})
	g.Go(func() error {
		llmErrs = c.Router.HealthCheck(gctx)
		return nil
	})
	_ = g.Wait()

	probes := []probe{{name: "news/" + c.Searcher.Name(), err: newsErr}}
	names := make([]string, 0, len(llmErrs))
	for name := range llmErrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		probes = append(probes, probe{name: "llm/" + name, err: llmErrs[name]})
	}

	for _, p := range probes {
		if p.err != nil {
			fmt.Printf("    %-25s ❌ %s\n", p.name+":", p.err)
			continue
		}
		fmt.Printf("    %-25s ✅ ok\n", p.name+":")
	}
}
