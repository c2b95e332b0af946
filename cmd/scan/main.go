package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"osrs-toolkit/pkg/combat"
	"osrs-toolkit/pkg/config"
	"osrs-toolkit/pkg/database"
	"osrs-toolkit/pkg/gear"
	"osrs-toolkit/pkg/ge"
	"osrs-toolkit/pkg/hiscores"
	"osrs-toolkit/pkg/llm"
	"osrs-toolkit/pkg/logging"
	"osrs-toolkit/pkg/market"
	"osrs-toolkit/pkg/report"
	"osrs-toolkit/pkg/storage"
)

const VERSION = "0.1.0"

var (
	configPath = flag.String("config", "config.yml", "Path to configuration file")
	jobName    = flag.String("job", "", "Run a single named job preset (default: all enabled jobs)")
	strategy   = flag.String("strategy", "", "Run an ad-hoc scan with this strategy (flip or alch) instead of presets")
	budget     = flag.Int("budget", 0, "Budget in gp for ad-hoc scans (0 = unbounded)")
	risk       = flag.String("risk", "medium", "Risk tolerance for ad-hoc scans (low, medium, high)")
	members    = flag.Bool("members", true, "Include members-only items in ad-hoc scans")
	search     = flag.String("search", "", "Name filter for ad-hoc scans")
	results    = flag.Int("results", 10, "Number of results for ad-hoc scans")
	last       = flag.Bool("last", false, "Show the most recent persisted run for -job instead of scanning")
	bisBudget  = flag.Int("bis", 0, "Compute a best-in-slot loadout for this budget instead of scanning")
	bisStyle   = flag.String("style", "melee", "Combat style for -bis (melee, ranged, magic)")
	player     = flag.String("player", "", "Hiscores player name for -bis requirement gating")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfigForScan(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithComponent("scan").WithField("version", VERSION).Info("starting one-shot scan")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *last {
		if err := runLast(ctx); err != nil {
			logger.WithStorage().WithError(err).Fatal("Reading persisted run failed")
		}
		return
	}

	if *bisBudget > 0 {
		if err := runBis(ctx, cfg, logger); err != nil {
			logger.WithGear().WithError(err).Fatal("Loadout optimization failed")
		}
		return
	}

	priceSource := ge.NewCachedSource(ge.NewClient(cfg.Feeds.UserAgent))
	analyzer := market.NewAnalyzer(priceSource, cfg.Market.Tuning(), logger.WithMarket())
	formatter := report.NewFormatter()

	// Ad-hoc scan bypasses the job presets entirely
	if *strategy != "" {
		runAdHoc(ctx, analyzer, formatter)
		return
	}

	var store report.Store
	if dbCfg, ok := database.ConfigFromEnv(); ok {
		db, err := database.Connect(ctx, dbCfg)
		if err != nil {
			logger.WithStorage().WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := database.MigrateUp(dbCfg.DatabaseURL, "migrations"); err != nil {
			logger.WithStorage().WithError(err).Fatal("Failed to run database migrations")
		}
		store = storage.NewRepository(db.Pool)
	}

	var llmClient *llm.Client
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.GetTimeout())
		if err := llmClient.CheckConnection(ctx); err != nil {
			logger.WithLLM().WithError(err).Warn("LLM unreachable, commentary disabled")
			llmClient = nil
		}
	}

	executor := report.NewExecutor(cfg, logger, analyzer, llmClient, store)

	jobs := cfg.EnabledJobs()
	if *jobName != "" {
		job := cfg.GetJobByName(*jobName)
		if job == nil {
			fmt.Fprintf(os.Stderr, "Unknown job %q\n", *jobName)
			os.Exit(1)
		}
		jobs = []config.JobConfig{*job}
	}

	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "No enabled jobs configured. Use -strategy for an ad-hoc scan.")
		os.Exit(1)
	}

	exitCode := 0
	for _, job := range jobs {
		result, err := executor.Run(ctx, job)
		if err != nil {
			exitCode = 1
		}
		fmt.Print(formatter.FormatForTerminal(result))
	}
	os.Exit(exitCode)
}

// runLast renders the most recent persisted run for -job without touching
// the live feeds.
func runLast(ctx context.Context) error {
	if *jobName == "" {
		return fmt.Errorf("-last requires -job")
	}

	dbCfg, ok := database.ConfigFromEnv()
	if !ok {
		return fmt.Errorf("DATABASE_URL must be set to read persisted runs")
	}

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	repo := storage.NewRepository(db.Pool)

	run, err := repo.LatestRun(ctx, *jobName)
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Printf("No persisted runs for %s.\n", *jobName)
		return nil
	}

	items, err := repo.TopItems(ctx, run.ID, *results)
	if err != nil {
		return err
	}
	total, err := repo.RunCount(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nLast %s run for %s (%s, %d runs persisted)\n", run.Strategy, run.JobName,
		run.CreatedAt.Format(time.RFC3339), total)
	fmt.Println(run.Summary)
	fmt.Println()
	fmt.Print(report.NewFormatter().FormatRankedList(&market.Report{Items: items}))
	return nil
}

func runAdHoc(ctx context.Context, analyzer *market.Analyzer, formatter *report.Formatter) {
	settings := market.Settings{
		Strategy:    market.Strategy(*strategy),
		BudgetGP:    *budget,
		Risk:        market.Risk(*risk),
		Membership:  market.MembershipAll,
		NameFilter:  *search,
		ResultCount: *results,
	}
	if !*members {
		settings.Membership = market.MembershipF2P
	}

	rep, err := analyzer.Analyze(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(rep.Summary)
	fmt.Print(formatter.FormatRankedList(rep))
}

func runBis(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	if cfg.Feeds.EquipmentURL == "" {
		return fmt.Errorf("feeds.equipment_url must be configured for loadout optimization")
	}

	catalog := gear.NewCachedCatalog(gear.NewClient(cfg.Feeds.EquipmentURL, cfg.Feeds.UserAgent))
	optimizer := gear.NewOptimizer(catalog, logger.WithGear())

	req := gear.Request{
		Style:          combat.StyleMelee,
		AttackType:     combat.AttackSlash,
		Focus:          gear.FocusOffense,
		BudgetGP:       *bisBudget,
		MembersAllowed: *members,
	}
	switch *bisStyle {
	case "melee":
	case "ranged":
		req.Style = combat.StyleRanged
		req.AttackType = combat.AttackRanged
	case "magic":
		req.Style = combat.StyleMagic
		req.AttackType = combat.AttackMagic
	default:
		return fmt.Errorf("unknown style %q", *bisStyle)
	}

	if *player != "" {
		client := hiscores.NewClient(cfg.Feeds.UserAgent)
		if cfg.Feeds.HiscoresBaseURL != "" {
			client = hiscores.NewClientWithBaseURL(cfg.Feeds.HiscoresBaseURL, cfg.Feeds.UserAgent)
		}
		stats, err := client.LookupOptional(ctx, *player)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", *player, err)
		}
		if stats == nil {
			logger.WithGear().WithField("player", *player).Warn("Player not on hiscores, assuming maxed levels")
		}
		req.Stats = stats
	}

	loadout, err := optimizer.Optimize(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Best %s loadout for %s budget:\n\n", req.Style, report.FormatGP(req.BudgetGP))
	for _, slot := range gear.Slots {
		item := loadout.Items[slot]
		if item == nil {
			continue
		}
		price := 0
		if item.Price != nil {
			price = *item.Price
		}
		fmt.Printf("  %-8s %-35s %s\n", slot, item.Name, report.FormatGP(price))
	}
	fmt.Printf("\nTotal cost %s, %s remaining. Max hit %d.\n",
		report.FormatGP(loadout.TotalCost), report.FormatGP(loadout.RemainingBudget), loadout.MaxHit)

	return nil
}
