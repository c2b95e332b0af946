package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"osrs-toolkit/pkg/config"
	"osrs-toolkit/pkg/database"
	"osrs-toolkit/pkg/discord"
	"osrs-toolkit/pkg/gear"
	"osrs-toolkit/pkg/ge"
	"osrs-toolkit/pkg/hiscores"
	"osrs-toolkit/pkg/llm"
	"osrs-toolkit/pkg/logging"
	"osrs-toolkit/pkg/market"
	"osrs-toolkit/pkg/report"
	"osrs-toolkit/pkg/scheduler"
	"osrs-toolkit/pkg/storage"
)

const VERSION = "0.1.0"

const defaultEquipmentURL = "https://raw.githubusercontent.com/osrsbox/osrsbox-db/master/docs/items-summary.json"

func main() {
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithComponent("main").WithField("version", VERSION).Info("starting_ge_toolkit_bot")

	// Upstream feeds
	priceSource := ge.NewCachedSource(ge.NewClient(cfg.Feeds.UserAgent))
	analyzer := market.NewAnalyzer(priceSource, cfg.Market.Tuning(), logger.WithMarket())

	equipmentURL := cfg.Feeds.EquipmentURL
	if equipmentURL == "" {
		equipmentURL = defaultEquipmentURL
	}
	catalog := gear.NewCachedCatalog(gear.NewClient(equipmentURL, cfg.Feeds.UserAgent))
	optimizer := gear.NewOptimizer(catalog, logger.WithGear())

	hiscoresClient := hiscores.NewClient(cfg.Feeds.UserAgent)
	if cfg.Feeds.HiscoresBaseURL != "" {
		hiscoresClient = hiscores.NewClientWithBaseURL(cfg.Feeds.HiscoresBaseURL, cfg.Feeds.UserAgent)
	}

	// Optional persistence, enabled by DATABASE_URL
	var store report.Store
	var db *database.DB
	if dbCfg, ok := database.ConfigFromEnv(); ok {
		connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err = database.Connect(connectCtx, dbCfg)
		cancel()
		if err != nil {
			logger.WithStorage().WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := database.MigrateUp(dbCfg.DatabaseURL, "migrations"); err != nil {
			logger.WithStorage().WithError(err).Fatal("Failed to run database migrations")
		}

		store = storage.NewRepository(db.Pool)
		logger.WithStorage().Info("Analysis run persistence enabled")
	} else {
		logger.WithComponent("main").Info("DATABASE_URL not set, running without persistence")
	}

	// Optional commentary model
	var llmClient *llm.Client
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.GetTimeout())

		checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := llmClient.CheckConnection(checkCtx)
		cancel()
		if err != nil {
			logger.WithLLM().WithError(err).Warn("LLM unreachable, commentary disabled")
			llmClient = nil
		}
	}

	executor := report.NewExecutor(cfg, logger, analyzer, llmClient, store)

	discordBot, err := discord.NewBot(&cfg.Discord, logger, analyzer, optimizer, hiscoresClient)
	if err != nil {
		logger.WithDiscord().WithError(err).Fatal("Failed to create Discord bot")
	}

	botCtx, botCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer botCancel()

	if err := discordBot.Start(botCtx); err != nil {
		logger.WithDiscord().WithError(err).Fatal("Failed to start Discord bot")
	}

	if _, err := discordBot.SendMessage(fmt.Sprintf("**ge-toolkit v%s** has logged in. Try `!ge help`.", VERSION)); err != nil {
		logger.WithDiscord().WithError(err).Warn("Failed to send startup message")
	}

	botExecutor := &BotExecutor{
		executor:   executor,
		discordBot: discordBot,
		logger:     logger,
	}

	sched := scheduler.NewScheduler(logger, botExecutor)
	if err := sched.LoadJobs(cfg); err != nil {
		logger.WithComponent("scheduler").WithError(err).Fatal("Failed to load job schedules")
	}
	sched.Start()

	logger.WithComponent("main").WithFields(map[string]interface{}{
		"jobs_loaded":         len(cfg.Jobs),
		"schedules_active":    len(cfg.Schedules),
		"persistence_enabled": store != nil,
		"commentary_enabled":  llmClient != nil,
	}).Info("ge-toolkit fully initialized")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.WithComponent("main").Info("Shutdown signal received, gracefully stopping...")

	sched.Stop()

	if _, err := discordBot.SendMessage("**ge-toolkit** is logging out."); err != nil {
		logger.WithDiscord().WithError(err).Warn("Failed to send shutdown message")
	}
	time.Sleep(2 * time.Second)

	if err := discordBot.Stop(); err != nil {
		logger.WithDiscord().WithError(err).Error("Error stopping Discord bot")
	}

	logger.WithComponent("main").Info("ge-toolkit shutdown complete")
}

// BotExecutor runs report jobs and posts their results to Discord
type BotExecutor struct {
	executor   *report.Executor
	discordBot *discord.Bot
	logger     *logging.Logger
}

// ExecuteJob runs a job and posts the result to Discord
func (be *BotExecutor) ExecuteJob(ctx context.Context, job config.JobConfig) error {
	result, err := be.executor.Run(ctx, job)
	if err != nil {
		if sendErr := be.discordBot.SendError(job.Name, err); sendErr != nil {
			be.logger.WithDiscord().WithError(sendErr).Error("Failed to send error message to Discord")
		}
		return err
	}

	if err := be.discordBot.SendResult(result); err != nil {
		be.logger.WithDiscord().WithError(err).Error("Failed to send job results to Discord")
		return err
	}
	return nil
}
