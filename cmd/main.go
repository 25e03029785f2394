package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rolebot/internal/config"
	"rolebot/internal/entities"
	"rolebot/internal/infrastructure"
	httpapi "rolebot/internal/interfaces/http"
	"rolebot/internal/plugins"
	"rolebot/internal/plugins/llm"
	"rolebot/internal/plugins/weather"
	"rolebot/internal/repository"
	"rolebot/internal/usecases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := infrastructure.NewLogger(cfg.Logging.Level)

	db, err := infrastructure.NewSQLiteClient(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	roleRepo := repository.NewRoleRepository(db)
	chatRepo := repository.NewChatRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	settings, err := usecases.NewSettingsManager(settingsRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed settings")
	}

	access := usecases.NewAccessControl(roleRepo, log)
	// First configured admin ID becomes the superadmin, the rest admins.
	for i, id := range cfg.Telegram.AdminIDs {
		role := usecases.RoleAdmin
		if i == 0 {
			role = usecases.RoleSuperadmin
		}
		if err := access.SetRole(id, role); err != nil {
			log.Fatal().Err(err).Int64("user", id).Msg("failed to bootstrap role")
		}
	}

	auth := usecases.NewAuthUsecase(accountRepo, cfg.HTTP.JWTSecret)
	if err := auth.EnsureOperator(cfg.HTTP.DashboardUser, cfg.HTTP.DashboardPass); err != nil {
		log.Fatal().Err(err).Msg("failed to seed dashboard operator")
	}

	tg, err := infrastructure.NewTelegramClient(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	log.Info().Str("bot", tg.Username()).Msg("authorized on telegram")

	pluginReg := plugins.NewRegistry()
	pluginReg.Add(weather.New(cfg.Plugins.WeatherAPIKey))
	llmPlugin := llm.New(infrastructure.NewGeminiClient(cfg.Plugins.GeminiAPIKey))
	pluginReg.Add(llmPlugin)
	for _, name := range cfg.Plugins.Active {
		if err := pluginReg.Activate(name); err != nil {
			log.Warn().Err(err).Str("plugin", name).Msg("plugin activation failed")
		}
	}

	registry := usecases.NewCommandRegistry(log)
	usecases.NewSystemCommands(access, chatRepo, settings, pluginReg, tg, tg.Username(), log).RegisterAll(registry)
	usecases.NewAdminCommands(chatRepo, scheduleRepo, settings, access, tg, log).RegisterAll(registry)
	usecases.NewPluginRouter(registry, pluginReg, access, tg, log).RegisterAll()

	router := usecases.NewMessageRouter(registry, access, chatRepo, tg, llmPlugin, log)

	scheduler := usecases.NewScheduler(scheduleRepo, chatRepo, settings, tg, log)
	scheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	adminHandler := httpapi.NewAdminHandler(auth, settings, chatRepo, scheduleRepo)
	httpapi.SetupRoutes(engine, adminHandler, httpapi.NewMiddleware(cfg.HTTP.JWTSecret))
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("admin API listening")
		if err := engine.Run(cfg.HTTP.Addr); err != nil {
			log.Error().Err(err).Msg("admin API stopped")
		}
	}()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.Bot.GetUpdatesChan(updateConfig)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		tg.Bot.StopReceivingUpdates()
		scheduler.Stop()
		os.Exit(0)
	}()

	log.Info().Msg("bot started")
	// Updates are handled one at a time; handler state never sees two
	// messages concurrently.
	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		router.HandleMessage(entities.Message{
			ChatID:   update.Message.Chat.ID,
			UserID:   update.Message.From.ID,
			Username: update.Message.From.UserName,
			ChatType: update.Message.Chat.Type,
			Text:     update.Message.Text,
		})
	}
}
