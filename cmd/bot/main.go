package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	dg "github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	studybot "github.com/hywlin/studybot-go"
	"github.com/hywlin/studybot-go/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	RepoURL = "https://github.com/hywlin/studybot-go"
	Version = "0.1.0"
)

func main() {
	// logger
	log.SetLevel(log.DebugLevel)
	log.SetReportCaller(true)
	topCtx, topCtxC := context.WithCancel(context.Background())
	initTimeout, initTimeoutC := context.WithTimeout(topCtx, 10*time.Second)

	// config
	cfg, err := studybot.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// db
	log.Info("opening db", "url", cfg.DatabaseURL)
	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("failed database ping", "err", err)
	}
	if err := runMigrations(db); err != nil {
		log.Fatal("failed migration", "err", err)
	}
	defer db.Close() //nolint

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)

	// repos
	timeLogRepo := sqlite.NewTimeLogRepo(dbGetter, *log.Default())
	sessionRepo := sqlite.NewSessionRepo(dbGetter, *log.Default())
	guildCfgRepo := sqlite.NewGuildConfigRepo(dbGetter, *log.Default())
	cutoverStateRepo := sqlite.NewCutoverStateRepo(dbGetter, *log.Default())

	// engine
	clock := studybot.NewClock(studybot.DefaultLocation())
	keywords := studybot.LoadKeywords()
	splitter := newIntervalSplitter(clock, timeLogRepo, tx)
	sessionManager := NewSessionManager(sessionRepo, splitter, tx)
	panicif(sessionManager.RestoreAll(initTimeout))

	// set up discord cl
	cl, err := dg.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	cl.ShouldRetryOnRateLimit = false
	cl.Client = &http.Client{Timeout: (20 * time.Second)}
	cl.UserAgent = fmt.Sprintf("%s (%s, v%s)", cfg.BotName, RepoURL, Version)
	cl.Identify.Intents = dg.IntentsGuilds |
		dg.IntentsGuildVoiceStates |
		dg.IntentsGuildMessages |
		dg.IntentMessageContent |
		dg.IntentsGuildMembers

	// scheduler
	scheduler := newCutoverScheduler(
		clock,
		sessionManager,
		timeLogRepo,
		guildCfgRepo,
		cutoverStateRepo,
		newDiscordAnnouncer(cl),
	)

	// discord event hooks
	router := &commandRouter{
		manager:   sessionManager,
		scheduler: scheduler,
		timeLog:   timeLogRepo,
		guildCfg:  guildCfgRepo,
		clock:     clock,
	}
	cl.AddHandler(func(s *dg.Session, u *dg.VoiceStateUpdate) {
		HandleVoiceStateUpdate(topCtx, sessionManager, s, u)
	})
	cl.AddHandler(func(s *dg.Session, m *dg.MessageCreate) {
		HandleTextMessage(topCtx, sessionManager, guildCfgRepo, keywords, s, m)
	})
	cl.AddHandler(func(s *dg.Session, m *dg.InteractionCreate) {
		router.Handle(topCtx, s, m)
	})

	// open connection
	if err := cl.Open(); err != nil {
		log.Fatal("Error opening connection", "err", err)
	}
	log.Info(cfg.BotName + " running. Press CTRL-C to exit.")

	// boundary cutover loop
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(topCtx)
	}()

	// init done
	initTimeoutC()

	// graceful shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	log.Info("terminating " + cfg.BotName)
	topCtxC()
	shutdownTimeout, shutdownTimeoutC := context.WithTimeout(context.Background(), time.Minute)
	go func() {
		<-schedulerDone
		if err := cl.Close(); err != nil {
			log.Error(err)
		}
		shutdownTimeoutC()
	}()
	<-shutdownTimeout.Done()
	if shutdownTimeout.Err() != context.Canceled {
		log.Error("failed to shut down gracefully", "err", shutdownTimeout.Err())
	}
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func panicif(err error) {
	if err != nil {
		panic(err)
	}
}
