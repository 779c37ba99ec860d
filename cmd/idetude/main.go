package main

import (
	"context"
	"database/sql"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"idetude/internal/app"
	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"
	"idetude/internal/domain/records"
	"idetude/internal/domain/resource"
	"idetude/internal/domain/teacher"
	"idetude/internal/domain/telegram"
	"idetude/internal/infra/config"
	idb "idetude/internal/infra/database"
	"idetude/internal/infra/httpapi"
	"idetude/internal/infra/logger"
	"idetude/internal/infra/memory"
	"idetude/internal/infra/scheduler"
	itelegram "idetude/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	teachers     teacher.Repository
	assignments  assignment.Repository
	competencies competency.Repository
	resources    resource.Repository
	absences     records.Store[*records.Absence]
	grades       records.Store[*records.Grade]
	fees         records.Store[*records.SchoolFee]
	payments     records.Store[*records.Payment]
	events       records.Store[*records.SchoolEvent]
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		teachers:     idb.NewPostgresTeacherRepository(db),
		assignments:  idb.NewPostgresAssignmentRepository(db),
		competencies: idb.NewPostgresCompetencyRepository(db),
		resources:    idb.NewPostgresResourceRepository(db),
		absences:     idb.NewPostgresAbsenceStore(db),
		grades:       idb.NewPostgresGradeStore(db),
		fees:         idb.NewPostgresFeeStore(db),
		payments:     idb.NewPostgresPaymentStore(db),
		events:       idb.NewPostgresEventStore(db),
	}
}

func memoryStores() *stores {
	db := memory.Open()
	return &stores{
		teachers:     memory.NewTeacherRepository(db),
		assignments:  memory.NewAssignmentRepository(db),
		competencies: memory.NewCompetencyRepository(db),
		resources:    memory.NewResourceRepository(db),
		absences:     memory.NewRecordStore(memory.Copy[records.Absence]),
		grades:       memory.NewRecordStore(memory.Copy[records.Grade]),
		fees:         memory.NewRecordStore(memory.Copy[records.SchoolFee]),
		payments:     memory.NewRecordStore(memory.Copy[records.Payment]),
		events:       memory.NewRecordStore(memory.CloneEvent),
	}
}

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Could not load application configuration")
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"storage":     cfg.Storage,
		"school_year": cfg.SchoolYear,
		"http_addr":   cfg.HTTPAddr,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *stores
	switch cfg.Storage {
	case config.StorageMemory:
		if *migrateOnly {
			mainLogger.Fatal("-migrate needs STORAGE=postgres")
		}
		st = memoryStores()
		mainLogger.Warn("Using in-memory storage, data is lost on exit")
	default:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		if err := idb.Migrate(ctx, db); err != nil {
			mainLogger.WithError(err).Fatal("Could not apply migrations")
		}
		mainLogger.Info("Database ready")
		if *migrateOnly {
			return
		}
		st = postgresStores(db)
	}

	var (
		bot        *telebot.Bot
		chatClient telegram.Client
	)
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := logger.Component("telebot").WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler failed")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		chatClient = itelegram.NewTelebotAdapter(bot)
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, chat bot disabled")
	}

	notifier := app.NewChatNotifier(st.teachers, chatClient, cfg.AdminTelegramID, logger.Component("notifier"))
	adminService := app.NewAdminService(st.teachers, cfg.AdminTelegramID)
	assignmentService := app.NewAssignmentService(st.assignments, notifier, cfg.SchoolYear, logger.Component("assignments"))
	competencyService := app.NewCompetencyService(st.competencies, cfg.MaxLevel, logger.Component("competencies"))
	progressService := app.NewProgressService(st.competencies, st.resources)
	resourceService := app.NewResourceService(st.resources, logger.Component("resources"))
	auditService := app.NewAuditService(st.competencies, st.assignments, notifier, logger.Component("audit"))

	recordsLogger := logger.Component("records")
	server := httpapi.New(httpapi.Services{
		Assignments:  assignmentService,
		Competencies: competencyService,
		Progress:     progressService,
		Resources:    resourceService,
		Absences:     app.NewRecordService("absence", st.absences, recordsLogger),
		Grades:       app.NewRecordService("grade", st.grades, recordsLogger),
		Fees:         app.NewRecordService("school_fee", st.fees, recordsLogger),
		Payments:     app.NewRecordService("payment", st.payments, recordsLogger),
		Events:       app.NewRecordService("school_event", st.events, recordsLogger),
	}, logger.Component("http"))

	auditScheduler := scheduler.NewLedgerAuditScheduler(auditService, logger.Component("scheduler"), cfg.CronSpecLedgerAudit)
	if err := auditScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	if bot != nil {
		botLogger := logger.Component("bot")
		itelegram.RegisterBotCommands(bot, adminService, botLogger)
		itelegram.RegisterAdminHandlers(bot, adminService, assignmentService, botLogger)
		itelegram.RegisterTeacherHandlers(bot, itelegram.TeacherServices{
			Admin:        adminService,
			Assignments:  assignmentService,
			Competencies: competencyService,
			Progress:     progressService,
			Resources:    resourceService,
		}, botLogger)
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.Listen(cfg.HTTPAddr); err != nil {
			mainLogger.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")

	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	auditScheduler.Stop()
	mainLogger.Info("Application shut down gracefully")
}
