package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"day-planner/internal/bot"
	"day-planner/internal/calendar"
	"day-planner/internal/config"
	"day-planner/internal/repository"
	"day-planner/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("day planner stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cal, err := calendar.New(cfg.Location, cfg.DayStartHour)
	if err != nil {
		return err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db, cal)
	templateRepo := repository.NewTemplateRepository(db)

	taskSvc := service.NewTaskService(taskRepo, cal, logger)
	collector := service.NewRolloverCollector(taskRepo, templateRepo, cal)
	people := service.NewPeopleService(repository.NewPersonRepository(db), cal, logger)
	svc := bot.Services{
		Tasks:       taskSvc,
		Templates:   service.NewTemplateService(templateRepo, cal, logger),
		Advancement: service.NewAdvancementService(collector, taskSvc, templateRepo, cal, logger),
		Reminders:   service.NewReminderService(taskSvc, collector, people, cal),
		People:      people,
	}

	telegramBot, err := bot.New(cfg.TelegramToken, cfg.OwnerID, svc, cal, logger)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(cfg.Location, logger)
	if cfg.MorningNudge != "" {
		if _, err := scheduler.ScheduleDaily("morning-nudge", cfg.MorningNudge, telegramBot.SendMorningNudge); err != nil {
			return err
		}
	}
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval("report", cfg.ReportInterval, telegramBot.SendDailyReports); err != nil {
			return err
		}
	}

	logger.Info("day planner started",
		"timezone", cfg.Location.String(),
		"day_start_hour", cfg.DayStartHour,
		"jobs", scheduler.Entries(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Start(gctx)
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
