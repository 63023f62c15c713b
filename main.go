package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	echoserver "github.com/sumaro2101/EasyLibrary/app/echoServer"
	authctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/auth"
	catalogctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/catalog"
	extensionctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/extension"
	orderctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/order"
	userctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/user"
	"github.com/sumaro2101/EasyLibrary/config"
	"github.com/sumaro2101/EasyLibrary/migrations"
	catalogrepo "github.com/sumaro2101/EasyLibrary/repository/catalog"
	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
	taskrepo "github.com/sumaro2101/EasyLibrary/repository/task"
	userrepo "github.com/sumaro2101/EasyLibrary/repository/user"
	authsvc "github.com/sumaro2101/EasyLibrary/service/auth"
	catalogsvc "github.com/sumaro2101/EasyLibrary/service/catalog"
	"github.com/sumaro2101/EasyLibrary/service/lending"
	"github.com/sumaro2101/EasyLibrary/service/notify"
	"github.com/sumaro2101/EasyLibrary/service/task"
	"github.com/sumaro2101/EasyLibrary/util/database"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(db, migrations.FS, "."); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Error("amqp connect failed", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	pubCh, err := conn.Channel()
	if err != nil {
		log.Error("amqp channel failed", "err", err)
		os.Exit(1)
	}
	subCh, err := conn.Channel()
	if err != nil {
		log.Error("amqp channel failed", "err", err)
		os.Exit(1)
	}

	publisher, err := task.NewAMQPPublisher(pubCh, cfg.MailQueue)
	if err != nil {
		log.Error("queue declare failed", "err", err)
		os.Exit(1)
	}

	users := userrepo.New(db)
	catalog := catalogrepo.New(db)
	orders := orderrepo.New(db)
	tasks := taskrepo.New(db)

	scheduler := task.NewManager(tasks, publisher, cfg.ReminderHour, cfg.ReminderMinute)

	auth := authsvc.New(users, cfg.JWTSecret, cfg.JWTTTLHours)
	catalogSvc := catalogsvc.New(catalog)
	lendingSvc := lending.New(orders, scheduler, log)

	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	notifier, err := notify.New(orders, mailer, notify.Config{StaffMail: cfg.StaffMail})
	if err != nil {
		log.Error("notify init failed", "err", err)
		os.Exit(1)
	}

	worker := notify.NewWorker(subCh, cfg.MailQueue, notifier, log)
	go func() {
		if err := worker.Run(ctx); err != nil {
			log.Error("mail worker stopped", "err", err)
		}
	}()

	beat := task.NewBeat(tasks, publisher, log)
	go beat.Run(ctx, time.Minute)

	v := validator.New()
	e := echo.New()
	e.HideBanner = true
	echoserver.RegisterMiddlewares(e)
	echoserver.Register(e, echoserver.C{
		Auth:      &authctl.Controller{Svc: auth, V: v, Log: log},
		User:      &userctl.Controller{Svc: auth, V: v, Log: log},
		Catalog:   &catalogctl.Controller{Svc: catalogSvc, V: v, Log: log},
		Order:     &orderctl.Controller{Svc: lendingSvc, Log: log},
		Extension: &extensionctl.Controller{Svc: lendingSvc, V: v, Log: log},
	}, cfg.JWTSecret)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
	}
}
