package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/filestore"
	logsvc "github.com/trezcool/darasa/services/logger"
	pushsvc "github.com/trezcool/darasa/services/push"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewConsoleLogger(std)
	}

	// set up DB
	sdb, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = sdb.Close() }()
	db := sqlx.NewDb(sdb, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var storage file.Storage
	if conf.Cloudinary.CloudName != "" {
		if storage, err = filestore.NewCloudinaryStorage(conf); err != nil {
			logger.Fatal("setting up file store", err)
		}
	} else {
		storage = filestore.NewDummyStorage()
	}

	ctx := context.Background()
	var gateway notification.Gateway
	if conf.Firebase.CredentialsFile != "" {
		if gateway, err = pushsvc.NewFCMGateway(ctx, conf, logger); err != nil {
			logger.Fatal("setting up push gateway", err)
		}
	} else {
		gateway = pushsvc.NewDummyGateway()
	}

	deviceRepo := sqlxrepos.NewDeviceRepository(db)
	dispatcher := notification.NewDispatcher(gateway, deviceRepo, logger)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	subjSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	fileSvc := file.NewService(sqlxrepos.NewFileRepository(db), storage)
	asgSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), subjSvc, dispatcher)
	noticeSvc := notice.NewService(sqlxrepos.NewNoticeRepository(db), fileSvc, dispatcher)
	deviceSvc := device.NewService(deviceRepo)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			SubjectSvc:    subjSvc,
			AssignmentSvc: asgSvc,
			NoticeSvc:     noticeSvc,
			FileSvc:       fileSvc,
			DeviceSvc:     deviceSvc,
		},
	)

	// stop gracefully on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		shutCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(shutCtx); err != nil {
			logger.Error("stopping server", err)
		}
	}()

	logger.Info("starting API server on " + conf.Address())
	app.Start()
}
