package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/learning"
	appfs "github.com/trezcool/masomo-courseware/fs"
	emailsvc "github.com/trezcool/masomo-courseware/services/email"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
	"github.com/trezcool/masomo-courseware/storage"
	"github.com/trezcool/masomo-courseware/storage/database"
)

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	repos, err := storage.WithRedis(context.Background(), storage.SQL(db, logger), conf.Redis, logger)
	errAndDie(err)

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := newCommandLine(db, learning.NewService(repos.Deps(mailSvc, logger, conf)), os.Stdout)
	err = cli.run(os.Args)
	if cErr := repos.Close(); cErr != nil {
		stdLogger.Printf("closing storage: %v", cErr)
	}
	if err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
