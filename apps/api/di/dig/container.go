package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-courseware/apps/api/echo"
	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
	"github.com/trezcool/masomo-courseware/core/progress"
	emailsvc "github.com/trezcool/masomo-courseware/services/email"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
	"github.com/trezcool/masomo-courseware/storage"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Closer releases the storage connections.
	Closer func() error

	// Storage holds the repositories of the configured engine.
	Storage struct {
		dig.Out
		Catalog      course.Repository
		Progress     progress.Repository
		Assessments  assessment.Repository
		Certificates certificate.Repository
		Roster       learning.Roster
		Closer       Closer
	}

	learningParams struct {
		dig.In
		Catalog      course.Repository
		Progress     progress.Repository
		Assessments  assessment.Repository
		Certificates certificate.Repository
		Roster       learning.Roster
		MailSvc      core.EmailService
		Logger       core.Logger
		Conf         *core.Config
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// NewStorage opens the configured engine. With Redis enabled, completion records & certificates live in Redis.
func NewStorage(conf *core.Config, loggerParam DBLoggerParam) (Storage, error) {
	repos, err := storage.Open(context.Background(), conf, loggerParam.Logger)
	if err != nil {
		return Storage{}, err
	}
	return Storage{
		Catalog:      repos.Catalog,
		Progress:     repos.Progress,
		Assessments:  repos.Assessments,
		Certificates: repos.Certificates,
		Roster:       repos.Roster,
		Closer:       repos.Close,
	}, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	course.RegisterValidators(validate, translator)
	assessment.RegisterValidators(validate, translator)
	return validate
}

func newLearningService(p learningParams) *learning.Service {
	svc := learning.NewService(learning.Deps{
		Catalog:      p.Catalog,
		Progress:     p.Progress,
		Assessments:  p.Assessments,
		Certificates: p.Certificates,
		Roster:       p.Roster,
		MailSvc:      p.MailSvc,
		Logger:       p.Logger,
		Conf:         p.Conf,
	})
	if p.Conf.Debug {
		svc.Subscribe(func(_ context.Context, ch learning.Change) error {
			p.Logger.Debug(fmt.Sprintf("change: %s course=%q student=%q officer=%q", ch.Kind, ch.CourseID, ch.StudentID, ch.OfficerID))
			return nil
		})
	}
	return svc
}

func newServer(
	conf *core.Config,
	svc *learning.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		DisableReqLogs: conf.Server.DisableReqLogs,
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		LearningSvc:    svc,
		Validate:       validate,
		Translator:     translator,
		Logger:         logger,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(NewStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newLearningService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
