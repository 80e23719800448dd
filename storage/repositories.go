// Package storage assembles the repositories of the configured storage engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
	"github.com/trezcool/masomo-courseware/core/progress"
	"github.com/trezcool/masomo-courseware/storage/database"
	inmemdb "github.com/trezcool/masomo-courseware/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-courseware/storage/database/sqlx"
	redisstore "github.com/trezcool/masomo-courseware/storage/redis"
)

type Repositories struct {
	Catalog      course.Repository
	Progress     progress.Repository
	Assessments  assessment.Repository
	Certificates certificate.Repository
	Roster       learning.Roster
	Close        func() error
}

// Deps returns the learning.Deps backed by repos.
func (repos Repositories) Deps(mailSvc core.EmailService, logger core.Logger, conf *core.Config) learning.Deps {
	return learning.Deps{
		Catalog:      repos.Catalog,
		Progress:     repos.Progress,
		Assessments:  repos.Assessments,
		Certificates: repos.Certificates,
		Roster:       repos.Roster,
		MailSvc:      mailSvc,
		Logger:       logger,
		Conf:         conf,
	}
}

func Memory(db *inmemdb.DB) Repositories {
	return Repositories{
		Catalog:      inmemdb.NewCourseRepository(db),
		Progress:     inmemdb.NewProgressRepository(db),
		Assessments:  inmemdb.NewAssessmentRepository(db),
		Certificates: inmemdb.NewCertificateRepository(db),
		Roster:       inmemdb.NewRosterRepository(db),
		Close:        func() error { return nil },
	}
}

func SQL(db *sqlx.DB, logger core.Logger) Repositories {
	return Repositories{
		Catalog:      sqlxrepos.NewCourseRepository(db, logger),
		Progress:     sqlxrepos.NewProgressRepository(db),
		Assessments:  sqlxrepos.NewAssessmentRepository(db),
		Certificates: sqlxrepos.NewCertificateRepository(db),
		Roster:       sqlxrepos.NewRosterRepository(db),
		Close:        db.Close,
	}
}

// WithRedis moves completion records & certificates to Redis when enabled.
func WithRedis(ctx context.Context, repos Repositories, conf core.RedisConfig, logger core.Logger) (Repositories, error) {
	if !conf.Enabled {
		return repos, nil
	}
	client, err := redisstore.Open(ctx, conf)
	if err != nil {
		return repos, err
	}

	repos.Progress = redisstore.NewProgressRepository(client, conf.KeyPrefix, logger)
	repos.Certificates = redisstore.NewCertificateRepository(client, conf.KeyPrefix, logger)
	closeDB := repos.Close
	repos.Close = func() error {
		if err := client.Close(); err != nil {
			return errors.Wrap(err, "closing redis")
		}
		return closeDB()
	}
	return repos, nil
}

// Open sets up the configured engine, migrating SQL databases up.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (Repositories, error) {
	var repos Repositories

	switch conf.Database.Engine {
	case core.EngineMemory:
		repos = Memory(inmemdb.Open())
	default:
		if err := database.CreateIfNotExist(conf); err != nil {
			return Repositories{}, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return Repositories{}, err
		}
		repos = SQL(db, logger)
	}

	withRedis, err := WithRedis(ctx, repos, conf.Redis, logger)
	if err != nil {
		_ = repos.Close()
		return Repositories{}, err
	}
	return withRedis, nil
}
