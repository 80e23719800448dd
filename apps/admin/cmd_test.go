package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
	emailsvc "github.com/trezcool/masomo-courseware/services/email"
	logsvc "github.com/trezcool/masomo-courseware/services/logger"
	"github.com/trezcool/masomo-courseware/storage"
	"github.com/trezcool/masomo-courseware/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer, storage.Repositories) {
	t.Helper()
	db := testutil.PrepareSQLite(t)
	conf := core.NewTestConfig()
	logger := logsvc.NewMemoryLogger()
	repos := storage.SQL(db, logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	out := new(bytes.Buffer)
	return newCommandLine(db, learning.NewService(repos.Deps(mailSvc, logger, conf)), out), out, repos
}

func writeCatalog(t *testing.T, cat interface{}) string {
	t.Helper()
	data, err := json.Marshal(cat)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantAnyErr bool
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case tt.wantAnyErr:
		if err == nil {
			t.Error("cli.run() expected an error")
		}
	default:
		if err != nil {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	}
}

func Test_commandLine_root(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantAnyErr: true},
		{name: "catalog: no subcommand", args: []string{"catalog"}, wantErr: errHelp},
		{name: "progress: no subcommand", args: []string{"progress"}, wantErr: errHelp},
		{name: "certificates: no subcommand", args: []string{"certificates"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	realRun := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = realRun })
	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrateStatus(t *testing.T) {
	cli, _, _ := setup(t)
	if err := cli.run([]string{"admin", "migrate", "status"}); err != nil {
		t.Errorf("failed! migrate status error = %v", err)
	}
}

func Test_commandLine_catalogImport(t *testing.T) {
	cli, out, repos := setup(t)

	invalid := testutil.CourseFixture()
	invalid.Courses[0].Title = ""

	tests := []cliTest{
		{name: "no file", args: []string{"catalog", "import"}, wantAnyErr: true},
		{name: "missing file", args: []string{"catalog", "import", filepath.Join(t.TempDir(), "nope.json")}, wantAnyErr: true},
		{name: "invalid catalog", args: []string{"catalog", "import", writeCatalog(t, invalid)}, wantAnyErr: true},
		{name: "not json", args: []string{"catalog", "import", writeCatalog(t, "lol")}, wantAnyErr: true},
		{name: "import", args: []string{"catalog", "import", writeCatalog(t, testutil.CourseFixture())}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(args))
		})
	}

	var report learning.ImportReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, learning.ImportReport{Courses: 1, Contents: 4, Assignments: 1, Quizzes: 1, Learners: 2}, report)

	items, err := repos.Catalog.ListContentItems(context.Background(), testutil.CourseID)
	require.NoError(t, err)
	assert.Len(t, items, len(testutil.ContentIDs))
}

func Test_commandLine_progressAndReconcile(t *testing.T) {
	cli, out, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, cli.run([]string{"admin", "catalog", "import", writeCatalog(t, testutil.CourseFixture())}))

	tests := []cliTest{
		{name: "show: no flags", args: []string{"progress", "show"}, wantAnyErr: true},
		{name: "show: unknown course", args: []string{"progress", "show", "--course", "nope", "--student", testutil.StudentID}, wantErr: course.ErrNotFound},
		{name: "reconcile: no flags", args: []string{"certificates", "reconcile"}, wantAnyErr: true},
		{name: "reconcile: unknown course", args: []string{"certificates", "reconcile", "--course", "nope"}, wantErr: course.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			tt.check(t, err)
		})
	}

	// content & assignment through the service, the quiz attempt behind its back
	for _, id := range testutil.ContentIDs {
		_, err := cli.svc.MarkContentComplete(ctx, testutil.CourseID, id, testutil.StudentID, null.Float64{})
		require.NoError(t, err)
	}
	_, _, err := cli.svc.RecordSubmission(ctx, testutil.CourseID, testutil.AssignmentID, assessment.NewSubmission{
		StudentID: testutil.StudentID, Status: assessment.StatusSubmitted,
	})
	require.NoError(t, err)
	_, err = repos.Assessments.CreateQuizAttempt(ctx, assessment.QuizAttempt{
		ID: "direct", StudentID: testutil.StudentID, QuizID: testutil.QuizID, CourseID: testutil.CourseID,
		Percentage: 80, AttemptedAt: testutil.T0,
	})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "progress", "show", "--course", testutil.CourseID, "--student", testutil.StudentID}))
	var ev learning.Evaluation
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	assert.True(t, ev.Completed)
	assert.Nil(t, ev.Certificate, "progress show must not issue")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "certificates", "reconcile", "--course", testutil.CourseID}))
	var report learning.ReconcileReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, learning.ReconcileReport{CourseID: testutil.CourseID, Evaluated: 1, Completed: 1, Issued: 1}, report)

	cert, err := cli.svc.Certificate(ctx, testutil.CourseID, testutil.StudentID)
	require.NoError(t, err)
	assert.Equal(t, testutil.StudentID, cert.StudentID)
}
