package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
)

// LearningService is the part of learning.Service exposed over HTTP.
type LearningService interface {
	Progress(ctx context.Context, courseID, studentID string) (learning.Evaluation, error)
	MarkContentComplete(ctx context.Context, courseID, contentItemID, studentID string, watchPercentage null.Float64) (learning.Evaluation, error)
	RecordSubmission(ctx context.Context, courseID, assignmentID string, ns assessment.NewSubmission) (assessment.Submission, learning.Evaluation, error)
	RecordQuizAttempt(ctx context.Context, courseID, quizID string, na assessment.NewQuizAttempt) (assessment.QuizAttempt, learning.Evaluation, error)
	Certificate(ctx context.Context, courseID, studentID string) (certificate.Certificate, error)
	Certificates(ctx context.Context, studentID string) ([]certificate.Certificate, error)
	Outline(ctx context.Context, courseID string) (course.Outline, error)
	Neighbors(ctx context.Context, courseID, contentItemID string) (learning.Neighbors, error)
	MarkDelivered(ctx context.Context, courseID, contentItemID, officerID string) (learning.Delivery, error)
	DeliveryProgress(ctx context.Context, courseID, officerID string) (learning.Delivery, error)
}

var _ LearningService = (*learning.Service)(nil)

type (
	courseApi struct {
		svc      LearningService
		validate *validator.Validate
	}

	SubmissionResponse struct {
		Submission assessment.Submission `json:"submission"`
		Evaluation learning.Evaluation   `json:"evaluation"`
	}

	QuizAttemptResponse struct {
		Attempt    assessment.QuizAttempt `json:"attempt"`
		Evaluation learning.Evaluation    `json:"evaluation"`
	}
)

func registerCourseAPI(g *echo.Group, svc LearningService, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses/:course")
	cg.GET("/progress", api.progress)
	cg.GET("/certificate", api.certificate)
	cg.GET("/outline", api.outline)
	cg.GET("/delivery", api.delivery)

	cg.GET("/content/:content/neighbors", api.neighbors)
	cg.POST("/content/:content/complete", api.complete)
	cg.POST("/content/:content/deliver", api.deliver)

	cg.POST("/assignments/:assignment/submissions", api.submit)
	cg.POST("/quizzes/:quiz/attempts", api.attempt)
}

// Handlers

func (api *courseApi) studentQuery(ctx echo.Context) (StudentQuery, error) {
	var q StudentQuery
	if err := ctx.Bind(&q); err != nil {
		return q, errors.Wrap(err, "binding to StudentQuery")
	}
	return q, q.Validate(api.validate)
}

func (api *courseApi) progress(ctx echo.Context) error {
	q, err := api.studentQuery(ctx)
	if err != nil {
		return err
	}
	ev, err := api.svc.Progress(ctx.Request().Context(), ctx.Param("course"), q.StudentID)
	if err != nil {
		return errors.Wrap(err, "evaluating progress")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *courseApi) certificate(ctx echo.Context) error {
	q, err := api.studentQuery(ctx)
	if err != nil {
		return err
	}
	cert, err := api.svc.Certificate(ctx.Request().Context(), ctx.Param("course"), q.StudentID)
	if err != nil {
		return errors.Wrap(err, "getting certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}

func (api *courseApi) outline(ctx echo.Context) error {
	ol, err := api.svc.Outline(ctx.Request().Context(), ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "getting outline")
	}
	return ctx.JSON(http.StatusOK, ol)
}

func (api *courseApi) neighbors(ctx echo.Context) error {
	nb, err := api.svc.Neighbors(ctx.Request().Context(), ctx.Param("course"), ctx.Param("content"))
	if err != nil {
		return errors.Wrap(err, "getting neighbors")
	}
	return ctx.JSON(http.StatusOK, nb)
}

func (api *courseApi) complete(ctx echo.Context) error {
	var data CompleteContentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteContentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err := api.svc.MarkContentComplete(
		ctx.Request().Context(), ctx.Param("course"), ctx.Param("content"), data.StudentID, data.Watch(),
	)
	if err != nil {
		return errors.Wrap(err, "marking content complete")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *courseApi) submit(ctx echo.Context) error {
	var data assessment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, ev, err := api.svc.RecordSubmission(ctx.Request().Context(), ctx.Param("course"), ctx.Param("assignment"), data)
	if err != nil {
		return errors.Wrap(err, "recording submission")
	}
	return ctx.JSON(http.StatusCreated, SubmissionResponse{Submission: sub, Evaluation: ev})
}

func (api *courseApi) attempt(ctx echo.Context) error {
	var data assessment.NewQuizAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuizAttempt")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, ev, err := api.svc.RecordQuizAttempt(ctx.Request().Context(), ctx.Param("course"), ctx.Param("quiz"), data)
	if err != nil {
		return errors.Wrap(err, "recording quiz attempt")
	}
	return ctx.JSON(http.StatusCreated, QuizAttemptResponse{Attempt: att, Evaluation: ev})
}

func (api *courseApi) deliver(ctx echo.Context) error {
	var data DeliverContentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeliverContentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.MarkDelivered(ctx.Request().Context(), ctx.Param("course"), ctx.Param("content"), data.OfficerID)
	if err != nil {
		return errors.Wrap(err, "marking content delivered")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *courseApi) delivery(ctx echo.Context) error {
	var q OfficerQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to OfficerQuery")
	}
	if err := q.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.DeliveryProgress(ctx.Request().Context(), ctx.Param("course"), q.OfficerID)
	if err != nil {
		return errors.Wrap(err, "getting delivery progress")
	}
	return ctx.JSON(http.StatusOK, d)
}
