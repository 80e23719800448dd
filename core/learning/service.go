package learning

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/completion"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/progress"
)

var newIDFunc = uuid.NewString // mockable

type (
	// Deps are the collaborators of the Service.
	Deps struct {
		Catalog      course.Repository
		Progress     progress.Repository
		Assessments  assessment.Repository
		Certificates certificate.Repository
		Roster       Roster
		MailSvc      core.EmailService
		Logger       core.Logger
		Conf         *core.Config
	}

	Service struct {
		catalog     course.Repository
		learners    *progress.Tracker
		officers    *progress.Tracker
		assessments assessment.Repository
		issuer      *certificate.Issuer
		roster      Roster
		mailSvc     core.EmailService
		logger      core.Logger
		conf        *core.Config
		notifier    *notifier
		now         func() time.Time
	}

	// Evaluation is the progress of a learner in a course and their certificate, if issued.
	Evaluation struct {
		completion.Result
		Certificate *certificate.Certificate `json:"certificate"`
	}

	Neighbors struct {
		Current  course.ContentItem  `json:"current"`
		Previous *course.ContentItem `json:"previous"`
		Next     *course.ContentItem `json:"next"`
	}

	DeliveryEvent struct {
		ContentItemID string    `json:"content_item_id"`
		Title         string    `json:"title"`
		ModuleID      string    `json:"module_id"`
		SessionID     string    `json:"session_id"`
		DeliveredAt   time.Time `json:"delivered_at"`
	}

	// Delivery is the session delivery progress of an officer.
	Delivery struct {
		Progress completion.CourseProgress `json:"progress"`
		Timeline []DeliveryEvent          `json:"timeline"`
	}

	ReconcileReport struct {
		CourseID  string `json:"course_id"`
		Evaluated int    `json:"evaluated"`
		Completed int    `json:"completed"`
		Issued    int    `json:"issued"`
	}
)

func NewService(deps Deps) *Service {
	svc := &Service{
		catalog:     deps.Catalog,
		learners:    progress.NewTracker(deps.Progress, progress.KindLearner),
		officers:    progress.NewTracker(deps.Progress, progress.KindOfficer),
		assessments: deps.Assessments,
		issuer:      certificate.NewIssuer(deps.Certificates, deps.Conf.Certificates.DefaultIssuer),
		roster:      deps.Roster,
		mailSvc:     deps.MailSvc,
		logger:      deps.Logger,
		conf:        deps.Conf,
		notifier:    &notifier{},
		now:         func() time.Time { return time.Now().UTC() },
	}
	svc.notifier.subscribe(svc.onChange)
	return svc
}

// Subscribe registers a Subscriber run after every write, after the re-evaluation of the learner.
func (svc *Service) Subscribe(sub Subscriber) {
	svc.notifier.subscribe(sub)
}

func (svc *Service) onChange(ctx context.Context, ch Change) error {
	if ch.Kind == ContentDelivered {
		return nil
	}
	_, _, err := svc.settle(ctx, ch.CourseID, ch.StudentID)
	return err
}

func (svc *Service) evaluate(ctx context.Context, c course.Course, idx *course.Index, studentID string) (Evaluation, error) {
	set, err := svc.learners.CompletedSet(ctx, studentID, c.ID)
	if err != nil {
		return Evaluation{}, err
	}
	st, err := assessment.LoadState(ctx, svc.assessments, c.ID, studentID)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{
		Result: completion.Evaluate(completion.Input{
			Index:       idx,
			StudentID:   studentID,
			Completed:   set,
			Assignments: st.Assignments,
			Submissions: st.Submissions,
			Quizzes:     st.Quizzes,
			Attempts:    st.Attempts,
		}),
	}

	cert, err := svc.issuer.Get(ctx, studentID, c.ID)
	switch errors.Cause(err) {
	case nil:
		ev.Certificate = &cert
	case certificate.ErrNotFound: // not issued yet
	default:
		return Evaluation{}, errors.Wrap(err, "getting certificate")
	}
	return ev, nil
}

// settle re-evaluates a learner and issues the certificate once the course is completed.
func (svc *Service) settle(ctx context.Context, courseID, studentID string) (Evaluation, bool, error) {
	c, idx, err := course.Load(ctx, svc.catalog, courseID)
	if err != nil {
		return Evaluation{}, false, err
	}
	ev, err := svc.evaluate(ctx, c, idx, studentID)
	if err != nil {
		return Evaluation{}, false, err
	}
	if !ev.Completed || ev.Certificate != nil {
		return ev, false, nil
	}

	learner, err := svc.roster.GetLearner(ctx, studentID)
	if err != nil {
		if errors.Cause(err) != ErrLearnerNotFound {
			return Evaluation{}, false, errors.Wrap(err, "getting learner")
		}
		svc.logger.Warn(fmt.Sprintf("issuing certificate of %q to unknown learner %q", courseID, studentID))
		learner = Learner{ID: studentID}
	}

	cert, created, err := svc.issuer.IssueIfNeeded(ctx, certificate.Request{
		StudentID:   studentID,
		StudentName: learner.Name,
		Course:      c,
		Now:         svc.now(),
	})
	if err != nil {
		return Evaluation{}, false, err
	}
	ev.Certificate = &cert

	if created {
		svc.logger.Info(fmt.Sprintf("certificate %s issued: course %q", cert.ID, c.ID), learner.Actor())
		svc.notifyCertificateIssued(cert, learner)
	}
	return ev, created, nil
}

// Progress evaluates a learner. It never issues a certificate.
func (svc *Service) Progress(ctx context.Context, courseID, studentID string) (Evaluation, error) {
	c, idx, err := course.Load(ctx, svc.catalog, courseID)
	if err != nil {
		return Evaluation{}, err
	}
	return svc.evaluate(ctx, c, idx, studentID)
}

func (svc *Service) loadItem(ctx context.Context, courseID, contentItemID string) (course.Course, *course.Index, course.ContentItem, error) {
	c, idx, err := course.Load(ctx, svc.catalog, courseID)
	if err != nil {
		return course.Course{}, nil, course.ContentItem{}, err
	}
	item, ok := idx.Item(contentItemID)
	if !ok {
		return course.Course{}, nil, course.ContentItem{}, course.ErrContentNotFound
	}
	return c, idx, item, nil
}

func (svc *Service) MarkContentComplete(
	ctx context.Context,
	courseID, contentItemID, studentID string,
	watchPercentage null.Float64,
) (Evaluation, error) {
	if _, _, _, err := svc.loadItem(ctx, courseID, contentItemID); err != nil {
		return Evaluation{}, err
	}
	rec, err := svc.learners.MarkComplete(ctx, studentID, courseID, contentItemID, watchPercentage)
	if err != nil {
		return Evaluation{}, err
	}
	err = svc.notifier.publish(ctx, Change{Kind: ContentCompleted, CourseID: courseID, StudentID: studentID, At: rec.CompletedAt})
	if err != nil {
		return Evaluation{}, err
	}
	return svc.Progress(ctx, courseID, studentID)
}

func (svc *Service) RecordSubmission(
	ctx context.Context,
	courseID, assignmentID string,
	ns assessment.NewSubmission,
) (assessment.Submission, Evaluation, error) {
	if _, err := svc.catalog.GetCourse(ctx, courseID); err != nil {
		return assessment.Submission{}, Evaluation{}, err
	}
	if _, err := svc.assessments.GetAssignment(ctx, courseID, assignmentID); err != nil {
		return assessment.Submission{}, Evaluation{}, err
	}

	sub, err := svc.assessments.CreateSubmission(ctx, assessment.Submission{
		ID:           newIDFunc(),
		StudentID:    ns.StudentID,
		AssignmentID: assignmentID,
		CourseID:     courseID,
		Status:       ns.Status,
		Grade:        ns.GradeValue(),
		CreatedAt:    svc.now(),
	})
	if err != nil {
		return assessment.Submission{}, Evaluation{}, errors.Wrap(err, "creating submission")
	}

	err = svc.notifier.publish(ctx, Change{Kind: SubmissionRecorded, CourseID: courseID, StudentID: sub.StudentID, At: sub.CreatedAt})
	if err != nil {
		return assessment.Submission{}, Evaluation{}, err
	}
	ev, err := svc.Progress(ctx, courseID, sub.StudentID)
	return sub, ev, err
}

func (svc *Service) RecordQuizAttempt(
	ctx context.Context,
	courseID, quizID string,
	na assessment.NewQuizAttempt,
) (assessment.QuizAttempt, Evaluation, error) {
	if _, err := svc.catalog.GetCourse(ctx, courseID); err != nil {
		return assessment.QuizAttempt{}, Evaluation{}, err
	}
	quiz, err := svc.assessments.GetQuiz(ctx, courseID, quizID)
	if err != nil {
		return assessment.QuizAttempt{}, Evaluation{}, err
	}

	if quiz.AttemptsAllowed > 0 {
		attempts, err := svc.assessments.ListQuizAttempts(ctx, courseID, na.StudentID)
		if err != nil {
			return assessment.QuizAttempt{}, Evaluation{}, errors.Wrap(err, "listing quiz attempts")
		}
		if assessment.CountAttempts(na.StudentID, quizID, attempts) >= quiz.AttemptsAllowed {
			return assessment.QuizAttempt{}, Evaluation{}, assessment.AttemptsExhaustedError(quiz.AttemptsAllowed)
		}
	}

	var pct float64
	if na.Percentage != nil {
		pct = *na.Percentage
	}
	att, err := svc.assessments.CreateQuizAttempt(ctx, assessment.QuizAttempt{
		ID:          newIDFunc(),
		StudentID:   na.StudentID,
		QuizID:      quizID,
		CourseID:    courseID,
		Percentage:  pct,
		AttemptedAt: svc.now(),
	})
	if err != nil {
		return assessment.QuizAttempt{}, Evaluation{}, errors.Wrap(err, "creating quiz attempt")
	}

	err = svc.notifier.publish(ctx, Change{Kind: QuizAttemptRecorded, CourseID: courseID, StudentID: att.StudentID, At: att.AttemptedAt})
	if err != nil {
		return assessment.QuizAttempt{}, Evaluation{}, err
	}
	ev, err := svc.Progress(ctx, courseID, att.StudentID)
	return att, ev, err
}

func (svc *Service) Certificate(ctx context.Context, courseID, studentID string) (certificate.Certificate, error) {
	return svc.issuer.Get(ctx, studentID, courseID)
}

// Certificates returns the certificates of a learner, oldest first.
func (svc *Service) Certificates(ctx context.Context, studentID string) ([]certificate.Certificate, error) {
	certs, err := svc.issuer.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(certs, func(i, j int) bool { return certs[i].IssuedAt.Before(certs[j].IssuedAt) })
	return certs, nil
}

func (svc *Service) Outline(ctx context.Context, courseID string) (course.Outline, error) {
	c, idx, err := course.Load(ctx, svc.catalog, courseID)
	if err != nil {
		return course.Outline{}, err
	}
	return idx.Outline(c), nil
}

func (svc *Service) Neighbors(ctx context.Context, courseID, contentItemID string) (Neighbors, error) {
	_, idx, item, err := svc.loadItem(ctx, courseID, contentItemID)
	if err != nil {
		return Neighbors{}, err
	}
	nb := Neighbors{Current: item}
	if prev, ok := idx.Previous(contentItemID); ok {
		nb.Previous = &prev
	}
	if next, ok := idx.Next(contentItemID); ok {
		nb.Next = &next
	}
	return nb, nil
}

// MarkDelivered records that an officer delivered a content item in a live session.
func (svc *Service) MarkDelivered(ctx context.Context, courseID, contentItemID, officerID string) (Delivery, error) {
	if _, _, _, err := svc.loadItem(ctx, courseID, contentItemID); err != nil {
		return Delivery{}, err
	}
	rec, err := svc.officers.MarkComplete(ctx, officerID, courseID, contentItemID, null.Float64{})
	if err != nil {
		return Delivery{}, err
	}
	err = svc.notifier.publish(ctx, Change{Kind: ContentDelivered, CourseID: courseID, OfficerID: officerID, At: rec.CompletedAt})
	if err != nil {
		return Delivery{}, err
	}
	return svc.DeliveryProgress(ctx, courseID, officerID)
}

func (svc *Service) DeliveryProgress(ctx context.Context, courseID, officerID string) (Delivery, error) {
	_, idx, err := course.Load(ctx, svc.catalog, courseID)
	if err != nil {
		return Delivery{}, err
	}
	recs, err := svc.officers.Records(ctx, officerID, courseID)
	if err != nil {
		return Delivery{}, err
	}

	delivered := make(progress.Set, len(recs))
	timeline := make([]DeliveryEvent, 0, len(recs))
	for _, rec := range recs {
		item, ok := idx.Item(rec.ContentItemID)
		if !ok || !rec.Completed {
			continue
		}
		delivered[rec.ContentItemID] = struct{}{}
		timeline = append(timeline, DeliveryEvent{
			ContentItemID: item.ID,
			Title:         item.Title,
			ModuleID:      item.ModuleID,
			SessionID:     item.SessionID,
			DeliveredAt:   rec.CompletedAt,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].DeliveredAt.Before(timeline[j].DeliveredAt) })

	return Delivery{
		Progress: completion.Delivery(idx, officerID, delivered),
		Timeline: timeline,
	}, nil
}

// Reconcile re-evaluates every learner with recorded progress in the course and issues missing certificates.
func (svc *Service) Reconcile(ctx context.Context, courseID string) (ReconcileReport, error) {
	if _, err := svc.catalog.GetCourse(ctx, courseID); err != nil {
		return ReconcileReport{}, err
	}
	owners, err := svc.participants(ctx, courseID)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{CourseID: courseID}
	for _, studentID := range owners {
		ev, created, err := svc.settle(ctx, courseID, studentID)
		if err != nil {
			return report, errors.Wrapf(err, "reconciling learner %q", studentID)
		}
		report.Evaluated++
		if ev.Completed {
			report.Completed++
		}
		if created {
			report.Issued++
		}
	}
	return report, nil
}

// participants returns the sorted ids of the learners with any recorded activity in the course.
func (svc *Service) participants(ctx context.Context, courseID string) ([]string, error) {
	owners, err := svc.learners.Owners(ctx, courseID)
	if err != nil {
		return nil, err
	}
	subs, err := svc.assessments.ListSubmissions(ctx, courseID, "")
	if err != nil {
		return nil, errors.Wrap(err, "listing submissions")
	}
	attempts, err := svc.assessments.ListQuizAttempts(ctx, courseID, "")
	if err != nil {
		return nil, errors.Wrap(err, "listing quiz attempts")
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(owners))
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range owners {
		add(id)
	}
	for _, sub := range subs {
		add(sub.StudentID)
	}
	for _, att := range attempts {
		add(att.StudentID)
	}
	sort.Strings(ids)
	return ids, nil
}
