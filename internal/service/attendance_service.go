package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/faceclient"
	"github.com/stemsi/attendance-backend/internal/media"
	"github.com/stemsi/attendance-backend/internal/metrics"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/notify"
	"github.com/stemsi/attendance-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Attendance errors.
var (
	ErrIPMismatch      = errors.New("source ip does not match registered ip")
	ErrFaceMismatch    = errors.New("captured face does not match enrolled photo")
	ErrFaceNotEnrolled = errors.New("no enrolled photo to verify against")
	ErrFaceService     = errors.New("face service failed")
	ErrInvalidImage    = errors.New("invalid captured image")
)

// FaceMatcher compares two hosted images. Implemented by *faceclient.Client.
type FaceMatcher interface {
	Compare(ctx context.Context, referenceURL, probeURL string) (*faceclient.CompareResult, error)
}

// AttendanceService appends attendance entries for teachers and students.
type AttendanceService struct {
	teachers    repository.TeacherRepository
	students    repository.StudentRepository
	dispatcher  notify.Dispatcher
	store       media.Store
	faces       FaceMatcher
	school      string
	concurrency int
	scoped      bool
	maxImage    int64
	now         func() time.Time
	log         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService. faces may be nil,
// in which case captured frames are stored as evidence without verification.
func NewAttendanceService(
	cfg *config.Config,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
	dispatcher notify.Dispatcher,
	store media.Store,
	faces FaceMatcher,
	log zerolog.Logger,
) *AttendanceService {
	concurrency := cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &AttendanceService{
		teachers:    teachers,
		students:    students,
		dispatcher:  dispatcher,
		store:       store,
		faces:       faces,
		school:      cfg.MailFromName,
		concurrency: concurrency,
		scoped:      cfg.RosterScoped,
		maxImage:    cfg.MaxUploadBytes,
		now:         time.Now,
		log:         log.With().Str("component", "attendance_service").Logger(),
	}
}

// ─── Teacher self-attendance ───────────────────────────────────────────────

// checkIP fails closed: an empty registered IP never matches.
func (s *AttendanceService) checkIP(teacher *model.Teacher, sourceIP string) error {
	if teacher.IP != "" && sourceIP == teacher.IP {
		return nil
	}
	metrics.SecurityRejections.WithLabelValues("ip_mismatch").Inc()
	s.log.Warn().
		Str("teacher_id", teacher.TeacherID).
		Str("registered_ip", teacher.IP).
		Str("source_ip", sourceIP).
		Msg("Self-attendance rejected: IP mismatch")
	return ErrIPMismatch
}

func (s *AttendanceService) appendTeacherPresent(ctx context.Context, teacher *model.Teacher) (model.UpdateAck, error) {
	entry := model.AttendanceEntry{Date: s.now().UTC(), Status: model.StatusPresent}
	ack, err := s.teachers.AppendAttendance(ctx, teacher.ID, entry)
	if err != nil {
		return model.UpdateAck{}, fmt.Errorf("append teacher attendance: %w", err)
	}
	metrics.AttendanceMarks.WithLabelValues("teacher", string(model.StatusPresent)).Inc()
	return ack, nil
}

// MarkTeacher records the teacher as present if the request comes from the registered IP.
func (s *AttendanceService) MarkTeacher(ctx context.Context, teacher *model.Teacher, sourceIP string) (model.UpdateAck, error) {
	if err := s.checkIP(teacher, sourceIP); err != nil {
		return model.UpdateAck{}, err
	}
	return s.appendTeacherPresent(ctx, teacher)
}

// MarkTeacherWithFace is MarkTeacher plus a captured camera frame. The frame is
// stored as evidence and, when a face matcher is configured, verified against
// the teacher's enrolled photo before the entry is appended.
func (s *AttendanceService) MarkTeacherWithFace(ctx context.Context, teacher *model.Teacher, sourceIP, liveImage string) (*model.FaceAttendanceResult, error) {
	if err := s.checkIP(teacher, sourceIP); err != nil {
		return nil, err
	}

	contentType, data, err := media.DecodeDataURL(liveImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if int64(len(data)) > s.maxImage {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, len(data), s.maxImage)
	}
	if s.faces != nil && teacher.PhotoURL == "" {
		return nil, ErrFaceNotEnrolled
	}

	name := fmt.Sprintf("attendance-%s-%s%s", teacher.TeacherID, uuid.New().String(), ext)
	evidenceURL, err := media.PutBytes(ctx, s.store, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store capture: %w", err)
	}

	result := &model.FaceAttendanceResult{EvidenceURL: evidenceURL}

	if s.faces != nil {
		cmp, err := s.faces.Compare(ctx, teacher.PhotoURL, evidenceURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFaceService, err)
		}
		similarity := cmp.Similarity
		result.Similarity = &similarity
		if !cmp.Match {
			metrics.SecurityRejections.WithLabelValues("face_mismatch").Inc()
			s.log.Warn().
				Str("teacher_id", teacher.TeacherID).
				Float64("similarity", cmp.Similarity).
				Float64("threshold", cmp.Threshold).
				Str("evidence_url", evidenceURL).
				Msg("Self-attendance rejected: face mismatch")
			return nil, ErrFaceMismatch
		}
		result.FaceVerified = true
	}

	ack, err := s.appendTeacherPresent(ctx, teacher)
	if err != nil {
		return nil, err
	}
	result.UpdateAck = ack
	return result, nil
}

// ─── Student batch ─────────────────────────────────────────────────────────

// MarkStudents appends one entry per student in the batch, in studentId order.
// Each entry stands alone: a failed lookup, foreign student or undelivered
// absence email is reported on that entry's ack and the batch carries on.
// Earlier writes are never rolled back.
func (s *AttendanceService) MarkStudents(ctx context.Context, teacher *model.Teacher, batch model.MarkStudentsRequest) ([]model.StudentAck, error) {
	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	date := s.now().UTC()
	acks := make([]model.StudentAck, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			acks[i] = s.markStudent(ctx, teacher, id, batch[id], date)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return acks, err
	}

	s.log.Info().
		Str("teacher_id", teacher.TeacherID).
		Int("entries", len(acks)).
		Msg("Student attendance batch processed")
	return acks, nil
}

func (s *AttendanceService) markStudent(ctx context.Context, teacher *model.Teacher, studentID string, status model.AttendanceStatus, date time.Time) model.StudentAck {
	ack := model.StudentAck{StudentID: studentID, Status: status}

	student, err := s.students.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ack.ErrorCode = model.AckErrNotFound
			ack.Error = "student not found"
		} else {
			s.log.Error().Err(err).Str("student_id", studentID).Msg("Failed to load student")
			ack.ErrorCode = model.AckErrInternal
			ack.Error = "failed to load student"
		}
		return ack
	}

	if s.scoped && student.Class != teacher.Class {
		s.log.Warn().
			Str("teacher_id", teacher.TeacherID).
			Str("teacher_class", teacher.Class).
			Str("student_id", studentID).
			Str("student_class", student.Class).
			Msg("Rejected attendance for student outside the teacher's class")
		ack.ErrorCode = model.AckErrNotInRoster
		ack.Error = "student is not in this teacher's class"
		return ack
	}

	if status == model.StatusAbsent {
		s.notifyAbsence(ctx, student, date, &ack)
	}

	res, err := s.students.AppendAttendance(ctx, studentID, model.AttendanceEntry{Date: date, Status: status})
	if err != nil {
		s.log.Error().Err(err).Str("student_id", studentID).Msg("Failed to append student attendance")
		ack.ErrorCode = model.AckErrInternal
		ack.Error = "failed to record attendance"
		return ack
	}
	ack.UpdateAck = res
	metrics.AttendanceMarks.WithLabelValues("student", string(status)).Inc()
	return ack
}

func (s *AttendanceService) notifyAbsence(ctx context.Context, student *model.Student, date time.Time, ack *model.StudentAck) {
	if student.GuardianEmail == "" {
		metrics.Notifications.WithLabelValues("skipped").Inc()
		s.log.Debug().Str("student_id", student.StudentID).Msg("No guardian email, absence notice skipped")
		return
	}

	subject, body := notify.AbsenceMessage(student, date, s.school)
	if err := s.dispatcher.Notify(ctx, student.GuardianEmail, subject, body); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("student_id", student.StudentID).Msg("Absence notice not delivered")
		ack.NotifyError = err.Error()
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	ack.Notified = true
}
