package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
)

// RosterService resolves and maintains class rosters.
type RosterService struct {
	students repository.StudentRepository
	log      zerolog.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(students repository.StudentRepository, log zerolog.Logger) *RosterService {
	return &RosterService{
		students: students,
		log:      log.With().Str("component", "roster_service").Logger(),
	}
}

// ListByClass returns every student whose class label equals class, in store insertion order.
func (s *RosterService) ListByClass(ctx context.Context, class string) ([]model.Student, error) {
	students, err := s.students.ListByClass(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// AddStudent creates a student. A taken studentId yields repository.ErrDuplicate.
func (s *RosterService) AddStudent(ctx context.Context, req model.AddStudentRequest) (*model.Student, error) {
	student := &model.Student{
		ID:            uuid.NewString(),
		StudentID:     req.StudentID,
		Name:          req.Name,
		Class:         req.Class,
		FatherName:    req.FatherName,
		MotherName:    req.MotherName,
		PhoneNumber:   req.PhoneNumber,
		GuardianEmail: req.GuardianEmail,
		Attendance:    []model.AttendanceEntry{},
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.log.Info().Str("student_id", student.StudentID).Str("class", student.Class).Msg("Student created")
	return student, nil
}
