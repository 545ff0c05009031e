package repository

import (
	"context"
	"errors"

	"github.com/stemsi/attendance-backend/internal/model"
)

// Sentinel errors shared by every store implementation.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// TeacherRepository persists teacher records and their attendance history.
type TeacherRepository interface {
	Create(ctx context.Context, t *model.Teacher) error
	// GetByID looks a teacher up by internal record reference.
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	// GetByTeacherID looks a teacher up by the externally assigned identifier.
	GetByTeacherID(ctx context.Context, teacherID string) (*model.Teacher, error)
	UpdateIP(ctx context.Context, id, ip string) error
	UpdatePhoto(ctx context.Context, id, photoURL string) error
	AppendAttendance(ctx context.Context, id string, entry model.AttendanceEntry) (model.UpdateAck, error)
}

// StudentRepository persists student records and their attendance history.
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	GetByStudentID(ctx context.Context, studentID string) (*model.Student, error)
	// ListByClass returns students whose class label equals class, in insertion order.
	ListByClass(ctx context.Context, class string) ([]model.Student, error)
	AppendAttendance(ctx context.Context, studentID string, entry model.AttendanceEntry) (model.UpdateAck, error)
}

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Backend  string
	Teachers TeacherRepository
	Students StudentRepository
	Ping     func(ctx context.Context) error
	Close    func()
}
