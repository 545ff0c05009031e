package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/metrics"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIPUnknown          = errors.New("source ip could not be determined")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// AuthService handles teacher registration, login and the IP-refresh workflow.
type AuthService struct {
	teachers   repository.TeacherRepository
	tokens     *TokenService
	bcryptCost int
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(teachers repository.TeacherRepository, tokens *TokenService, bcryptCost int, log zerolog.Logger) *AuthService {
	return &AuthService{
		teachers:   teachers,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// AddTeacher creates a teacher with a hashed password.
// A taken teacherId yields repository.ErrDuplicate; a password bcrypt
// cannot hash yields ErrPasswordTooLong.
func (s *AuthService) AddTeacher(ctx context.Context, req model.AddTeacherRequest) (*model.Teacher, error) {
	if len(req.Password) > model.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	teacher := &model.Teacher{
		ID:           uuid.NewString(),
		TeacherID:    req.TeacherID,
		Name:         req.Name,
		Class:        req.Class,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Attendance:   []model.AttendanceEntry{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.log.Info().Str("teacher_id", teacher.TeacherID).Str("class", teacher.Class).Msg("Teacher created")
	return teacher, nil
}

// Login verifies credentials and issues a session token.
// An unknown teacherId and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, teacherID, password string) (*model.LoginTeacherResponse, error) {
	teacher, err := s.teachers.GetByTeacherID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.Logins.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	if err := s.CheckPassword(teacher.PasswordHash, password); err != nil {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, err
	}

	token, _, err := s.tokens.Issue(teacher.TeacherID, teacher.ID)
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	return &model.LoginTeacherResponse{Teacher: teacher, Token: token}, nil
}

// SaveIP records sourceIP as the teacher's registered address for self-attendance.
func (s *AuthService) SaveIP(ctx context.Context, teacher *model.Teacher, sourceIP string) (*model.Teacher, error) {
	if sourceIP == "" {
		return nil, ErrIPUnknown
	}
	if err := s.teachers.UpdateIP(ctx, teacher.ID, sourceIP); err != nil {
		return nil, fmt.Errorf("update ip: %w", err)
	}

	s.log.Info().
		Str("teacher_id", teacher.TeacherID).
		Str("previous_ip", teacher.IP).
		Str("ip", sourceIP).
		Msg("Teacher IP updated")

	updated := *teacher
	updated.IP = sourceIP
	return &updated, nil
}
