package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/attendance-backend/internal/model"
)

// StudentPostgresRepository handles student data access on PostgreSQL.
type StudentPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ StudentRepository = (*StudentPostgresRepository)(nil)

// NewStudentRepository creates a new StudentPostgresRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentPostgresRepository {
	return &StudentPostgresRepository{pool: pool}
}

const studentColumns = `id, student_id, name, class_label, father_name, mother_name, phone_number, guardian_email, photo_url, created_at`

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.StudentID, &s.Name, &s.Class, &s.FatherName, &s.MotherName,
		&s.PhoneNumber, &s.GuardianEmail, &s.PhotoURL, &s.CreatedAt)
}

// Create inserts a new student.
func (r *StudentPostgresRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (id, student_id, name, class_label, father_name, mother_name, phone_number, guardian_email, photo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		s.ID, s.StudentID, s.Name, s.Class, s.FatherName, s.MotherName, s.PhoneNumber, s.GuardianEmail, s.PhotoURL,
	).Scan(&s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if s.Attendance == nil {
		s.Attendance = []model.AttendanceEntry{}
	}
	return nil
}

// GetByStudentID retrieves a student and its attendance history.
func (r *StudentPostgresRepository) GetByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_id = $1`, studentID), s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	history, err := r.attendance(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Attendance = history[s.ID]
	if s.Attendance == nil {
		s.Attendance = []model.AttendanceEntry{}
	}
	return s, nil
}

// ListByClass retrieves all students of a class label in insertion order.
func (r *StudentPostgresRepository) ListByClass(ctx context.Context, class string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_label = $1 ORDER BY seq`, class)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	ids := []string{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return students, nil
	}

	history, err := r.attendance(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].Attendance = history[students[i].ID]
		if students[i].Attendance == nil {
			students[i].Attendance = []model.AttendanceEntry{}
		}
	}
	return students, nil
}

// attendance loads the histories of the given students keyed by internal ID.
func (r *StudentPostgresRepository) attendance(ctx context.Context, ids []string) (map[string][]model.AttendanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, date, status FROM student_attendance WHERE student_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.AttendanceEntry, len(ids))
	for rows.Next() {
		var (
			owner string
			e     model.AttendanceEntry
		)
		if err := rows.Scan(&owner, &e.Date, &e.Status); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], e)
	}
	return out, rows.Err()
}

// AppendAttendance appends an entry to the history of the student with the given studentId.
// A missing student yields a zero ModifiedCount, not an error.
func (r *StudentPostgresRepository) AppendAttendance(ctx context.Context, studentID string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO student_attendance (student_id, date, status)
		 SELECT id, $2, $3 FROM students WHERE student_id = $1`,
		studentID, entry.Date, entry.Status,
	)
	if err != nil {
		return model.UpdateAck{}, err
	}
	return model.UpdateAck{Acknowledged: true, ModifiedCount: tag.RowsAffected()}, nil
}
