package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/attendance-backend/internal/model"
)

// TeacherPostgresRepository handles teacher data access on PostgreSQL.
type TeacherPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ TeacherRepository = (*TeacherPostgresRepository)(nil)

// NewTeacherRepository creates a new TeacherPostgresRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherPostgresRepository {
	return &TeacherPostgresRepository{pool: pool}
}

const teacherColumns = `id, teacher_id, name, class_label, phone_number, password_hash, ip, photo_url, created_at`

// Create inserts a new teacher.
func (r *TeacherPostgresRepository) Create(ctx context.Context, t *model.Teacher) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teachers (id, teacher_id, name, class_label, phone_number, password_hash, ip, photo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		t.ID, t.TeacherID, t.Name, t.Class, t.PhoneNumber, t.PasswordHash, t.IP, t.PhotoURL,
	).Scan(&t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if t.Attendance == nil {
		t.Attendance = []model.AttendanceEntry{}
	}
	return nil
}

// GetByID retrieves a teacher and its attendance history by internal ID.
func (r *TeacherPostgresRepository) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	return r.getOne(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id)
}

// GetByTeacherID retrieves a teacher by the externally assigned identifier.
func (r *TeacherPostgresRepository) GetByTeacherID(ctx context.Context, teacherID string) (*model.Teacher, error) {
	return r.getOne(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE teacher_id = $1`, teacherID)
}

func (r *TeacherPostgresRepository) getOne(ctx context.Context, query string, arg string) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.TeacherID, &t.Name, &t.Class, &t.PhoneNumber, &t.PasswordHash, &t.IP, &t.PhotoURL, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	t.Attendance, err = r.attendance(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TeacherPostgresRepository) attendance(ctx context.Context, id string) ([]model.AttendanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, status FROM teacher_attendance WHERE teacher_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.AttendanceEntry{}
	for rows.Next() {
		var e model.AttendanceEntry
		if err := rows.Scan(&e.Date, &e.Status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateIP stores the teacher's last-known source IP.
func (r *TeacherPostgresRepository) UpdateIP(ctx context.Context, id, ip string) error {
	return r.exec(ctx, `UPDATE teachers SET ip = $1 WHERE id = $2`, ip, id)
}

// UpdatePhoto stores the teacher's profile photo URL.
func (r *TeacherPostgresRepository) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	return r.exec(ctx, `UPDATE teachers SET photo_url = $1 WHERE id = $2`, photoURL, id)
}

func (r *TeacherPostgresRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAttendance appends an entry to the teacher's history.
func (r *TeacherPostgresRepository) AppendAttendance(ctx context.Context, id string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO teacher_attendance (teacher_id, date, status)
		 SELECT id, $2, $3 FROM teachers WHERE id = $1`,
		id, entry.Date, entry.Status,
	)
	if err != nil {
		return model.UpdateAck{}, err
	}
	return model.UpdateAck{Acknowledged: true, ModifiedCount: tag.RowsAffected()}, nil
}
