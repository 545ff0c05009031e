package repository

import (
	"context"
	"sync"

	"github.com/stemsi/attendance-backend/internal/model"
)

// Memory is a process-local store used for development and tests.
// Records are copied on the way in and out so callers never share state with the store.
type Memory struct {
	mu       sync.RWMutex
	teachers []*model.Teacher
	students []*model.Student
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Teachers returns the teacher view of the store.
func (m *Memory) Teachers() TeacherRepository { return memoryTeachers{m} }

// Students returns the student view of the store.
func (m *Memory) Students() StudentRepository { return memoryStudents{m} }

func copyEntries(in []model.AttendanceEntry) []model.AttendanceEntry {
	out := make([]model.AttendanceEntry, len(in))
	copy(out, in)
	return out
}

func copyTeacher(t *model.Teacher) *model.Teacher {
	c := *t
	c.Attendance = copyEntries(t.Attendance)
	return &c
}

func copyStudent(s *model.Student) *model.Student {
	c := *s
	c.Attendance = copyEntries(s.Attendance)
	return &c
}

type memoryTeachers struct{ m *Memory }

func (r memoryTeachers) Create(_ context.Context, t *model.Teacher) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.teachers {
		if existing.TeacherID == t.TeacherID || existing.ID == t.ID {
			return ErrDuplicate
		}
	}
	if t.Attendance == nil {
		t.Attendance = []model.AttendanceEntry{}
	}
	r.m.teachers = append(r.m.teachers, copyTeacher(t))
	return nil
}

func (r memoryTeachers) find(match func(*model.Teacher) bool) *model.Teacher {
	for _, t := range r.m.teachers {
		if match(t) {
			return t
		}
	}
	return nil
}

func (r memoryTeachers) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if t := r.find(func(t *model.Teacher) bool { return t.ID == id }); t != nil {
		return copyTeacher(t), nil
	}
	return nil, ErrNotFound
}

func (r memoryTeachers) GetByTeacherID(_ context.Context, teacherID string) (*model.Teacher, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	if t := r.find(func(t *model.Teacher) bool { return t.TeacherID == teacherID }); t != nil {
		return copyTeacher(t), nil
	}
	return nil, ErrNotFound
}

func (r memoryTeachers) update(id string, fn func(*model.Teacher)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t := r.find(func(t *model.Teacher) bool { return t.ID == id })
	if t == nil {
		return ErrNotFound
	}
	fn(t)
	return nil
}

func (r memoryTeachers) UpdateIP(_ context.Context, id, ip string) error {
	return r.update(id, func(t *model.Teacher) { t.IP = ip })
}

func (r memoryTeachers) UpdatePhoto(_ context.Context, id, photoURL string) error {
	return r.update(id, func(t *model.Teacher) { t.PhotoURL = photoURL })
}

func (r memoryTeachers) AppendAttendance(_ context.Context, id string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	err := r.update(id, func(t *model.Teacher) { t.Attendance = append(t.Attendance, entry) })
	if err == ErrNotFound {
		return model.UpdateAck{Acknowledged: true}, nil
	}
	return model.UpdateAck{Acknowledged: true, ModifiedCount: 1}, err
}

type memoryStudents struct{ m *Memory }

func (r memoryStudents) Create(_ context.Context, s *model.Student) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.students {
		if existing.StudentID == s.StudentID || existing.ID == s.ID {
			return ErrDuplicate
		}
	}
	if s.Attendance == nil {
		s.Attendance = []model.AttendanceEntry{}
	}
	r.m.students = append(r.m.students, copyStudent(s))
	return nil
}

func (r memoryStudents) GetByStudentID(_ context.Context, studentID string) (*model.Student, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, s := range r.m.students {
		if s.StudentID == studentID {
			return copyStudent(s), nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryStudents) ListByClass(_ context.Context, class string) ([]model.Student, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []model.Student{}
	for _, s := range r.m.students {
		if s.Class == class {
			out = append(out, *copyStudent(s))
		}
	}
	return out, nil
}

func (r memoryStudents) AppendAttendance(_ context.Context, studentID string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.students {
		if s.StudentID == studentID {
			s.Attendance = append(s.Attendance, entry)
			return model.UpdateAck{Acknowledged: true, ModifiedCount: 1}, nil
		}
	}
	return model.UpdateAck{Acknowledged: true}, nil
}
