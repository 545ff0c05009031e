package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/faceclient"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/notify"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Test doubles ──────────────────────────────────────────────────────────

type sentMail struct{ to, subject, body string }

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (d *recordingDispatcher) Notify(_ context.Context, to, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMail{to, subject, body})
	if d.err != nil {
		return d.err
	}
	return nil
}

type memoryMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryMedia) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[name] = data
	return "https://media.test/" + name, nil
}

type stubMatcher struct {
	result *faceclient.CompareResult
	err    error
	calls  int
}

func (s *stubMatcher) Compare(_ context.Context, _, _ string) (*faceclient.CompareResult, error) {
	s.calls++
	return s.result, s.err
}

type fixture struct {
	mem        *repository.Memory
	dispatcher *recordingDispatcher
	media      *memoryMedia
	svc        *AttendanceService
	teacher    *model.Teacher
}

func testConfig() *config.Config {
	return &config.Config{
		MailFromName:     "ABC Public School",
		BatchConcurrency: 1,
		RosterScoped:     true,
		MaxUploadBytes:   1 << 20,
	}
}

func newFixture(t *testing.T, cfg *config.Config, faces FaceMatcher) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := repository.NewMemory()

	teacher := &model.Teacher{ID: "ref-1", TeacherID: "T1", Name: "Asha", Class: "5A", IP: "10.0.0.7"}
	require.NoError(t, mem.Teachers().Create(ctx, teacher))

	for _, s := range []model.Student{
		{ID: "s1", StudentID: "S1", Name: "Ravi", Class: "5A", GuardianEmail: "ravi.parent@example.com"},
		{ID: "s2", StudentID: "S2", Name: "Meera", Class: "5A", GuardianEmail: "meera.parent@example.com"},
		{ID: "s3", StudentID: "S3", Name: "Kiran", Class: "6B", GuardianEmail: "kiran.parent@example.com"},
		{ID: "s4", StudentID: "S4", Name: "Anu", Class: "5A"},
	} {
		s := s
		require.NoError(t, mem.Students().Create(ctx, &s))
	}

	f := &fixture{mem: mem, dispatcher: &recordingDispatcher{}, media: &memoryMedia{}, teacher: teacher}
	f.svc = NewAttendanceService(cfg, mem.Teachers(), mem.Students(), f.dispatcher, f.media, faces, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC) }
	return f
}

func (f *fixture) studentHistory(t *testing.T, id string) []model.AttendanceEntry {
	t.Helper()
	s, err := f.mem.Students().GetByStudentID(context.Background(), id)
	require.NoError(t, err)
	return s.Attendance
}

func (f *fixture) teacherHistory(t *testing.T) []model.AttendanceEntry {
	t.Helper()
	got, err := f.mem.Teachers().GetByID(context.Background(), f.teacher.ID)
	require.NoError(t, err)
	return got.Attendance
}

// ─── Self-attendance ───────────────────────────────────────────────────────

func TestMarkTeacherRequiresMatchingIP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), nil)

	_, err := f.svc.MarkTeacher(ctx, f.teacher, "10.0.0.8")
	assert.ErrorIs(t, err, ErrIPMismatch)
	assert.Empty(t, f.teacherHistory(t))

	ack, err := f.svc.MarkTeacher(ctx, f.teacher, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, model.UpdateAck{Acknowledged: true, ModifiedCount: 1}, ack)

	history := f.teacherHistory(t)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusPresent, history[0].Status)
}

func TestMarkTeacherWithoutRegisteredIPFailsClosed(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	noIP := *f.teacher
	noIP.IP = ""

	_, err := f.svc.MarkTeacher(context.Background(), &noIP, "")
	assert.ErrorIs(t, err, ErrIPMismatch)
}

func liveImage() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00})
}

func TestMarkTeacherWithFaceStoresEvidence(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	res, err := f.svc.MarkTeacherWithFace(context.Background(), f.teacher, "10.0.0.7", liveImage())
	require.NoError(t, err)
	assert.False(t, res.FaceVerified)
	assert.Contains(t, res.EvidenceURL, "https://media.test/attendance-T1-")
	assert.EqualValues(t, 1, res.ModifiedCount)
	assert.Len(t, f.media.objects, 1)
	assert.Len(t, f.teacherHistory(t), 1)
}

func TestMarkTeacherWithFaceVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("not enrolled", func(t *testing.T) {
		matcher := &stubMatcher{}
		f := newFixture(t, testConfig(), matcher)
		_, err := f.svc.MarkTeacherWithFace(ctx, f.teacher, "10.0.0.7", liveImage())
		assert.ErrorIs(t, err, ErrFaceNotEnrolled)
		assert.Zero(t, matcher.calls)
	})

	t.Run("mismatch", func(t *testing.T) {
		matcher := &stubMatcher{result: &faceclient.CompareResult{Similarity: 0.2, Threshold: 0.5}}
		f := newFixture(t, testConfig(), matcher)
		f.teacher.PhotoURL = "https://media.test/teacher.jpg"

		_, err := f.svc.MarkTeacherWithFace(ctx, f.teacher, "10.0.0.7", liveImage())
		assert.ErrorIs(t, err, ErrFaceMismatch)
		assert.Empty(t, f.teacherHistory(t))
	})

	t.Run("match", func(t *testing.T) {
		matcher := &stubMatcher{result: &faceclient.CompareResult{Similarity: 0.9, Match: true, Threshold: 0.5}}
		f := newFixture(t, testConfig(), matcher)
		f.teacher.PhotoURL = "https://media.test/teacher.jpg"

		res, err := f.svc.MarkTeacherWithFace(ctx, f.teacher, "10.0.0.7", liveImage())
		require.NoError(t, err)
		assert.True(t, res.FaceVerified)
		require.NotNil(t, res.Similarity)
		assert.InDelta(t, 0.9, *res.Similarity, 1e-9)
		assert.Len(t, f.teacherHistory(t), 1)
	})

	t.Run("service down", func(t *testing.T) {
		matcher := &stubMatcher{err: errors.New("connection refused")}
		f := newFixture(t, testConfig(), matcher)
		f.teacher.PhotoURL = "https://media.test/teacher.jpg"

		_, err := f.svc.MarkTeacherWithFace(ctx, f.teacher, "10.0.0.7", liveImage())
		assert.ErrorIs(t, err, ErrFaceService)
	})
}

func TestMarkTeacherWithFaceRejectsBadImage(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	_, err := f.svc.MarkTeacherWithFace(context.Background(), f.teacher, "10.0.0.7", "data:image/jpeg;base64,%%%")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = f.svc.MarkTeacherWithFace(context.Background(), f.teacher, "10.0.0.7",
		"data:image/bmp;base64,"+base64.StdEncoding.EncodeToString([]byte("bm")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

// ─── Student batch ─────────────────────────────────────────────────────────

func TestMarkStudentsNotifiesOnlyAbsentAndAppendsDespiteFailure(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	f.dispatcher.err = notify.ErrDelivery

	acks, err := f.svc.MarkStudents(context.Background(), f.teacher, model.MarkStudentsRequest{
		"S2": model.StatusPresent,
		"S1": model.StatusAbsent,
	})
	require.NoError(t, err)

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "ravi.parent@example.com", f.dispatcher.sent[0].to)
	assert.Contains(t, f.dispatcher.sent[0].body, "Ravi")

	require.Len(t, acks, 2)
	assert.Equal(t, "S1", acks[0].StudentID)
	assert.False(t, acks[0].Notified)
	assert.NotEmpty(t, acks[0].NotifyError)
	assert.EqualValues(t, 1, acks[0].ModifiedCount)
	assert.Equal(t, "S2", acks[1].StudentID)
	assert.EqualValues(t, 1, acks[1].ModifiedCount)

	s1 := f.studentHistory(t, "S1")
	require.Len(t, s1, 1)
	assert.Equal(t, model.StatusAbsent, s1[0].Status)
	s2 := f.studentHistory(t, "S2")
	require.Len(t, s2, 1)
	assert.Equal(t, model.StatusPresent, s2[0].Status)
}

func TestMarkStudentsReportsPerEntryFailures(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	acks, err := f.svc.MarkStudents(context.Background(), f.teacher, model.MarkStudentsRequest{
		"S1":  model.StatusAbsent,
		"S3":  model.StatusPresent,
		"S4":  model.StatusAbsent,
		"S99": model.StatusPresent,
	})
	require.NoError(t, err)
	require.Len(t, acks, 4)

	byID := map[string]model.StudentAck{}
	for _, a := range acks {
		byID[a.StudentID] = a
	}

	assert.True(t, byID["S1"].Notified)
	assert.EqualValues(t, 1, byID["S1"].ModifiedCount)

	assert.Equal(t, model.AckErrNotInRoster, byID["S3"].ErrorCode)
	assert.Empty(t, f.studentHistory(t, "S3"))

	// No guardian email: nothing to send, entry still recorded.
	assert.False(t, byID["S4"].Notified)
	assert.Empty(t, byID["S4"].NotifyError)
	assert.Len(t, f.studentHistory(t, "S4"), 1)

	assert.Equal(t, model.AckErrNotFound, byID["S99"].ErrorCode)
	assert.False(t, byID["S99"].Acknowledged)

	assert.Len(t, f.dispatcher.sent, 1)
}

func TestMarkStudentsUnscopedAllowsOtherClasses(t *testing.T) {
	cfg := testConfig()
	cfg.RosterScoped = false
	f := newFixture(t, cfg, nil)

	acks, err := f.svc.MarkStudents(context.Background(), f.teacher, model.MarkStudentsRequest{"S3": model.StatusHoliday})
	require.NoError(t, err)
	require.Len(t, acks, 1)
	assert.Empty(t, acks[0].ErrorCode)
	assert.Len(t, f.studentHistory(t, "S3"), 1)
}

func TestMarkStudentsParallelKeepsOrder(t *testing.T) {
	cfg := testConfig()
	cfg.BatchConcurrency = 4
	f := newFixture(t, cfg, nil)

	acks, err := f.svc.MarkStudents(context.Background(), f.teacher, model.MarkStudentsRequest{
		"S4": model.StatusPresent,
		"S2": model.StatusAbsent,
		"S1": model.StatusHoliday,
	})
	require.NoError(t, err)

	ids := []string{}
	for _, a := range acks {
		ids = append(ids, a.StudentID)
		assert.EqualValues(t, 1, a.ModifiedCount)
	}
	assert.Equal(t, []string{"S1", "S2", "S4"}, ids)
	assert.Len(t, f.dispatcher.sent, 1)
}
