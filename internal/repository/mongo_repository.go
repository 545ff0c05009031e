package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/attendance-backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document store layout.
const (
	TeachersCollection = "teachers"
	StudentsCollection = "students"
)

// EnsureMongoIndexes creates the unique identifier indexes and the roster lookup index.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TeachersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "teacherId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("teachers index: %w", err)
	}

	_, err = db.Collection(StudentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "studentClass", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("students index: %w", err)
	}
	return nil
}

// TeacherMongoRepository stores teachers as documents with an embedded attendance array.
type TeacherMongoRepository struct {
	col *mongo.Collection
}

var _ TeacherRepository = (*TeacherMongoRepository)(nil)

// NewTeacherMongoRepository creates a new TeacherMongoRepository.
func NewTeacherMongoRepository(db *mongo.Database) *TeacherMongoRepository {
	return &TeacherMongoRepository{col: db.Collection(TeachersCollection)}
}

func (r *TeacherMongoRepository) Create(ctx context.Context, t *model.Teacher) error {
	if t.Attendance == nil {
		t.Attendance = []model.AttendanceEntry{}
	}
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *TeacherMongoRepository) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TeacherMongoRepository) GetByTeacherID(ctx context.Context, teacherID string) (*model.Teacher, error) {
	return r.findOne(ctx, bson.M{"teacherId": teacherID})
}

func (r *TeacherMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Teacher, error) {
	var t model.Teacher
	if err := r.col.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.Attendance == nil {
		t.Attendance = []model.AttendanceEntry{}
	}
	return &t, nil
}

func (r *TeacherMongoRepository) UpdateIP(ctx context.Context, id, ip string) error {
	return r.set(ctx, id, bson.M{"IP": ip})
}

func (r *TeacherMongoRepository) UpdatePhoto(ctx context.Context, id, photoURL string) error {
	return r.set(ctx, id, bson.M{"teacherPhoto": photoURL})
}

func (r *TeacherMongoRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeacherMongoRepository) AppendAttendance(ctx context.Context, id string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"teacher_attendence": entry}},
	)
	if err != nil {
		return model.UpdateAck{}, err
	}
	// The driver reports unacknowledged writes as errors, so a result is always acknowledged.
	return model.UpdateAck{Acknowledged: true, ModifiedCount: res.ModifiedCount}, nil
}

// StudentMongoRepository stores students as documents with an embedded attendance array.
type StudentMongoRepository struct {
	col *mongo.Collection
}

var _ StudentRepository = (*StudentMongoRepository)(nil)

// NewStudentMongoRepository creates a new StudentMongoRepository.
func NewStudentMongoRepository(db *mongo.Database) *StudentMongoRepository {
	return &StudentMongoRepository{col: db.Collection(StudentsCollection)}
}

func (r *StudentMongoRepository) Create(ctx context.Context, s *model.Student) error {
	if s.Attendance == nil {
		s.Attendance = []model.AttendanceEntry{}
	}
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *StudentMongoRepository) GetByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	var s model.Student
	if err := r.col.FindOne(ctx, bson.M{"studentId": studentID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.Attendance == nil {
		s.Attendance = []model.AttendanceEntry{}
	}
	return &s, nil
}

// ListByClass returns the roster in natural (insertion) order.
func (r *StudentMongoRepository) ListByClass(ctx context.Context, class string) ([]model.Student, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"studentClass": class},
		options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	students := []model.Student{}
	for cursor.Next(ctx) {
		var s model.Student
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		if s.Attendance == nil {
			s.Attendance = []model.AttendanceEntry{}
		}
		students = append(students, s)
	}
	return students, cursor.Err()
}

func (r *StudentMongoRepository) AppendAttendance(ctx context.Context, studentID string, entry model.AttendanceEntry) (model.UpdateAck, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"studentId": studentID},
		bson.M{"$push": bson.M{"stu_attendence": entry}},
	)
	if err != nil {
		return model.UpdateAck{}, err
	}
	// The driver reports unacknowledged writes as errors, so a result is always acknowledged.
	return model.UpdateAck{Acknowledged: true, ModifiedCount: res.ModifiedCount}, nil
}
