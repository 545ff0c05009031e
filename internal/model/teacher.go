package model

import "time"

// Teacher is the authenticated user of the system.
// ID is the internal record reference embedded in session tokens;
// TeacherID is the externally assigned identifier used to log in.
type Teacher struct {
	ID           string            `json:"_id" bson:"_id"`
	TeacherID    string            `json:"teacherId" bson:"teacherId"`
	Name         string            `json:"teacherName" bson:"teacherName"`
	Class        string            `json:"teacherClass" bson:"teacherClass"`
	PhoneNumber  string            `json:"teacherPhoneNumber" bson:"teacherPhoneNumber"`
	PasswordHash string            `json:"-" bson:"passwordHash"`
	IP           string            `json:"IP,omitempty" bson:"IP,omitempty"`
	PhotoURL     string            `json:"teacherPhoto,omitempty" bson:"teacherPhoto,omitempty"`
	Attendance   []AttendanceEntry `json:"teacher_attendence" bson:"teacher_attendence"`
	CreatedAt    time.Time         `json:"createdAt" bson:"createdAt"`
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// AddTeacherRequest is the payload for the administrative add-teacher operation.
type AddTeacherRequest struct {
	TeacherID   string `json:"teacherId" binding:"required,max=64"`
	Name        string `json:"teacherName" binding:"required,max=100"`
	Class       string `json:"teacherClass" binding:"required,max=32"`
	PhoneNumber string `json:"teacherPhoneNumber" binding:"required,min=6,max=20"`
	Password    string `json:"password" binding:"required,bcryptmax"`
}

// LoginTeacherRequest is the payload for teacher authentication.
type LoginTeacherRequest struct {
	TeacherID string `json:"teacherId" binding:"required,max=64"`
	Password  string `json:"password" binding:"required,max=128"`
}

// LoginTeacherResponse is returned after a successful login.
type LoginTeacherResponse struct {
	Teacher *Teacher `json:"teacher"`
	Token   string   `json:"token"`
}

// TeacherPhotoResponse is returned after a profile photo upload.
type TeacherPhotoResponse struct {
	TeacherID       string `json:"teacherId"`
	TeacherPhotoURL string `json:"teacherPhotoUrl"`
}
