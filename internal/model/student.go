package model

import "time"

// Student represents a pupil on a class roster.
type Student struct {
	ID            string            `json:"_id" bson:"_id"`
	StudentID     string            `json:"studentId" bson:"studentId"`
	Name          string            `json:"studentName" bson:"studentName"`
	Class         string            `json:"studentClass" bson:"studentClass"`
	FatherName    string            `json:"fatherName" bson:"fatherName"`
	MotherName    string            `json:"motherName" bson:"motherName"`
	PhoneNumber   string            `json:"studentPhoneNumber" bson:"studentPhoneNumber"`
	GuardianEmail string            `json:"guardianEmail,omitempty" bson:"guardianEmail,omitempty"`
	PhotoURL      string            `json:"studentPhoto,omitempty" bson:"studentPhoto,omitempty"`
	Attendance    []AttendanceEntry `json:"stu_attendence" bson:"stu_attendence"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
}

// AddStudentRequest is the payload for the administrative add-student operation.
type AddStudentRequest struct {
	StudentID     string `json:"studentId" binding:"required,max=64"`
	Name          string `json:"studentName" binding:"required,max=100"`
	Class         string `json:"studentClass" binding:"required,max=32"`
	FatherName    string `json:"fatherName" binding:"required,max=100"`
	MotherName    string `json:"motherName" binding:"required,max=100"`
	PhoneNumber   string `json:"studentPhoneNumber" binding:"required,min=6,max=20"`
	GuardianEmail string `json:"guardianEmail" binding:"omitempty,email"`
}
