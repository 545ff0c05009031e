package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/media"
	"github.com/stemsi/attendance-backend/internal/middleware"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

// AttendanceHandler handles teacher and student attendance endpoints.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// MarkTeacherAttendance godoc
// POST /markTeacherAttendence
// Marks the authenticated teacher present when the request comes from the registered IP.
func (h *AttendanceHandler) MarkTeacherAttendance(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ack, err := h.attendanceService.MarkTeacher(c.Request.Context(), teacher, middleware.SourceIP(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Attendance marked", ack)
}

// MarkTeacherAttendanceWithFace godoc
// POST /teacher/mark-attendance
// Marks the authenticated teacher present with a captured camera frame as evidence.
func (h *AttendanceHandler) MarkTeacherAttendanceWithFace(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.FaceAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.attendanceService.MarkTeacherWithFace(c.Request.Context(), teacher, middleware.SourceIP(c), req.LiveImage)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Attendance marked", res)
}

// MarkStudentAttendance godoc
// POST /markStuAttendence
// Records a batch of {studentId: status} entries. Each entry is reported
// separately; a failure on one never stops the rest.
func (h *AttendanceHandler) MarkStudentAttendance(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.MarkStudentsRequest
	if fields := validator.BindAttendanceBatch(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	acks, err := h.attendanceService.MarkStudents(c.Request.Context(), teacher, req)
	if err != nil {
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Attendance recorded", acks)
}

func (h *AttendanceHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIPMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrIPMismatch)
	case errors.Is(err, service.ErrFaceMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrFaceMismatch)
	case errors.Is(err, service.ErrFaceNotEnrolled):
		response.Fail(c, http.StatusBadRequest, response.ErrFaceNotEnrolled)
	case errors.Is(err, service.ErrInvalidImage):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"liveImage": "liveImage must be a base64 image data URL"})
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	case errors.Is(err, media.ErrUpstream), errors.Is(err, service.ErrFaceService):
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrUpstream)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
