package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/middleware"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

// StudentHandler handles roster endpoints.
type StudentHandler struct {
	rosterService *service.RosterService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(rosterService *service.RosterService) *StudentHandler {
	return &StudentHandler{rosterService: rosterService}
}

// AddStudent godoc
// POST /addStudent
// Creates a student on a class roster.
func (h *StudentHandler) AddStudent(c *gin.Context) {
	var req model.AddStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.rosterService.AddStudent(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Student added successfully", student)
}

// RetrieveStudents godoc
// POST /retriveStudents
// Lists the students whose class label matches the authenticated teacher's class.
func (h *StudentHandler) RetrieveStudents(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	students, err := h.rosterService.ListByClass(c.Request.Context(), teacher.Class)
	if err != nil {
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, students)
}
