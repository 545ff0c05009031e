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

// TeacherHandler handles teacher registration, login and profile endpoints.
type TeacherHandler struct {
	authService *service.AuthService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(authService *service.AuthService) *TeacherHandler {
	return &TeacherHandler{authService: authService}
}

// AddTeacher godoc
// POST /addTeacher
// Creates a teacher. The password is stored as a bcrypt hash.
func (h *TeacherHandler) AddTeacher(c *gin.Context) {
	var req model.AddTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher, err := h.authService.AddTeacher(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		case errors.Is(err, service.ErrPasswordTooLong):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"password": err.Error()})
			return
		}
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Teacher added successfully", teacher)
}

// LoginTeacher godoc
// POST /loginTeacher
// Authenticates a teacher and returns the profile with a session token.
func (h *TeacherHandler) LoginTeacher(c *gin.Context) {
	var req model.LoginTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.TeacherID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Login successful", res)
}

// GetCurrentTeacher godoc
// POST /getCurrentTeacher
// Returns the profile of the authenticated teacher.
func (h *TeacherHandler) GetCurrentTeacher(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, teacher)
}

// SaveIP godoc
// POST /saveIp
// Registers the request's source IP as the teacher's address for self-attendance.
func (h *TeacherHandler) SaveIP(c *gin.Context) {
	teacher := middleware.CurrentTeacher(c)
	if teacher == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	updated, err := h.authService.SaveIP(c.Request.Context(), teacher, middleware.SourceIP(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIPUnknown):
			response.Fail(c, http.StatusInternalServerError, response.ErrIPUnknown)
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			_ = c.Error(err)
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "IP address saved", updated)
}
