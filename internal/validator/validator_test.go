package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func TestValidateAttendanceBatch(t *testing.T) {
	assert.Nil(t, ValidateAttendanceBatch(model.MarkStudentsRequest{
		"S1": model.StatusAbsent,
		"S2": model.StatusPresent,
		"S3": model.StatusHoliday,
	}))

	assert.NotEmpty(t, ValidateAttendanceBatch(model.MarkStudentsRequest{}))
	assert.NotEmpty(t, ValidateAttendanceBatch(model.MarkStudentsRequest{"S1": "late"}))
	assert.NotEmpty(t, ValidateAttendanceBatch(model.MarkStudentsRequest{"": model.StatusPresent}))
}

func bindContext(body string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindRejectsUnknownFields(t *testing.T) {
	var req model.LoginTeacherRequest
	fields := Bind(bindContext(`{"teacherId":"T1","password":"x","role":"admin"}`), &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}

func TestBindUsesJSONFieldNames(t *testing.T) {
	var req model.LoginTeacherRequest
	fields := Bind(bindContext(`{"password":"x"}`), &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "teacherId")
}

func TestBindAttendanceBatch(t *testing.T) {
	var ok model.MarkStudentsRequest
	assert.Nil(t, BindAttendanceBatch(bindContext(`{"S1":"absent","S2":"present"}`), &ok))
	assert.Equal(t, model.StatusAbsent, ok["S1"])

	var bad model.MarkStudentsRequest
	assert.NotNil(t, BindAttendanceBatch(bindContext(`{"S1":"sick"}`), &bad))

	var notString model.MarkStudentsRequest
	assert.NotNil(t, BindAttendanceBatch(bindContext(`{"S1":1}`), &notString))
}

func TestBcryptMaxCountsBytes(t *testing.T) {
	body := func(password string) string {
		return `{"teacherId":"T1","teacherName":"Asha","teacherClass":"5A","teacherPhoneNumber":"9000000000","password":"` + password + `"}`
	}

	var ok model.AddTeacherRequest
	assert.Nil(t, Bind(bindContext(body("x")), &ok))
	assert.Nil(t, Bind(bindContext(body(strings.Repeat("a", model.MaxPasswordBytes))), &ok))

	var long model.AddTeacherRequest
	fields := Bind(bindContext(body(strings.Repeat("a", model.MaxPasswordBytes+1))), &long)
	require.NotNil(t, fields)
	assert.Equal(t, "password must be at most 72 bytes long", fields["password"])

	var multi model.AddTeacherRequest
	fields = Bind(bindContext(body(strings.Repeat("é", 37))), &multi)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "password")
}
