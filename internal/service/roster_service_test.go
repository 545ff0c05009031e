package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterListByClass(t *testing.T) {
	ctx := context.Background()
	roster := NewRosterService(repository.NewMemory().Students(), zerolog.Nop())

	for _, req := range []model.AddStudentRequest{
		{StudentID: "S10", Name: "Ravi", Class: "5A"},
		{StudentID: "S02", Name: "Meera", Class: "5B"},
		{StudentID: "S05", Name: "Kiran", Class: "5A"},
		{StudentID: "S01", Name: "Anu", Class: "5A"},
	} {
		_, err := roster.AddStudent(ctx, req)
		require.NoError(t, err)
	}

	students, err := roster.ListByClass(ctx, "5A")
	require.NoError(t, err)

	ids := []string{}
	for _, s := range students {
		assert.Equal(t, "5A", s.Class)
		ids = append(ids, s.StudentID)
	}
	assert.Equal(t, []string{"S10", "S05", "S01"}, ids)
}

func TestRosterAddStudentDuplicate(t *testing.T) {
	ctx := context.Background()
	roster := NewRosterService(repository.NewMemory().Students(), zerolog.Nop())

	created, err := roster.AddStudent(ctx, model.AddStudentRequest{StudentID: "S1", Name: "Ravi", Class: "5A", GuardianEmail: "p@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "p@example.com", created.GuardianEmail)
	assert.Empty(t, created.Attendance)

	_, err = roster.AddStudent(ctx, model.AddStudentRequest{StudentID: "S1", Name: "Other", Class: "5B"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
