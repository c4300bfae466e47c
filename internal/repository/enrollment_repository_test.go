package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepositoryConflictPairs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"course_a", "course_b"}).
		AddRow("alg", "db")
	mock.ExpectQuery("SELECT DISTINCT e1.course_id AS course_a").
		WithArgs("alg", "db", "alg", "db").
		WillReturnRows(rows)

	pairs, err := repo.ConflictPairs(context.Background(), []string{"alg", "db"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "alg", pairs[0].CourseA)
	assert.Equal(t, "db", pairs[0].CourseB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryConflictPairsEmptySet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	pairs, err := repo.ConflictPairs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryStudentIDsByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id"}).AddRow("s1").AddRow("s2")
	mock.ExpectQuery("SELECT student_id FROM enrollments").
		WithArgs("alg").
		WillReturnRows(rows)

	ids, err := repo.StudentIDsByCourse(context.Background(), "alg")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRosterByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_no", "full_name", "department_id"}).
		AddRow("s1", "2026001", "Student One", "dep-1").
		AddRow("s2", "2026002", "Student Two", "dep-1")
	mock.ExpectQuery("JOIN students s ON").
		WithArgs("alg").
		WillReturnRows(rows)

	students, err := repo.RosterByCourse(context.Background(), "alg")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "2026001", students[0].StudentNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}
