// Package testutil provides an in-memory database, a quiet logger and token
// helpers for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"course-management-backend/auth"
	"course-management-backend/database"
	"course-management-backend/logger"
	"course-management-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret"

var dbSeq atomic.Int64

func init() {
	auth.Cost = bcrypt.MinCost
}

// Logger returns a logger that writes through t.Log.
func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	return &logger.Logger{SugaredLogger: zaptest.NewLogger(t).Sugar()}
}

// OpenDB returns a migrated, private in-memory SQLite database with foreign
// keys enforced. It is closed when the test ends.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Connect("sqlite", dsn, Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func Tokens() *auth.TokenManager {
	return auth.NewTokenManager(JWTSecret, time.Hour)
}

// Token issues a bearer token for the user.
func Token(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := Tokens().Issue(u.ID, u.Role)
	require.NoError(t, err)
	return token
}

// CreateUser inserts an active user whose password equals its username.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(username)
	require.NoError(t, err)
	u := &models.User{Username: username, Password: hash, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCourse(t *testing.T, db *gorm.DB, title string, price string) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, Description: title + " course", Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateLesson(t *testing.T, db *gorm.DB, courseID uint, title string) *models.Lesson {
	t.Helper()
	l := &models.Lesson{Title: title, Content: title + " content", CourseID: courseID}
	require.NoError(t, db.Create(l).Error)
	return l
}

func CreateEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	t.Helper()
	e := &models.Enrollment{UserID: userID, CourseID: courseID, EnrollDate: time.Now().UTC()}
	require.NoError(t, db.Create(e).Error)
	return e
}
