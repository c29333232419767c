package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"course-management-backend/apierr"
	"course-management-backend/authz"
	"course-management-backend/dto"
	"course-management-backend/events"
	"course-management-backend/models"
	"course-management-backend/repository"
	"course-management-backend/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	events      *events.Recorder
	auth        AuthService
	users       UserService
	courses     CourseService
	lessons     LessonService
	enrollments *enrollmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	log := testutil.Logger(t)
	rec := &events.Recorder{}

	userRepo := repository.NewUserRepo(db, log)
	courseRepo := repository.NewCourseRepo(db, log)
	lessonRepo := repository.NewLessonRepo(db, log)
	enrollmentRepo := repository.NewEnrollmentRepo(db, log)

	return &fixture{
		db:          db,
		events:      rec,
		auth:        NewAuthService(log, userRepo, testutil.Tokens(), rec),
		users:       NewUserService(log, userRepo, rec),
		courses:     NewCourseService(log, courseRepo, rec),
		lessons:     NewLessonService(log, lessonRepo, courseRepo),
		enrollments: NewEnrollmentService(log, enrollmentRepo, userRepo, courseRepo, rec).(*enrollmentService),
	}
}

func identity(u *models.User) authz.Identity {
	return authz.Identity{UserID: u.ID, Role: u.Role}
}

func assertKind(t *testing.T, want apierr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apierr.KindOf(err), err.Error())
}

func TestAuth_RegisterDefaultsAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Equal(t, []string{events.UserRegistered}, f.events.Names())

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "pw2"})
	assertKind(t, apierr.KindConflict, err)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "carol", Password: "pw", Role: "Wizard"})
	assertKind(t, apierr.KindValidation, err)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "  ", Password: "pw"})
	assertKind(t, apierr.KindValidation, err)

	var stored models.User
	require.NoError(t, f.db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "pw1", stored.Password)
}

func TestAuth_RegisterRejectsSoftDeletedUsername(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "alice", models.RoleStudent)
	require.NoError(t, f.db.Model(u).Update("is_deleted", true).Error)

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{Username: "alice", Password: "pw"})
	assertKind(t, apierr.KindConflict, err)
}

func TestAuth_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "bob", models.RoleInstructor)

	res, err := f.auth.Login(ctx, dto.LoginRequest{Username: "bob", Password: "bob"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, models.RoleInstructor, res.User.Role)

	claims, err := testutil.Tokens().Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, claims.Role)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "bob", Password: "wrong"})
	assertKind(t, apierr.KindUnauthorized, err)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "x"})
	assertKind(t, apierr.KindUnauthorized, err)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "bob"})
	assertKind(t, apierr.KindValidation, err)

	require.NoError(t, f.db.Model(u).Update("is_deleted", true).Error)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "bob", Password: "bob"})
	assertKind(t, apierr.KindUnauthorized, err)
}

func TestAuth_PasswordByteLimitAndTrimmedLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, dto.RegisterRequest{Username: "eve", Password: strings.Repeat("é", 40)})
	assertKind(t, apierr.KindValidation, err)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: " eve ", Password: strings.Repeat("a", 72)})
	require.NoError(t, err)
	res, err := f.auth.Login(ctx, dto.LoginRequest{Username: "  eve", Password: strings.Repeat("a", 72)})
	require.NoError(t, err)
	assert.Equal(t, "eve", res.User.Username)

	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	err = f.users.Update(ctx, identity(admin), res.User.ID, dto.UpdateUserRequest{ID: res.User.ID, Username: "eve", Password: strings.Repeat("ü", 37)})
	assertKind(t, apierr.KindValidation, err)
}

func TestUsers_AccessRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleStudent)
	bob := testutil.CreateUser(t, f.db, "bob", models.RoleStudent)

	got, err := f.users.GetByID(ctx, identity(admin), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = f.users.GetByID(ctx, identity(alice), bob.ID)
	assertKind(t, apierr.KindForbidden, err)

	_, err = f.users.GetByID(ctx, identity(alice), alice.ID)
	require.NoError(t, err)

	_, err = f.users.GetByID(ctx, identity(admin), 999)
	assertKind(t, apierr.KindNotFound, err)

	_, err = f.users.List(ctx, identity(alice))
	assertKind(t, apierr.KindForbidden, err)
	all, err := f.users.List(ctx, identity(admin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.users.Create(ctx, identity(alice), dto.RegisterRequest{Username: "x", Password: "x"})
	assertKind(t, apierr.KindForbidden, err)
	created, err := f.users.Create(ctx, identity(admin), dto.RegisterRequest{Username: "ivy", Password: "x", Role: "Instructor"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, created.Role)
}

func TestUsers_UpdateRoleOnlyByAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleStudent)

	req := dto.UpdateUserRequest{ID: alice.ID, Username: "alice", Password: "new", Role: "Admin"}
	require.NoError(t, f.users.Update(ctx, identity(alice), alice.ID, req))
	got, err := f.users.GetByID(ctx, identity(admin), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role, "students cannot promote themselves")

	req.Role = "Instructor"
	require.NoError(t, f.users.Update(ctx, identity(admin), alice.ID, req))
	got, err = f.users.GetByID(ctx, identity(admin), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, got.Role)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "new"})
	require.NoError(t, err)

	err = f.users.Update(ctx, identity(admin), alice.ID, dto.UpdateUserRequest{ID: alice.ID + 1, Username: "a", Password: "b"})
	assertKind(t, apierr.KindValidation, err)

	err = f.users.Update(ctx, identity(admin), 999, dto.UpdateUserRequest{ID: 999, Username: "a", Password: "b"})
	assertKind(t, apierr.KindNotFound, err)

	err = f.users.Update(ctx, identity(admin), alice.ID, dto.UpdateUserRequest{ID: alice.ID, Username: "admin", Password: "b"})
	assertKind(t, apierr.KindConflict, err)
}

func TestUsers_SoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	alice := testutil.CreateUser(t, f.db, "alice", models.RoleStudent)

	assertKind(t, apierr.KindForbidden, f.users.Delete(ctx, identity(alice), alice.ID))
	require.NoError(t, f.users.Delete(ctx, identity(admin), alice.ID))
	assertKind(t, apierr.KindNotFound, f.users.Delete(ctx, identity(admin), alice.ID))

	_, err := f.users.GetByID(ctx, identity(admin), alice.ID)
	assertKind(t, apierr.KindNotFound, err)

	var count int64
	f.db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 1, count, "row is retained")
}

func TestCourses_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	ivy := testutil.CreateUser(t, f.db, "ivy", models.RoleInstructor)
	sam := testutil.CreateUser(t, f.db, "sam", models.RoleStudent)

	_, err := f.courses.Create(ctx, identity(sam), dto.CreateCourseRequest{Title: "Go"})
	assertKind(t, apierr.KindForbidden, err)
	_, err = f.courses.Create(ctx, identity(ivy), dto.CreateCourseRequest{Title: "Go", Price: decimal.NewFromInt(-1)})
	assertKind(t, apierr.KindValidation, err)

	c, err := f.courses.Create(ctx, identity(ivy), dto.CreateCourseRequest{Title: "Go", Price: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	assert.NotNil(t, c.Lessons)

	_, err = f.lessons.Create(ctx, identity(ivy), dto.CreateLessonRequest{Title: "Ch1", CourseID: c.ID})
	require.NoError(t, err)

	got, err := f.courses.GetByID(ctx, identity(sam), c.ID)
	require.NoError(t, err)
	require.Len(t, got.Lessons, 1)
	assert.Equal(t, "Ch1", got.Lessons[0].Title)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Price))

	upd := dto.UpdateCourseRequest{ID: c.ID, Title: "Go 2", Description: "d", Price: decimal.NewFromInt(5)}
	require.NoError(t, f.courses.Update(ctx, identity(ivy), c.ID, upd))
	require.NoError(t, f.courses.Update(ctx, identity(ivy), c.ID, upd))
	got, err = f.courses.GetByID(ctx, identity(sam), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", got.Title)

	assertKind(t, apierr.KindValidation, f.courses.Update(ctx, identity(ivy), c.ID, dto.UpdateCourseRequest{ID: 42, Title: "x"}))
	assertKind(t, apierr.KindNotFound, f.courses.Update(ctx, identity(ivy), 42, dto.UpdateCourseRequest{ID: 42, Title: "x"}))

	assertKind(t, apierr.KindForbidden, f.courses.Delete(ctx, identity(ivy), c.ID))
	require.NoError(t, f.courses.Delete(ctx, identity(admin), c.ID))
	assertKind(t, apierr.KindNotFound, f.courses.Delete(ctx, identity(admin), c.ID))
	_, err = f.courses.GetByID(ctx, identity(admin), c.ID)
	assertKind(t, apierr.KindNotFound, err)

	list, err := f.courses.List(ctx, identity(sam))
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	assert.Equal(t, []string{events.CourseCreated, events.CourseDeleted}, f.events.Names())
}

func TestLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	ivy := testutil.CreateUser(t, f.db, "ivy", models.RoleInstructor)
	sam := testutil.CreateUser(t, f.db, "sam", models.RoleStudent)
	c := testutil.CreateCourse(t, f.db, "Go", "1")
	empty := testutil.CreateCourse(t, f.db, "Empty", "1")

	_, err := f.lessons.Create(ctx, identity(ivy), dto.CreateLessonRequest{Title: "Ch1", CourseID: 999})
	assertKind(t, apierr.KindValidation, err)
	_, err = f.lessons.Create(ctx, identity(sam), dto.CreateLessonRequest{Title: "Ch1", CourseID: c.ID})
	assertKind(t, apierr.KindForbidden, err)

	l, err := f.lessons.Create(ctx, identity(ivy), dto.CreateLessonRequest{Title: "Ch1", Content: "hello", CourseID: c.ID})
	require.NoError(t, err)

	byCourse, err := f.lessons.ListByCourse(ctx, identity(sam), c.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	_, err = f.lessons.ListByCourse(ctx, identity(sam), empty.ID)
	assertKind(t, apierr.KindNotFound, err)

	err = f.lessons.Update(ctx, identity(ivy), l.ID, dto.UpdateLessonRequest{ID: l.ID, Title: "Ch1b", CourseID: 999})
	assertKind(t, apierr.KindValidation, err)
	require.NoError(t, f.lessons.Update(ctx, identity(ivy), l.ID, dto.UpdateLessonRequest{ID: l.ID, Title: "Ch1b", CourseID: empty.ID}))
	got, err := f.lessons.GetByID(ctx, identity(sam), l.ID)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, got.CourseID)
	assert.Empty(t, got.Content, "full replace clears omitted content")

	assertKind(t, apierr.KindForbidden, f.lessons.Delete(ctx, identity(ivy), l.ID))
	require.NoError(t, f.lessons.Delete(ctx, identity(admin), l.ID))
	assertKind(t, apierr.KindNotFound, f.lessons.Delete(ctx, identity(admin), l.ID))

	all, err := f.lessons.List(ctx, identity(sam))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEnrollments_CreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fixed := time.Date(2024, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 7200))
	f.enrollments.now = func() time.Time { return fixed }

	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	ivy := testutil.CreateUser(t, f.db, "ivy", models.RoleInstructor)
	sam := testutil.CreateUser(t, f.db, "sam", models.RoleStudent)
	tom := testutil.CreateUser(t, f.db, "tom", models.RoleStudent)
	c := testutil.CreateCourse(t, f.db, "Go", "1")

	e, err := f.enrollments.Create(ctx, identity(sam), dto.CreateEnrollmentRequest{UserID: sam.ID, CourseID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, fixed.UTC(), e.EnrollDate)

	_, err = f.enrollments.Create(ctx, identity(sam), dto.CreateEnrollmentRequest{UserID: tom.ID, CourseID: c.ID})
	assertKind(t, apierr.KindForbidden, err)
	_, err = f.enrollments.Create(ctx, identity(ivy), dto.CreateEnrollmentRequest{UserID: ivy.ID, CourseID: c.ID})
	assertKind(t, apierr.KindForbidden, err)

	_, err = f.enrollments.Create(ctx, identity(sam), dto.CreateEnrollmentRequest{UserID: sam.ID, CourseID: c.ID})
	assertKind(t, apierr.KindConflict, err)

	_, err = f.enrollments.Create(ctx, identity(admin), dto.CreateEnrollmentRequest{UserID: tom.ID, CourseID: 999})
	assertKind(t, apierr.KindValidation, err)
	_, err = f.enrollments.Create(ctx, identity(admin), dto.CreateEnrollmentRequest{UserID: 999, CourseID: c.ID})
	assertKind(t, apierr.KindValidation, err)

	require.NoError(t, f.db.Model(&models.Course{}).Where("id = ?", c.ID).Update("is_deleted", true).Error)
	_, err = f.enrollments.Create(ctx, identity(admin), dto.CreateEnrollmentRequest{UserID: tom.ID, CourseID: c.ID})
	assertKind(t, apierr.KindValidation, err)

	var count int64
	f.db.Model(&models.Enrollment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestEnrollments_ReadAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	sam := testutil.CreateUser(t, f.db, "sam", models.RoleStudent)
	tom := testutil.CreateUser(t, f.db, "tom", models.RoleStudent)
	c := testutil.CreateCourse(t, f.db, "Go", "1")
	e := testutil.CreateEnrollment(t, f.db, sam.ID, c.ID)

	got, err := f.enrollments.GetByID(ctx, identity(sam), e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.NotNil(t, got.Course)
	assert.Equal(t, "Go", got.Course.Title)

	_, err = f.enrollments.GetByID(ctx, identity(tom), e.ID)
	assertKind(t, apierr.KindForbidden, err)
	_, err = f.enrollments.GetByID(ctx, identity(tom), 999)
	assertKind(t, apierr.KindNotFound, err)

	_, err = f.enrollments.List(ctx, identity(sam))
	assertKind(t, apierr.KindForbidden, err)
	all, err := f.enrollments.List(ctx, identity(admin))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mine, err := f.enrollments.ListByUser(ctx, identity(sam), sam.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	_, err = f.enrollments.ListByUser(ctx, identity(sam), tom.ID)
	assertKind(t, apierr.KindForbidden, err)
	_, err = f.enrollments.ListByUser(ctx, identity(tom), tom.ID)
	assertKind(t, apierr.KindNotFound, err)

	assertKind(t, apierr.KindForbidden, f.enrollments.Cancel(ctx, identity(tom), e.ID))
	require.NoError(t, f.enrollments.Cancel(ctx, identity(sam), e.ID))
	assertKind(t, apierr.KindNotFound, f.enrollments.Cancel(ctx, identity(sam), e.ID))
	assert.Equal(t, []string{events.EnrollmentCancelled}, f.events.Names())
}

// racingEnrollmentRepo reports no existing enrollment and then loses the
// insert to a concurrent request.
type racingEnrollmentRepo struct {
	repository.EnrollmentRepo
}

func (racingEnrollmentRepo) Exists(context.Context, uint, uint) (bool, error) { return false, nil }
func (racingEnrollmentRepo) Create(context.Context, *models.Enrollment) error {
	return repository.ErrDuplicate
}

type racingUserRepo struct {
	repository.UserRepo
}

func (racingUserRepo) UsernameExists(context.Context, string) (bool, error) { return false, nil }
func (racingUserRepo) Create(context.Context, *models.User) error { return repository.ErrDuplicate }
func (racingUserRepo) Update(context.Context, *models.User) error { return repository.ErrDuplicate }

func TestDuplicateOnInsertBecomesConflict(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	rec := &events.Recorder{}

	userRepo := repository.NewUserRepo(db, log)
	courseRepo := repository.NewCourseRepo(db, log)
	sam := testutil.CreateUser(t, db, "sam", models.RoleStudent)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	c := testutil.CreateCourse(t, db, "Go", "1")

	enrollments := NewEnrollmentService(log, racingEnrollmentRepo{repository.NewEnrollmentRepo(db, log)}, userRepo, courseRepo, rec)
	_, err := enrollments.Create(ctx, identity(sam), dto.CreateEnrollmentRequest{UserID: sam.ID, CourseID: c.ID})
	assertKind(t, apierr.KindConflict, err)

	racing := racingUserRepo{userRepo}
	_, err = NewAuthService(log, racing, testutil.Tokens(), rec).Register(ctx, dto.RegisterRequest{Username: "newbie", Password: "pw"})
	assertKind(t, apierr.KindConflict, err)

	err = NewUserService(log, racing, rec).Update(ctx, identity(admin), sam.ID, dto.UpdateUserRequest{ID: sam.ID, Username: "renamed", Password: "pw"})
	assertKind(t, apierr.KindConflict, err)

	assert.Empty(t, rec.Names())
}
