// Package authz holds the role matrix that gates every resource operation.
package authz

import (
	"course-management-backend/apierr"
	"course-management-backend/models"
)

// Identity is the authenticated caller, threaded explicitly into services.
type Identity struct {
	UserID uint
	Role   models.Role
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type Operation string

const (
	CourseCreate Operation = "course.create"
	CourseRead   Operation = "course.read"
	CourseUpdate Operation = "course.update"
	CourseDelete Operation = "course.delete"

	LessonCreate Operation = "lesson.create"
	LessonRead   Operation = "lesson.read"
	LessonUpdate Operation = "lesson.update"
	LessonDelete Operation = "lesson.delete"

	UserCreate Operation = "user.create"
	UserList   Operation = "user.list"
	UserRead   Operation = "user.read"
	UserUpdate Operation = "user.update"
	UserDelete Operation = "user.delete"

	EnrollmentCreate     Operation = "enrollment.create"
	EnrollmentList       Operation = "enrollment.list"
	EnrollmentRead       Operation = "enrollment.read"
	EnrollmentCancel     Operation = "enrollment.cancel"
	EnrollmentListByUser Operation = "enrollment.list_by_user"
)

type rule struct {
	anyOf   []models.Role // allowed regardless of ownership
	ownerOf []models.Role // allowed only on resources the caller owns
	denyMsg string
}

var (
	editors = []models.Role{models.RoleInstructor}
	readers = []models.Role{models.RoleInstructor, models.RoleStudent}
)

// Admin is allowed everything and is not listed.
var matrix = map[Operation]rule{
	CourseCreate: {anyOf: editors},
	CourseRead:   {anyOf: readers},
	CourseUpdate: {anyOf: editors},
	CourseDelete: {},

	LessonCreate: {anyOf: editors},
	LessonRead:   {anyOf: readers},
	LessonUpdate: {anyOf: editors},
	LessonDelete: {},

	UserCreate: {},
	UserList:   {},
	UserRead:   {ownerOf: readers, denyMsg: "you can only view your own user record"},
	UserUpdate: {ownerOf: readers, denyMsg: "you can only update your own user record"},
	UserDelete: {},

	EnrollmentCreate:     {ownerOf: []models.Role{models.RoleStudent}, denyMsg: "you can only enroll yourself"},
	EnrollmentList:       {},
	EnrollmentRead:       {ownerOf: readers, denyMsg: "you can only view your own enrollments"},
	EnrollmentCancel:     {ownerOf: readers, denyMsg: "you can only cancel your own enrollments"},
	EnrollmentListByUser: {ownerOf: readers, denyMsg: "you can only view your own enrollments"},
}

// Allowed decides whether id may perform op on a resource owned by ownerID.
// ownerID is ignored for operations without ownership rules.
func Allowed(id Identity, op Operation, ownerID uint) bool {
	if id.IsAdmin() {
		return true
	}
	r, ok := matrix[op]
	if !ok {
		return false
	}
	if hasRole(r.anyOf, id.Role) {
		return true
	}
	return id.UserID != 0 && id.UserID == ownerID && hasRole(r.ownerOf, id.Role)
}

// Authorize is Allowed reported as an error: nil on ALLOW, a Forbidden
// apierr.Error on DENY.
func Authorize(id Identity, op Operation, ownerID uint) error {
	if Allowed(id, op, ownerID) {
		return nil
	}
	if msg := matrix[op].denyMsg; msg != "" {
		return apierr.Forbidden("%s", msg)
	}
	return apierr.Forbidden("role %q is not permitted to perform %s", id.Role, op)
}

func hasRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
