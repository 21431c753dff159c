package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/reconcile"
)

// Directory is the slice of the local record store the sync upserters
// need. *postgres.DirectoryRepository satisfies it.
type Directory interface {
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	ListActiveEmployees(ctx context.Context) ([]models.Employee, error)
	ListEmployeesCreatedSince(ctx context.Context, since time.Time) ([]models.Employee, error)

	GetTrainer(ctx context.Context, id uint) (*models.Trainer, error)
	FindTrainerByEmail(ctx context.Context, email string) (*models.Trainer, error)
	CreateTrainer(ctx context.Context, t *models.Trainer) error
	UpdateTrainer(ctx context.Context, t *models.Trainer) error
	ListActiveTrainers(ctx context.Context) ([]models.Trainer, error)

	GetStudent(ctx context.Context, id uint) (*models.Student, error)
	FindStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	UpdateStudent(ctx context.Context, s *models.Student) error

	GetEnrollment(ctx context.Context, id uint) (*models.Enrollment, error)
	FindEnrollment(ctx context.Context, studentID uint, courseCode string) (*models.Enrollment, error)
	CreateEnrollment(ctx context.Context, e *models.Enrollment) error
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
}

// External/internal type tags stored on mapping records.
const (
	ExternalTypePayrollEmployee = "payroll:employee"
	ExternalTypeLMSTrainer      = "lms:trainer"
	ExternalTypeLMSStudent      = "lms:student"
	ExternalTypeLMSEnrollment   = "lms:enrolment"

	InternalTypeEmployee   = "employee"
	InternalTypeTrainer    = "trainer"
	InternalTypeStudent    = "student"
	InternalTypeEnrollment = "enrollment"
)

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func attrBool(attrs map[string]any, key string, def bool) bool {
	if v, ok := attrs[key].(bool); ok {
		return v
	}
	return def
}

// EmployeeUpserter merges payroll employee records into the local
// directory. Natural key is the work email.
type EmployeeUpserter struct {
	dir Directory
}

func NewEmployeeUpserter(dir Directory) *EmployeeUpserter {
	return &EmployeeUpserter{dir: dir}
}

func (u *EmployeeUpserter) ExternalType() string { return ExternalTypePayrollEmployee }
func (u *EmployeeUpserter) InternalType() string { return InternalTypeEmployee }

func (u *EmployeeUpserter) FindByNaturalKey(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, nil
	}
	e, err := u.dir.FindEmployeeByEmail(ctx, email)
	if err != nil || e == nil {
		return 0, err
	}
	return e.ID, nil
}

func (u *EmployeeUpserter) Create(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, fmt.Errorf("payroll employee %s has no email", rec.ExternalID)
	}
	e := &models.Employee{
		FirstName:  attrString(rec.Attributes, "firstName"),
		LastName:   attrString(rec.Attributes, "lastName"),
		Email:      email,
		Position:   attrString(rec.Attributes, "position"),
		Department: attrString(rec.Attributes, "department"),
		Active:     attrBool(rec.Attributes, "active", true),
	}
	if err := u.dir.CreateEmployee(ctx, e); err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (u *EmployeeUpserter) Update(ctx context.Context, internalID uint, rec reconcile.Record) error {
	e, err := u.dir.GetEmployee(ctx, internalID)
	if err != nil {
		return err
	}
	e.FirstName = attrString(rec.Attributes, "firstName")
	e.LastName = attrString(rec.Attributes, "lastName")
	e.Position = attrString(rec.Attributes, "position")
	e.Department = attrString(rec.Attributes, "department")
	e.Active = attrBool(rec.Attributes, "active", e.Active)
	if email := attrString(rec.Attributes, "email"); email != "" {
		e.Email = email
	}
	return u.dir.UpdateEmployee(ctx, e)
}

// TrainerUpserter merges LMS trainers. Natural key is email.
type TrainerUpserter struct {
	dir Directory
}

func NewTrainerUpserter(dir Directory) *TrainerUpserter {
	return &TrainerUpserter{dir: dir}
}

func (u *TrainerUpserter) ExternalType() string { return ExternalTypeLMSTrainer }
func (u *TrainerUpserter) InternalType() string { return InternalTypeTrainer }

func (u *TrainerUpserter) FindByNaturalKey(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, nil
	}
	t, err := u.dir.FindTrainerByEmail(ctx, email)
	if err != nil || t == nil {
		return 0, err
	}
	return t.ID, nil
}

func (u *TrainerUpserter) Create(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, fmt.Errorf("lms trainer %s has no email", rec.ExternalID)
	}
	t := &models.Trainer{
		Name:   attrString(rec.Attributes, "name"),
		Email:  email,
		Active: attrBool(rec.Attributes, "active", true),
	}
	if err := u.dir.CreateTrainer(ctx, t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (u *TrainerUpserter) Update(ctx context.Context, internalID uint, rec reconcile.Record) error {
	t, err := u.dir.GetTrainer(ctx, internalID)
	if err != nil {
		return err
	}
	t.Name = attrString(rec.Attributes, "name")
	t.Active = attrBool(rec.Attributes, "active", t.Active)
	if email := attrString(rec.Attributes, "email"); email != "" {
		t.Email = email
	}
	return u.dir.UpdateTrainer(ctx, t)
}

// StudentUpserter merges LMS students. Natural key is email.
type StudentUpserter struct {
	dir Directory
}

func NewStudentUpserter(dir Directory) *StudentUpserter {
	return &StudentUpserter{dir: dir}
}

func (u *StudentUpserter) ExternalType() string { return ExternalTypeLMSStudent }
func (u *StudentUpserter) InternalType() string { return InternalTypeStudent }

func (u *StudentUpserter) FindByNaturalKey(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, nil
	}
	s, err := u.dir.FindStudentByEmail(ctx, email)
	if err != nil || s == nil {
		return 0, err
	}
	return s.ID, nil
}

func (u *StudentUpserter) Create(ctx context.Context, rec reconcile.Record) (uint, error) {
	email := attrString(rec.Attributes, "email")
	if email == "" {
		return 0, fmt.Errorf("lms student %s has no email", rec.ExternalID)
	}
	s := &models.Student{
		Name:   attrString(rec.Attributes, "name"),
		Email:  email,
		Cohort: attrString(rec.Attributes, "cohort"),
	}
	if err := u.dir.CreateStudent(ctx, s); err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (u *StudentUpserter) Update(ctx context.Context, internalID uint, rec reconcile.Record) error {
	s, err := u.dir.GetStudent(ctx, internalID)
	if err != nil {
		return err
	}
	s.Name = attrString(rec.Attributes, "name")
	s.Cohort = attrString(rec.Attributes, "cohort")
	if email := attrString(rec.Attributes, "email"); email != "" {
		s.Email = email
	}
	return u.dir.UpdateStudent(ctx, s)
}

// EnrollmentUpserter merges LMS enrolments. The upstream references its
// student by LMS id, so the student mapping must already exist; the
// natural key is (local student, course code).
type EnrollmentUpserter struct {
	dir      Directory
	mappings reconcile.MappingStore
}

func NewEnrollmentUpserter(dir Directory, mappings reconcile.MappingStore) *EnrollmentUpserter {
	return &EnrollmentUpserter{dir: dir, mappings: mappings}
}

func (u *EnrollmentUpserter) ExternalType() string { return ExternalTypeLMSEnrollment }
func (u *EnrollmentUpserter) InternalType() string { return InternalTypeEnrollment }

func (u *EnrollmentUpserter) localStudent(ctx context.Context, rec reconcile.Record) (uint, error) {
	extStudent := attrString(rec.Attributes, "studentId")
	if extStudent == "" {
		if n, ok := rec.Attributes["studentId"].(float64); ok {
			extStudent = strconv.FormatInt(int64(n), 10)
		}
	}
	if extStudent == "" {
		return 0, fmt.Errorf("enrolment %s has no studentId", rec.ExternalID)
	}
	m, err := u.mappings.FindByExternal(ctx, extStudent, ExternalTypeLMSStudent)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 0, fmt.Errorf("enrolment %s references unsynced student %s", rec.ExternalID, extStudent)
	}
	return m.InternalID, nil
}

func (u *EnrollmentUpserter) FindByNaturalKey(ctx context.Context, rec reconcile.Record) (uint, error) {
	studentID, err := u.localStudent(ctx, rec)
	if err != nil {
		return 0, err
	}
	course := attrString(rec.Attributes, "courseCode")
	if course == "" {
		return 0, nil
	}
	e, err := u.dir.FindEnrollment(ctx, studentID, course)
	if err != nil || e == nil {
		return 0, err
	}
	return e.ID, nil
}

func (u *EnrollmentUpserter) Create(ctx context.Context, rec reconcile.Record) (uint, error) {
	studentID, err := u.localStudent(ctx, rec)
	if err != nil {
		return 0, err
	}
	e := &models.Enrollment{
		StudentID:   studentID,
		CourseCode:  attrString(rec.Attributes, "courseCode"),
		Status:      attrString(rec.Attributes, "status"),
		CompletedAt: attrTime(rec.Attributes, "completedAt"),
	}
	if err := u.dir.CreateEnrollment(ctx, e); err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (u *EnrollmentUpserter) Update(ctx context.Context, internalID uint, rec reconcile.Record) error {
	e, err := u.dir.GetEnrollment(ctx, internalID)
	if err != nil {
		return err
	}
	e.Status = attrString(rec.Attributes, "status")
	if done := attrTime(rec.Attributes, "completedAt"); done != nil {
		e.CompletedAt = done
	}
	return u.dir.UpdateEnrollment(ctx, e)
}

func attrTime(attrs map[string]any, key string) *time.Time {
	s := attrString(attrs, key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
