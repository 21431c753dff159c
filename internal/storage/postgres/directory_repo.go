package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/gorm"
)

// DirectoryRepository covers the local people/enrollment records the sync
// jobs reconcile upstream data into.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &e, nil
}

func (r *DirectoryRepository) GetTrainer(ctx context.Context, id uint) (*models.Trainer, error) {
	var t models.Trainer
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get trainer %d: %w", id, err)
	}
	return &t, nil
}

func (r *DirectoryRepository) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	var s models.Student
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return &s, nil
}

func (r *DirectoryRepository) GetEnrollment(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get enrollment %d: %w", id, err)
	}
	return &e, nil
}

func (r *DirectoryRepository) FindEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	err := r.db.WithContext(ctx).First(&e, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find employee by email: %w", err)
	}
	return &e, nil
}

func (r *DirectoryRepository) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) ListActiveEmployees(ctx context.Context) ([]models.Employee, error) {
	var es []models.Employee
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&es).Error; err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return es, nil
}

// ListEmployeesCreatedSince returns employees onboarded after the cutoff,
// for the onboarding completeness check.
func (r *DirectoryRepository) ListEmployeesCreatedSince(ctx context.Context, since time.Time) ([]models.Employee, error) {
	var es []models.Employee
	if err := r.db.WithContext(ctx).Where("created_at >= ?", since).Order("id asc").Find(&es).Error; err != nil {
		return nil, fmt.Errorf("list recent employees: %w", err)
	}
	return es, nil
}

func (r *DirectoryRepository) ListActiveTrainers(ctx context.Context) ([]models.Trainer, error) {
	var ts []models.Trainer
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("list active trainers: %w", err)
	}
	return ts, nil
}

func (r *DirectoryRepository) FindTrainerByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	var t models.Trainer
	err := r.db.WithContext(ctx).First(&t, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find trainer by email: %w", err)
	}
	return &t, nil
}

func (r *DirectoryRepository) CreateTrainer(ctx context.Context, t *models.Trainer) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) UpdateTrainer(ctx context.Context, t *models.Trainer) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("update trainer: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	var s models.Student
	err := r.db.WithContext(ctx).First(&s, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &s, nil
}

func (r *DirectoryRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) UpdateStudent(ctx context.Context, s *models.Student) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// FindEnrollment matches by the natural key used when no mapping exists:
// the student plus the course.
func (r *DirectoryRepository) FindEnrollment(ctx context.Context, studentID uint, courseCode string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).
		First(&e, "student_id = ? AND course_code = ?", studentID, courseCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}

func (r *DirectoryRepository) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}
