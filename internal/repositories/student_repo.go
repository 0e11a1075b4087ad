package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.Student, error)
	GetByUserID(ctx context.Context, instituteID, userID uuid.UUID) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, instituteID, id uuid.UUID) error
	List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Student, error)
	CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int, error)
}

type studentRepo struct {
	db DB
}

func NewStudentRepo(db DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, user_id, institute_id, student_code, first_name, last_name, date_of_birth, gender, phone, email, address, parent_name, parent_phone, parent_email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, student.ID, student.UserID, student.InstituteID, student.StudentCode, student.FirstName, student.LastName, student.DateOfBirth, student.Gender, student.Phone, student.Email, student.Address, student.ParentName, student.ParentPhone, student.ParentEmail, student.IsActive)
	return err
}

func (r *studentRepo) GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.Student, error) {
	student := &models.Student{}
	query := `
		SELECT id, user_id, institute_id, student_code, first_name, last_name, date_of_birth, gender, phone, email, address, parent_name, parent_phone, parent_email, is_active, created_at, updated_at
		FROM students
		WHERE institute_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, id).Scan(&student.ID, &student.UserID, &student.InstituteID, &student.StudentCode, &student.FirstName, &student.LastName, &student.DateOfBirth, &student.Gender, &student.Phone, &student.Email, &student.Address, &student.ParentName, &student.ParentPhone, &student.ParentEmail, &student.IsActive, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, instituteID, userID uuid.UUID) (*models.Student, error) {
	student := &models.Student{}
	query := `
		SELECT id, user_id, institute_id, student_code, first_name, last_name, date_of_birth, gender, phone, email, address, parent_name, parent_phone, parent_email, is_active, created_at, updated_at
		FROM students
		WHERE institute_id = $1 AND user_id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, userID).Scan(&student.ID, &student.UserID, &student.InstituteID, &student.StudentCode, &student.FirstName, &student.LastName, &student.DateOfBirth, &student.Gender, &student.Phone, &student.Email, &student.Address, &student.ParentName, &student.ParentPhone, &student.ParentEmail, &student.IsActive, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET student_code = $1, first_name = $2, last_name = $3, date_of_birth = $4, gender = $5, phone = $6, address = $7, parent_name = $8, parent_phone = $9, parent_email = $10, is_active = $11, updated_at = NOW()
		WHERE institute_id = $12 AND id = $13
	`
	_, err := r.db.Exec(ctx, query, student.StudentCode, student.FirstName, student.LastName, student.DateOfBirth, student.Gender, student.Phone, student.Address, student.ParentName, student.ParentPhone, student.ParentEmail, student.IsActive, student.InstituteID, student.ID)
	return err
}

func (r *studentRepo) Delete(ctx context.Context, instituteID, id uuid.UUID) error {
	query := `DELETE FROM students WHERE institute_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, instituteID, id)
	return err
}

func (r *studentRepo) List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	query := `
		SELECT id, user_id, institute_id, student_code, first_name, last_name, date_of_birth, gender, phone, email, address, parent_name, parent_phone, parent_email, is_active, created_at, updated_at
		FROM students
		WHERE institute_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, instituteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student := &models.Student{}
		if err := rows.Scan(&student.ID, &student.UserID, &student.InstituteID, &student.StudentCode, &student.FirstName, &student.LastName, &student.DateOfBirth, &student.Gender, &student.Phone, &student.Email, &student.Address, &student.ParentName, &student.ParentPhone, &student.ParentEmail, &student.IsActive, &student.CreatedAt, &student.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

func (r *studentRepo) CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students WHERE institute_id = $1`, instituteID).Scan(&count)
	return count, err
}
