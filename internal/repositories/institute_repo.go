package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

// InstituteRepository manages the tenant table itself. It is the only
// repository besides the directory that takes no institute filter; its
// callers are guarded to super_admin.
type InstituteRepository interface {
	Create(ctx context.Context, institute *models.Institute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Institute, error)
	Update(ctx context.Context, institute *models.Institute) error
	UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Institute, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

type instituteRepo struct {
	db DB
}

func NewInstituteRepo(db DB) InstituteRepository {
	return &instituteRepo{db: db}
}

func (r *instituteRepo) Create(ctx context.Context, institute *models.Institute) error {
	query := `
		INSERT INTO institutes (id, name, email, phone, address, subscription_status, subscription_expires_at, max_students, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, institute.ID, institute.Name, institute.Email, institute.Phone, institute.Address, institute.SubscriptionStatus, institute.SubscriptionExpiresAt, institute.MaxStudents)
	return err
}

func (r *instituteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Institute, error) {
	institute := &models.Institute{}
	query := `
		SELECT id, name, email, phone, address, subscription_status, subscription_expires_at, max_students, created_at, updated_at
		FROM institutes
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&institute.ID, &institute.Name, &institute.Email, &institute.Phone, &institute.Address, &institute.SubscriptionStatus, &institute.SubscriptionExpiresAt, &institute.MaxStudents, &institute.CreatedAt, &institute.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return institute, nil
}

func (r *instituteRepo) Update(ctx context.Context, institute *models.Institute) error {
	query := `
		UPDATE institutes
		SET name = $1, email = $2, phone = $3, address = $4, subscription_status = $5, subscription_expires_at = $6, max_students = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query, institute.Name, institute.Email, institute.Phone, institute.Address, institute.SubscriptionStatus, institute.SubscriptionExpiresAt, institute.MaxStudents, institute.ID)
	return err
}

func (r *instituteRepo) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error {
	query := `UPDATE institutes SET subscription_status = $1, subscription_expires_at = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.Exec(ctx, query, status, expiresAt, id)
	return err
}

func (r *instituteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM institutes WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *instituteRepo) List(ctx context.Context, limit, offset int) ([]*models.Institute, error) {
	query := `
		SELECT id, name, email, phone, address, subscription_status, subscription_expires_at, max_students, created_at, updated_at
		FROM institutes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var institutes []*models.Institute
	for rows.Next() {
		institute := &models.Institute{}
		if err := rows.Scan(&institute.ID, &institute.Name, &institute.Email, &institute.Phone, &institute.Address, &institute.SubscriptionStatus, &institute.SubscriptionExpiresAt, &institute.MaxStudents, &institute.CreatedAt, &institute.UpdatedAt); err != nil {
			return nil, err
		}
		institutes = append(institutes, institute)
	}
	return institutes, nil
}

func (r *instituteRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM institutes`).Scan(&count)
	return count, err
}

func (r *instituteRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM institutes WHERE subscription_status = $1`, status).Scan(&count)
	return count, err
}
