package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/chocoalano/esas-api/internal/domain/company"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepository struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepository{db: db}
}

// GetByID implements company.CompanyRepository.
func (r *companyRepository) GetByID(ctx context.Context, id int64) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var c company.Company
	err := q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company by id: %w", err)
	}
	return c, nil
}

// GetDepartment implements company.CompanyRepository.
func (r *companyRepository) GetDepartment(ctx context.Context, companyID, departmentID int64) (company.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, created_at, updated_at
		FROM departements
		WHERE id = $1 AND company_id = $2
	`

	var d company.Department
	err := q.QueryRow(ctx, query, departmentID, companyID).Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Department{}, company.ErrDepartmentNotFound
		}
		return company.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}
