package postgresql

import (
	"context"
	"fmt"

	"github.com/chocoalano/esas-api/internal/domain/employee"
	"github.com/chocoalano/esas-api/internal/pkg/database"
)

type employmentRepository struct {
	db *database.DB
}

func NewEmploymentRepository(db *database.DB) employee.EmploymentRepository {
	return &employmentRepository{db: db}
}

// IsInDepartment implements employee.EmploymentRepository.
func (r *employmentRepository) IsInDepartment(ctx context.Context, userID, departmentID int64) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_employes WHERE user_id = $1 AND departement_id = $2)`,
		userID, departmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check department membership: %w", err)
	}
	return exists, nil
}
