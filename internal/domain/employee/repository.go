package employee

import "context"

// EmploymentRepository answers membership questions about user_employes.
type EmploymentRepository interface {
	IsInDepartment(ctx context.Context, userID, departmentID int64) (bool, error)
}
