package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (Company, error)

	// GetDepartment returns ErrDepartmentNotFound unless the department belongs to companyID.
	GetDepartment(ctx context.Context, companyID, departmentID int64) (Department, error)
}
