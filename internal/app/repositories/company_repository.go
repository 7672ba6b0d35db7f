package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
)

// CompanyRepository handles recruiting companies
type CompanyRepository struct {
	companies *Table[models.Company]
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(conn db.DBTX) *CompanyRepository {
	return &CompanyRepository{companies: NewTable[models.Company](conn, "companies", "company", true)}
}

// List returns companies by name, optionally filtered by a name fragment.
func (r *CompanyRepository) List(ctx context.Context, search string) ([]models.Company, error) {
	opts := ListOptions{OrderBy: []string{"name", "id"}}
	if search != "" {
		opts.Where = squirrel.ILike{"name": "%" + search + "%"}
	}
	return r.companies.Query(ctx, opts)
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.companies.GetByID(ctx, id)
}

// Create inserts a company
func (r *CompanyRepository) Create(ctx context.Context, fields map[string]interface{}) (*models.Company, error) {
	return r.companies.Insert(ctx, fields)
}

// Update writes fields to a company
func (r *CompanyRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.Company, error) {
	return r.companies.Update(ctx, id, fields)
}

// Delete removes a company and its postings
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	return r.companies.Delete(ctx, id)
}

// CountCompanies returns the number of companies.
func (r *CompanyRepository) CountCompanies(ctx context.Context) (int64, error) {
	return r.companies.Count(ctx, nil)
}
