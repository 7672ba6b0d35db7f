package models

import "time"

// Company is a recruiting organisation.
type Company struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" example:"Acme Corp"`
	Description *string   `json:"description,omitempty" db:"description"`
	Website     *string   `json:"website,omitempty" db:"website"`
	LogoURL     *string   `json:"logoUrl,omitempty" db:"logo_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// JobPosting is an opening offered by a company through the placement cell.
type JobPosting struct {
	ID                  int64      `json:"id" db:"id"`
	CompanyID           int64      `json:"companyId" db:"company_id"`
	Title               string     `json:"title" db:"title" example:"Graduate Engineer"`
	Description         *string    `json:"description,omitempty" db:"description"`
	JDFileURL           *string    `json:"jdFileUrl,omitempty" db:"jd_file_url"`
	MinCGPA             *float64   `json:"minCgpa,omitempty" db:"min_cgpa"`
	EligibleDepartments []string   `json:"eligibleDepartments" db:"eligible_departments"`
	EligibleYears       []int32    `json:"eligibleYears" db:"eligible_years"`
	PackageLPA          *float64   `json:"packageLpa,omitempty" db:"package_lpa"`
	Deadline            *time.Time `json:"deadline,omitempty" db:"deadline"`
	Status              JobStatus  `json:"status" db:"status" example:"open"`
	CreatedBy           *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// PlacementApplication is a student's application to a job posting.
type PlacementApplication struct {
	ID          int64             `json:"id" db:"id"`
	JobID       int64             `json:"jobId" db:"job_id"`
	UserID      int64             `json:"userId" db:"user_id"`
	ResumeURL   *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	CoverLetter *string           `json:"coverLetter,omitempty" db:"cover_letter"`
	Status      ApplicationStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"appliedAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// PlacementResult records an offer made to a selected candidate.
type PlacementResult struct {
	ID             int64     `json:"id" db:"id"`
	JobID          int64     `json:"jobId" db:"job_id"`
	UserID         int64     `json:"userId" db:"user_id"`
	OfferLetterURL *string   `json:"offerLetterUrl,omitempty" db:"offer_letter_url"`
	PackageOffered *float64  `json:"packageOffered,omitempty" db:"package_offered"`
	Joined         bool      `json:"joined" db:"joined"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// JobListing is a job posting with its company.
type JobListing struct {
	JobPosting
	CompanyName    string  `json:"companyName" db:"company_name"`
	CompanyLogoURL *string `json:"companyLogoUrl,omitempty" db:"company_logo_url"`
}

// ApplicationDetail is an application with its job and company, for "my applications".
type ApplicationDetail struct {
	PlacementApplication
	JobTitle    string    `json:"jobTitle" db:"job_title"`
	JobStatus   JobStatus `json:"jobStatus" db:"job_status"`
	CompanyName string    `json:"companyName" db:"company_name"`
}

// Applicant is an application with the applicant's profile, for the placement cell.
type Applicant struct {
	PlacementApplication
	Name       string   `json:"name" db:"name"`
	Email      string   `json:"email" db:"email"`
	StudentID  *string  `json:"studentId,omitempty" db:"student_id"`
	Department *string  `json:"department,omitempty" db:"department"`
	Year       *int32   `json:"year,omitempty" db:"year"`
	CGPA       *float64 `json:"cgpa,omitempty" db:"cgpa"`
	JobTitle   string   `json:"jobTitle" db:"job_title"`
}

// PlacementResultDetail is a result with candidate, job and company names.
type PlacementResultDetail struct {
	PlacementResult
	Name        string `json:"name" db:"name"`
	Email       string `json:"email" db:"email"`
	JobTitle    string `json:"jobTitle" db:"job_title"`
	CompanyName string `json:"companyName" db:"company_name"`
}
