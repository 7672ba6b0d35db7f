package dto

import (
	"time"

	"github.com/yigit/campushub/internal/app/models"
)

// CompanyRequest creates or updates a company
type CompanyRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty" binding:"omitempty,url"`
}

// JobRequest creates or updates a job posting
type JobRequest struct {
	CompanyID           int64             `json:"companyId" binding:"required,min=1"`
	Title               string            `json:"title" binding:"required,max=200"`
	Description         *string           `json:"description,omitempty"`
	MinCGPA             *float64          `json:"minCgpa,omitempty" binding:"omitempty,gte=0,lte=10"`
	EligibleDepartments []string          `json:"eligibleDepartments,omitempty" binding:"omitempty,dive,required"`
	EligibleYears       []int32           `json:"eligibleYears,omitempty" binding:"omitempty,dive,min=1,max=6"`
	PackageLPA          *float64          `json:"packageLpa,omitempty" binding:"omitempty,gte=0"`
	Deadline            *time.Time        `json:"deadline,omitempty"`
	Status              *models.JobStatus `json:"status,omitempty"`
	ExpectedUpdatedAt   *time.Time        `json:"expectedUpdatedAt,omitempty"`
}

// ApplyRequest is a student's application to a job
type ApplyRequest struct {
	ResumeURL   *string `json:"resumeUrl,omitempty" binding:"omitempty,url"`
	CoverLetter *string `json:"coverLetter,omitempty" binding:"omitempty,max=5000"`
}

// UpdateApplicationStatusRequest moves an application to a new status
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

// CreatePlacementResultRequest records an offer for a selected candidate
type CreatePlacementResultRequest struct {
	UserID         int64    `json:"userId" binding:"required,min=1"`
	PackageOffered *float64 `json:"packageOffered,omitempty" binding:"omitempty,gte=0"`
	Joined         bool     `json:"joined"`
}

// UpdatePlacementResultRequest changes the joined flag or the offered package
type UpdatePlacementResultRequest struct {
	Joined         *bool    `json:"joined,omitempty"`
	PackageOffered *float64 `json:"packageOffered,omitempty" binding:"omitempty,gte=0"`
}

// JobDetailResponse is one posting as seen by the caller.
type JobDetailResponse struct {
	Job           models.JobPosting            `json:"job"`
	Company       models.Company               `json:"company"`
	CanApply      bool                         `json:"canApply"`
	DeadlinePast  bool                         `json:"deadlinePassed"`
	MyApplication *models.PlacementApplication `json:"myApplication,omitempty"`
	Eligibility   *models.Eligibility          `json:"eligibility,omitempty"`
}

// ApplicantStatusOptions lists an application with the statuses it may move to.
type ApplicantStatusOptions struct {
	models.Applicant
	NextStatuses []models.ApplicationStatus `json:"nextStatuses"`
}
