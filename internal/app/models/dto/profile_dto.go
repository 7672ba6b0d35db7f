package dto

// UpdateProfileRequest changes the caller's own profile. Absent fields are left as they are.
type UpdateProfileRequest struct {
	Name       *string  `json:"name,omitempty" binding:"omitempty,min=1,max=120"`
	StudentID  *string  `json:"studentId,omitempty" binding:"omitempty,max=32"`
	Department *string  `json:"department,omitempty" binding:"omitempty,max=80"`
	Year       *int32   `json:"year,omitempty" binding:"omitempty,min=1,max=6"`
	Phone      *string  `json:"phone,omitempty" binding:"omitempty,max=20"`
	CGPA       *float64 `json:"cgpa,omitempty" binding:"omitempty,gte=0,lte=10"`
}
