package resumes

import "time"

// ResumeResponse is the outward-facing representation of a résumé.
type ResumeResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Template  string     `json:"template"`
	Data      ResumeData `json:"data"`
	IsDefault bool       `json:"isDefault"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ResumeSummary is the list-view representation without the full data.
type ResumeSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Template  string    `json:"template"`
	FullName  string    `json:"fullName"`
	IsDefault bool      `json:"isDefault"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:        r.ID,
		Title:     r.Title,
		Template:  r.Template,
		Data:      r.Data,
		IsDefault: r.IsDefault,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toSummary(r Resume) ResumeSummary {
	return ResumeSummary{
		ID:        r.ID,
		Title:     r.Title,
		Template:  r.Template,
		FullName:  r.Data.PersonalInfo.FullName,
		IsDefault: r.IsDefault,
		UpdatedAt: r.UpdatedAt,
	}
}

type createRequest struct {
	Title    string     `json:"title" binding:"max=200"`
	Template string     `json:"template"`
	Data     ResumeData `json:"data"`
}

type updateRequest struct {
	Title             *string     `json:"title" binding:"omitempty,max=200"`
	Template          *string     `json:"template"`
	Data              *ResumeData `json:"data"`
	ExpectedUpdatedAt *time.Time  `json:"expectedUpdatedAt"`
}
