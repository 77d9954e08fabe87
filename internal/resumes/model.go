package resumes

import "time"

// PersonalInfo is the contact block at the top of every template.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	Title    string `json:"title"`
}

type Experience struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
}

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Category string `json:"category"`
}

type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Link   string `json:"link"`
}

type Language struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type Reference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ResumeData is the structured content rendered by every template.
// Entry ids are client-generated and only need to be unique within their list.
type ResumeData struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	References     []Reference     `json:"references"`
	Keywords       []string        `json:"keywords"`
}

// Normalize replaces nil lists with empty ones.
func (d *ResumeData) Normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Experience {
		if d.Experience[i].Achievements == nil {
			d.Experience[i].Achievements = []string{}
		}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		if d.Projects[i].Technologies == nil {
			d.Projects[i].Technologies = []string{}
		}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Languages == nil {
		d.Languages = []Language{}
	}
	if d.References == nil {
		d.References = []Reference{}
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
}

// Resume is a stored résumé owned by a user.
type Resume struct {
	ID        string
	UserID    string
	Title     string
	Template  string
	Data      ResumeData
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	DefaultTemplate = "modern"
	DefaultTitle    = "Untitled Resume"
)

// Templates lists the visual templates a résumé can be rendered with.
var Templates = []string{
	"modern",
	"classic",
	"minimal",
	"creative",
	"professional",
	"executive",
	"technical",
	"elegant",
	"compact",
	"academic",
	"bold",
	"timeline",
}

// IsValidTemplate reports whether id names a known template.
func IsValidTemplate(id string) bool {
	for _, t := range Templates {
		if t == id {
			return true
		}
	}
	return false
}
