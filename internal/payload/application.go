package payload

import (
	"time"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

// SubmitApplicationRequest carries the text fields of the multipart
// submission form; the documents arrive as file parts alongside it.
type SubmitApplicationRequest struct {
	AcademicYear string `json:"academic_year" validate:"required,max=16"`
	Scholarship  string `json:"scholarship"   validate:"required,max=128"`
}

type ApplicationResponse struct {
	Envelope
	Application Application `json:"application"`
}

type ListApplicationsResponse struct {
	Envelope
	Applications []Application `json:"applications"`
}

// Application is the client-facing view of an application record.
type Application struct {
	StudentID    string     `json:"student_id"`
	AcademicYear string     `json:"academic_year"`
	Scholarship  string     `json:"scholarship"`
	Status       string     `json:"status"`
	Documents    []Document `json:"documents"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Document struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func NewApplication(application *model.Application) Application {
	documents := make([]Document, 0, len(application.Documents))
	for _, doc := range application.Documents {
		documents = append(documents, Document{
			Name:        doc.Name,
			URL:         doc.URL,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			UploadedAt:  doc.UploadedAt,
		})
	}

	return Application{
		StudentID:    application.StudentID,
		AcademicYear: application.AcademicYear,
		Scholarship:  application.Scholarship,
		Status:       application.Status,
		Documents:    documents,
		CreatedAt:    application.CreatedAt,
		UpdatedAt:    application.UpdatedAt,
	}
}

func NewApplications(applications []*model.Application) []Application {
	out := make([]Application, 0, len(applications))
	for _, application := range applications {
		out = append(out, NewApplication(application))
	}

	return out
}
