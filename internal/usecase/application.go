package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/objectstore"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
)

// ApplicationUsecase defines the scholarship application use cases.
type ApplicationUsecase interface {
	// SubmitApplication uploads the supporting documents and upserts the
	// application for the student's academic year. Resubmitting replaces
	// the document set and resets the status to pending.
	SubmitApplication(ctx context.Context, params SubmitApplicationParams) (*model.Application, error)

	GetApplication(ctx context.Context, studentID, academicYear string) (*model.Application, error)
	ListApplications(ctx context.Context, params repository.FilterApplicationsParams) ([]*model.Application, error)
}

// SubmitApplicationParams defines the parameters for submitting an
// application.
type SubmitApplicationParams struct {
	StudentID    string
	AcademicYear string
	Scholarship  string
	Documents    []DocumentUpload
}

// DocumentUpload is a single supporting document received from the client.
type DocumentUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

var ErrApplicationNotFound = errors.New("application not found")

type applicationUsecase struct {
	userRepo        repository.UserRepository
	applicationRepo repository.ApplicationRepository
	uploader        objectstore.Uploader
}

func NewApplicationUsecase(
	userRepo repository.UserRepository,
	applicationRepo repository.ApplicationRepository,
	uploader objectstore.Uploader,
) ApplicationUsecase {
	return &applicationUsecase{
		userRepo:        userRepo,
		applicationRepo: applicationRepo,
		uploader:        uploader,
	}
}

func (u *applicationUsecase) SubmitApplication(
	ctx context.Context,
	params SubmitApplicationParams,
) (*model.Application, error) {
	if _, err := u.userRepo.GetUserByStudentID(ctx, params.StudentID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	folder := "applications/" + params.StudentID
	now := time.Now()

	documents := make([]model.Document, 0, len(params.Documents))
	for _, doc := range params.Documents {
		key := objectstore.StorageKey(folder, doc.Name)
		url, err := u.uploader.Upload(ctx, doc.Data, key, doc.ContentType)
		if err != nil {
			return nil, err
		}

		documents = append(documents, model.Document{
			Name:        doc.Name,
			URL:         url,
			ContentType: doc.ContentType,
			Size:        int64(len(doc.Data)),
			UploadedAt:  now,
		})
	}

	return u.applicationRepo.UpsertApplication(ctx, &model.Application{
		StudentID:    params.StudentID,
		AcademicYear: params.AcademicYear,
		Scholarship:  params.Scholarship,
		Documents:    documents,
	})
}

func (u *applicationUsecase) GetApplication(
	ctx context.Context,
	studentID, academicYear string,
) (*model.Application, error) {
	application, err := u.applicationRepo.GetApplication(ctx, studentID, academicYear)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrApplicationNotFound
		}

		return nil, err
	}

	return application, nil
}

func (u *applicationUsecase) ListApplications(
	ctx context.Context,
	params repository.FilterApplicationsParams,
) ([]*model.Application, error) {
	return u.applicationRepo.ListApplications(ctx, params)
}
