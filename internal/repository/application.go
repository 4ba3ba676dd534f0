package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

// ApplicationRepository defines the scholarship application store operations.
type ApplicationRepository interface {
	// UpsertApplication inserts the application, or replaces the scholarship,
	// documents and status of an existing one for the same student and
	// academic year. Resubmission resets the status to pending.
	UpsertApplication(ctx context.Context, application *model.Application) (*model.Application, error)

	// GetApplication returns the student's application for the given academic
	// year, or the most recent one when academicYear is empty.
	GetApplication(ctx context.Context, studentID, academicYear string) (*model.Application, error)

	SetApplicationStatus(ctx context.Context, studentID, academicYear, status string) (bool, error)
	ListApplications(ctx context.Context, params FilterApplicationsParams) ([]*model.Application, error)
}

// FilterApplicationsParams defines the parameters for filtering and
// paginating applications.
type FilterApplicationsParams struct {
	Status       *string
	AcademicYear *string
	Limit        uint64
	Offset       uint64
	SortBy       *string
	SortDesc     bool
}

const applicationCollection = "applications"

type applicationMongoRepository struct {
	db *mongo.Database
}

// NewApplicationMongoRepository creates the mongo-backed application store.
// The compound unique index keeps one application per student per academic
// year; a concurrent double submit collapses into a single upserted document.
func NewApplicationMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ApplicationRepository {
	collection := db.Collection(applicationCollection)

	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "student_id", Value: 1},
			{Key: "academic_year", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, index)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application index")
	}

	return &applicationMongoRepository{db: db}
}

func (r *applicationMongoRepository) UpsertApplication(
	ctx context.Context,
	application *model.Application,
) (*model.Application, error) {
	now := time.Now()

	result := r.db.Collection(applicationCollection).FindOneAndUpdate(
		ctx,
		bson.M{
			"student_id":    application.StudentID,
			"academic_year": application.AcademicYear,
		},
		bson.M{
			"$set": bson.M{
				"scholarship": application.Scholarship,
				"status":      model.ApplicationPending,
				"documents":   application.Documents,
				"updated_at":  now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var stored model.Application
	if err := result.Decode(&stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *applicationMongoRepository) GetApplication(
	ctx context.Context,
	studentID, academicYear string,
) (*model.Application, error) {
	filter := bson.M{"student_id": studentID}
	findOptions := options.FindOne()

	if academicYear != "" {
		filter["academic_year"] = academicYear
	} else {
		findOptions.SetSort(bson.D{{Key: "academic_year", Value: -1}})
	}

	result := r.db.Collection(applicationCollection).FindOne(ctx, filter, findOptions)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var application model.Application
	if err := result.Decode(&application); err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationMongoRepository) SetApplicationStatus(
	ctx context.Context,
	studentID, academicYear, status string,
) (bool, error) {
	result, err := r.db.Collection(applicationCollection).UpdateOne(
		ctx,
		bson.M{
			"student_id":    studentID,
			"academic_year": academicYear,
		},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}

func (r *applicationMongoRepository) ListApplications(
	ctx context.Context,
	params FilterApplicationsParams,
) ([]*model.Application, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	sortBy := "created_at"
	if params.SortBy != nil {
		sortBy = *params.SortBy
	}

	sortOrder := -1
	if !params.SortDesc {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortBy, Value: sortOrder}})

	filter := bson.M{}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.AcademicYear != nil {
		filter["academic_year"] = *params.AcademicYear
	}

	cursor, err := r.db.Collection(applicationCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var applications []*model.Application
	for cursor.Next(ctx) {
		var application model.Application
		if err := cursor.Decode(&application); err != nil {
			return nil, err
		}
		applications = append(applications, &application)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return applications, nil
}
