package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
)

// UserRepository defines the credential store operations. Verification state
// changes are single conditional updates so that concurrent submissions of
// the same code have exactly one winner.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByStudentID(ctx context.Context, studentID string) (*model.User, error)

	// SetVerification arms a fresh one-time code and link token, replacing
	// any prior pair in the same update.
	SetVerification(ctx context.Context, email, code, token string, expiresAt time.Time) error

	// MarkVerifiedByCode flips the record to verified if and only if the
	// code matches, is unexpired, and the record is still unverified. The
	// same update clears the code and token, so a consumed code can never
	// be replayed. It reports whether this call performed the transition.
	MarkVerifiedByCode(ctx context.Context, email, code string) (bool, error)

	// MarkVerifiedByToken is MarkVerifiedByCode matched against the opaque
	// link token instead of the numeric code.
	MarkVerifiedByToken(ctx context.Context, email, token string) (bool, error)

	// ClearExpiredCode purges a code whose expiry has passed so a stale
	// value cannot be replayed later.
	ClearExpiredCode(ctx context.Context, email string) error

	// UpdatePasswordHash replaces the stored credential after a completed
	// password reset.
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error

	DeleteUserByEmail(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error)
}

// FilterUsersParams defines the parameters for filtering and paginating users.
type FilterUsersParams struct {
	Email    *string
	Verified *bool
	Role     *string
	Limit    uint64
	Offset   uint64
	SortBy   *string
	SortDesc bool
}

const userCollection = "users"

// DuplicateKeyField reports which unique field a duplicate-key error hit,
// "email", "student_id" or "" when the error is not a duplicate-key error.
// The two uniqueness constraints produce different user-facing messages, so
// callers need to know which one fired.
func DuplicateKeyField(err error) string {
	if !mongo.IsDuplicateKeyError(err) {
		return ""
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "student_id"):
		return "student_id"
	case strings.Contains(msg, "email"):
		return "email"
	default:
		return ""
	}
}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the mongo-backed credential store. Both the
// email and the join key carry unique indexes; concurrent registrations with
// the same value are resolved by the index, not by pre-checks.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"student_id": studentID})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) SetVerification(
	ctx context.Context,
	email, code, token string,
	expiresAt time.Time,
) error {
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"verification_code":  code,
			"verification_token": token,
			"code_expires_at":    expiresAt,
			"updated_at":         time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *userMongoRepository) MarkVerifiedByCode(ctx context.Context, email, code string) (bool, error) {
	return r.markVerified(ctx, bson.M{
		"email":             email,
		"verified":          false,
		"verification_code": code,
		"code_expires_at":   bson.M{"$gt": time.Now()},
	})
}

func (r *userMongoRepository) MarkVerifiedByToken(ctx context.Context, email, token string) (bool, error) {
	return r.markVerified(ctx, bson.M{
		"email":              email,
		"verified":           false,
		"verification_token": token,
		"code_expires_at":    bson.M{"$gt": time.Now()},
	})
}

func (r *userMongoRepository) markVerified(ctx context.Context, filter bson.M) (bool, error) {
	now := time.Now()
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		filter,
		bson.M{
			"$set": bson.M{
				"verified":    true,
				"verified_at": now,
				"updated_at":  now,
			},
			"$unset": bson.M{
				"verification_code":  "",
				"verification_token": "",
				"code_expires_at":    "",
			},
		},
	)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}

func (r *userMongoRepository) ClearExpiredCode(ctx context.Context, email string) error {
	_, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{
			"email":           email,
			"verified":        false,
			"code_expires_at": bson.M{"$lte": time.Now()},
		},
		bson.M{
			"$set": bson.M{"updated_at": time.Now()},
			"$unset": bson.M{
				"verification_code":  "",
				"verification_token": "",
				"code_expires_at":    "",
			},
		},
	)

	return err
}

func (r *userMongoRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *userMongoRepository) DeleteUserByEmail(ctx context.Context, email string) (bool, error) {
	result, err := r.db.Collection(userCollection).DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}

	return result.DeletedCount == 1, nil
}

func (r *userMongoRepository) ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error) {
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
	if params.Email != nil {
		filter["email"] = *params.Email
	}
	if params.Verified != nil {
		filter["verified"] = *params.Verified
	}
	if params.Role != nil {
		filter["role"] = *params.Role
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
