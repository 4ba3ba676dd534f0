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

// PasswordResetTokenRepository defines the reset grant operations. Expired
// grants are reaped by a TTL index on expires_at; the expiry check in the
// reset flow does not depend on the reaper having run.
type PasswordResetTokenRepository interface {
	CreateToken(ctx context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error)
	GetTokenByJTI(ctx context.Context, jti string) (*model.PasswordResetToken, error)
	MarkTokenAsUsed(ctx context.Context, jti string) error

	// InvalidateStudentTokens marks every live grant of one student as used,
	// so issuing a new reset link revokes all previously mailed ones.
	InvalidateStudentTokens(ctx context.Context, studentID string) error
}

const passwordResetTokenCollection = "password_reset_tokens"

type passwordResetTokenMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetTokenMongoRepository creates the mongo-backed reset grant
// store.
func NewPasswordResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetTokenRepository {
	collection := db.Collection(passwordResetTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset token indexes")
	}

	return &passwordResetTokenMongoRepository{db: db}
}

func (r *passwordResetTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	token.Used = false

	result, err := r.db.Collection(passwordResetTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *passwordResetTokenMongoRepository) GetTokenByJTI(
	ctx context.Context,
	jti string,
) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.db.Collection(passwordResetTokenCollection).FindOne(ctx, bson.M{"jti": jti}).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *passwordResetTokenMongoRepository) MarkTokenAsUsed(ctx context.Context, jti string) error {
	_, err := r.db.Collection(passwordResetTokenCollection).UpdateOne(
		ctx,
		bson.M{"jti": jti},
		bson.M{"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		}},
	)

	return err
}

func (r *passwordResetTokenMongoRepository) InvalidateStudentTokens(
	ctx context.Context,
	studentID string,
) error {
	_, err := r.db.Collection(passwordResetTokenCollection).UpdateMany(
		ctx,
		bson.M{"student_id": studentID, "used": false},
		bson.M{"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		}},
	)

	return err
}
