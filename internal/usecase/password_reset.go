package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/auth"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/model"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/security"
)

// PasswordResetUsecase drives the forgot-password flow. A reset credential
// is a signed token whose registered ID must match a live grant record;
// requesting a new link revokes every earlier one, and a consumed grant is
// never honored again.
type PasswordResetUsecase interface {
	// RequestPasswordReset mails a reset link to the given address. An
	// unknown email reports success without sending anything, so the
	// endpoint cannot be used to probe which addresses have accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// ValidateResetToken checks a reset credential without consuming it,
	// so a reset form can reject a dead link before asking for a password.
	ValidateResetToken(ctx context.Context, token string) error

	// ResetPassword replaces the stored credential and pushes the new
	// password to the identity provider, then consumes the grant.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var (
	ErrResetTokenNotFound = errors.New("password reset token not found")
	ErrResetTokenUsed     = errors.New("password reset token has already been used")
	ErrResetTokenExpired  = errors.New("password reset token has expired")
	ErrInvalidResetToken  = errors.New("invalid password reset token")
)

type passwordResetUsecase struct {
	userRepo         repository.UserRepository
	tokenRepo        repository.PasswordResetTokenRepository
	identityProvider identity.Provider
	jwtAuth          auth.JWTAuthenticator
	mail             EmailSender
	identityCfg      config.IdentityConfig
	resetCfg         config.PasswordResetConfig
	logger           *zerolog.Logger
}

func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	identityProvider identity.Provider,
	jwtAuth auth.JWTAuthenticator,
	mail EmailSender,
	identityCfg config.IdentityConfig,
	resetCfg config.PasswordResetConfig,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		identityProvider: identityProvider,
		jwtAuth:          jwtAuth,
		mail:             mail,
		identityCfg:      identityCfg,
		resetCfg:         resetCfg,
		logger:           logger,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			u.logger.Info().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}

		return err
	}

	if err := u.tokenRepo.InvalidateStudentTokens(ctx, user.StudentID); err != nil {
		return err
	}

	tokenStr, jti, err := u.generateResetToken(user)
	if err != nil {
		return err
	}

	grant := &model.PasswordResetToken{
		StudentID: user.StudentID,
		Email:     user.Email,
		JTI:       jti,
		ExpiresAt: time.Now().Add(u.resetCfg.TokenExpiresIn),
	}
	if _, err := u.tokenRepo.CreateToken(ctx, grant); err != nil {
		return err
	}

	return u.sendResetEmail(user.Email, user.DisplayName(), tokenStr)
}

func (u *passwordResetUsecase) ValidateResetToken(ctx context.Context, token string) error {
	_, err := u.checkToken(ctx, token)
	return err
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	grant, err := u.checkToken(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePasswordHash(ctx, grant.Email, passwordHash); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	// The provider account was created with the original password, so the
	// new one is pushed there as well. A missing account is tolerated; the
	// next login reconciles it from the credential store. Any other
	// provider failure leaves the grant unconsumed so the reset can be
	// retried, which rewrites the same hash.
	if _, err := u.identityProvider.UpdateUser(ctx, grant.StudentID, identity.UpdateUserParams{
		Password: &newPassword,
	}); err != nil {
		if identity.KindOf(err) != identity.KindUserNotFound {
			return fmt.Errorf("failed to update identity provider password: %w", err)
		}

		u.logger.Warn().
			Str("student_id", grant.StudentID).
			Msg("identity provider user missing during password reset")
	}

	return u.tokenRepo.MarkTokenAsUsed(ctx, grant.JTI)
}

// checkToken validates the signed credential and loads its grant, rejecting
// consumed and expired grants. The record's expiry is authoritative even
// though the signature carries its own.
func (u *passwordResetUsecase) checkToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	claims, err := u.jwtAuth.ValidateResetToken(token, u.resetCfg.TokenSecret)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	grant, err := u.tokenRepo.GetTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrResetTokenNotFound
		}

		return nil, err
	}

	if grant.Used {
		return nil, ErrResetTokenUsed
	}

	if time.Now().After(grant.ExpiresAt) {
		return nil, ErrResetTokenExpired
	}

	return grant, nil
}

func (u *passwordResetUsecase) generateResetToken(user *model.User) (string, string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	claims := &auth.PasswordResetClaims{
		StudentID: user.StudentID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.StudentID,
			Issuer:    u.identityCfg.TokenIssuer,
			Audience:  jwt.ClaimStrings{u.identityCfg.TokenIssuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.resetCfg.TokenExpiresIn)),
		},
	}

	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.resetCfg.TokenSecret)
	if err != nil {
		return "", "", err
	}

	return tokenStr, jti, nil
}

func (u *passwordResetUsecase) sendResetEmail(email, displayName, token string) error {
	link := fmt.Sprintf("%s?token=%s", u.resetCfg.LinkBaseURL, token)

	minutes := int(u.resetCfg.TokenExpiresIn.Minutes())
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, click the link below to choose a new password:</p>
		<p><a href="%s">reset my password</a></p>
		<p>The link expires in %d minutes. If you did not request a reset, you can ignore this email.</p>
	`, displayName, link, minutes)

	return u.mail.SendHTML([]string{email}, "Reset your password", body)
}

func generateJTI() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
