package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/security"
)

// VerificationUsecase drives the email verification state machine. A record
// holds at most one live code and link token at a time; consuming either one
// flips the record to verified and the transition is terminal.
type VerificationUsecase interface {
	// IssueCode arms a fresh code and link token and emails them. It reports
	// whether the email went out; a mail failure keeps the code armed so the
	// user can request a resend instead of being rolled back.
	IssueCode(ctx context.Context, email string) (bool, error)

	// SubmitCode consumes the numeric code. Submitting against an already
	// verified record succeeds as a no-op.
	SubmitCode(ctx context.Context, email, code string) error

	// VerifyByToken consumes the link token carried by the emailed
	// verification link.
	VerifyByToken(ctx context.Context, email, token string) error
}

// EmailSender dispatches account emails. Satisfied by the mailer package.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

var (
	ErrAlreadyVerified = errors.New("user is already verified")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrInvalidToken    = errors.New("invalid verification token")
	ErrCodeExpired     = errors.New("verification code has expired")
)

type verificationUsecase struct {
	userRepo        repository.UserRepository
	syncUsecase     SyncUsecase
	mail            EmailSender
	verificationCfg config.VerificationConfig
	logger          *zerolog.Logger
}

func NewVerificationUsecase(
	userRepo repository.UserRepository,
	syncUsecase SyncUsecase,
	mail EmailSender,
	verificationCfg config.VerificationConfig,
	logger *zerolog.Logger,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo:        userRepo,
		syncUsecase:     syncUsecase,
		mail:            mail,
		verificationCfg: verificationCfg,
		logger:          logger,
	}
}

func (u *verificationUsecase) IssueCode(ctx context.Context, email string) (bool, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrUserNotFound
		}

		return false, err
	}

	if user.Verified {
		return false, ErrAlreadyVerified
	}

	code, err := security.GenerateVerificationCode()
	if err != nil {
		return false, err
	}

	token, err := security.GenerateVerificationToken()
	if err != nil {
		return false, err
	}

	expiresAt := time.Now().Add(u.verificationCfg.CodeExpiresIn)
	if err := u.userRepo.SetVerification(ctx, email, code, token, expiresAt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrUserNotFound
		}

		return false, err
	}

	if err := u.sendVerificationEmail(user.Email, user.DisplayName(), code, token); err != nil {
		u.logger.Error().Err(err).Str("email", email).Msg("failed to send verification email")
		return false, nil
	}

	return true, nil
}

func (u *verificationUsecase) SubmitCode(ctx context.Context, email, code string) error {
	return u.verify(ctx, email, code, false)
}

func (u *verificationUsecase) VerifyByToken(ctx context.Context, email, token string) error {
	return u.verify(ctx, email, token, true)
}

// verify attempts the conditional verified transition and classifies a
// failed attempt afterwards. Concurrent submissions of the same secret are
// safe: the store accepts exactly one winner and the losers re-read the
// record and observe it verified.
func (u *verificationUsecase) verify(ctx context.Context, email, secret string, byToken bool) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.Verified {
		return nil
	}

	var flipped bool
	if byToken {
		flipped, err = u.userRepo.MarkVerifiedByToken(ctx, email, secret)
	} else {
		flipped, err = u.userRepo.MarkVerifiedByCode(ctx, email, secret)
	}
	if err != nil {
		return err
	}

	if !flipped {
		return u.classifyFailedAttempt(ctx, email, secret, byToken)
	}

	verified, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	return u.syncUsecase.SyncUser(ctx, SyncUserParams{User: verified})
}

// classifyFailedAttempt re-reads the record to explain why the conditional
// update matched nothing. A matching unconsumed secret can only mean the
// code expired, in which case the stale pair is purged so it cannot be
// replayed after a later resend.
func (u *verificationUsecase) classifyFailedAttempt(ctx context.Context, email, secret string, byToken bool) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.Verified {
		return nil
	}

	stored := user.VerificationCode
	mismatchErr := ErrInvalidCode
	if byToken {
		stored = user.VerificationToken
		mismatchErr = ErrInvalidToken
	}

	if stored == "" || stored != secret {
		return mismatchErr
	}

	if err := u.userRepo.ClearExpiredCode(ctx, email); err != nil {
		return err
	}

	return ErrCodeExpired
}

func (u *verificationUsecase) sendVerificationEmail(email, displayName, code, token string) error {
	link := fmt.Sprintf(
		"%s?email=%s&token=%s",
		u.verificationCfg.LinkBaseURL,
		url.QueryEscape(email),
		token,
	)

	minutes := int(u.verificationCfg.CodeExpiresIn.Minutes())
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your verification code is <strong>%s</strong>.</p>
		<p>You can also verify your email with one click: <a href="%s">verify my email</a>.</p>
		<p>The code and the link expire in %d minutes.</p>
	`, displayName, code, link, minutes)

	return u.mail.SendHTML([]string{email}, "Verify your email address", body)
}
