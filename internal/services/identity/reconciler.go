package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/logger"
	"github.com/voltmap/chargepoint/internal/models"
	"go.uber.org/zap"
)

// Reconciler maps a verified Google identity to exactly one local account:
// it finds an existing account, links the Google identity to it, or creates
// a fresh account. It never creates a second user for an email that already
// exists, and a linked Google ID is never replaced.
type Reconciler struct {
	users database.UserRepositoryInterface
	log   *zap.Logger
}

// Options configures a reconciliation. AllowCreate distinguishes the sign-up
// path (unknown emails get a new account) from the sign-in path (unknown
// emails are rejected).
type Options struct {
	AllowCreate bool
}

// NewReconciler creates a reconciler over the given user store
func NewReconciler(users database.UserRepositoryInterface, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{users: users, log: log}
}

// Reconcile resolves verified Google claims to a local user. The returned
// bool reports whether a new account was created. Calling it again with the
// same claims returns the same user and false: the operation is idempotent.
func (r *Reconciler) Reconcile(ctx context.Context, claims *models.GoogleClaims, opts Options) (*models.User, bool, error) {
	user, created, err := r.reconcileOnce(ctx, claims, opts)
	if err == nil {
		return user, created, nil
	}

	// A racing request may have created the account between our lookup and
	// insert. The database constraint turned that race into a duplicate
	// error, which means the user now exists: retry the lookup-and-link
	// path once instead of surfacing a storage error.
	if errors.Is(err, auth.ErrDuplicateEmail) || errors.Is(err, auth.ErrDuplicateGoogleID) {
		r.log.Debug("reconcile_insert_race_retrying",
			zap.String("email", logger.SanitizeEmail(claims.Email)),
		)

		// A google_id collision may sit under a different email (the subject
		// was already linked elsewhere), so the email lookup would miss.
		// The subject lookup finds the account the constraint pointed at.
		if errors.Is(err, auth.ErrDuplicateGoogleID) {
			if user, lookupErr := r.users.GetByGoogleID(ctx, claims.Subject); lookupErr == nil {
				return user, false, nil
			}
		}

		return r.reconcileOnce(ctx, claims, Options{AllowCreate: false})
	}

	return nil, false, err
}

func (r *Reconciler) reconcileOnce(ctx context.Context, claims *models.GoogleClaims, opts Options) (*models.User, bool, error) {
	user, err := r.users.GetByEmail(ctx, claims.Email)
	if err == nil {
		return r.link(ctx, user, claims)
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	if !opts.AllowCreate {
		return nil, false, auth.ErrUserNotFound
	}

	user = &models.User{
		ID:            uuid.New(),
		Email:         claims.Email,
		GoogleID:      &claims.Subject,
		Name:          displayName(claims),
		EmailVerified: true,
		Role:          models.RoleUser,
	}
	if claims.Picture != "" {
		user.PictureURL = &claims.Picture
	}

	if err := r.users.Create(ctx, user); err != nil {
		return nil, false, err
	}

	r.log.Info("user_created_via_google",
		zap.String("user_id", user.ID.String()),
		zap.String("email", logger.SanitizeEmail(user.Email)),
	)

	return user, true, nil
}

// link attaches the Google identity to an existing account. Linking is
// monotonic: an account that already carries a Google ID keeps it, even if
// the presented claims carry a different subject.
func (r *Reconciler) link(ctx context.Context, user *models.User, claims *models.GoogleClaims) (*models.User, bool, error) {
	if user.IsGoogleLinked() {
		if *user.GoogleID != claims.Subject {
			r.log.Warn("google_subject_mismatch_keeping_existing_link",
				zap.String("user_id", user.ID.String()),
			)
		}
		return user, false, nil
	}

	user.GoogleID = &claims.Subject
	if claims.Picture != "" {
		user.PictureURL = &claims.Picture
	}
	user.EmailVerified = true

	if err := r.users.Update(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to link google account: %w", err)
	}

	r.log.Info("google_account_linked",
		zap.String("user_id", user.ID.String()),
	)

	return user, false, nil
}

// displayName picks the claim name, falling back to the local part of the email
func displayName(claims *models.GoogleClaims) string {
	if claims.Name != "" {
		return claims.Name
	}
	if at := strings.Index(claims.Email, "@"); at > 0 {
		return claims.Email[:at]
	}
	return claims.Email
}
