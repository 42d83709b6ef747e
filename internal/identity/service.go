package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lojinha-labs/storefront-backend/pkg/config"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth and admin controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Current(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	AdminUnlock(ctx context.Context, secret string) (bool, error)
	AdminLock(ctx context.Context) error
	IsAdminUnlocked(ctx context.Context) (bool, error)
	UpdateAdminSecret(ctx context.Context, secret string) error
	MergeLocation(ctx context.Context, loc Location) error
	ListUsers(ctx context.Context) ([]UserSummary, error)
}

type credentialStore interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SaveCurrentSession(ctx context.Context, session *Session) error
	ClearCurrentSession(ctx context.Context) error
	Credentials(ctx context.Context) ([]Credential, error)
	SaveCredentials(ctx context.Context, creds []Credential) error
	AdminUnlocked(ctx context.Context) (bool, error)
	SetAdminUnlocked(ctx context.Context) error
	ClearAdminUnlocked(ctx context.Context) error
	AdminSecret(ctx context.Context) (string, bool, error)
	SetAdminSecret(ctx context.Context, secret string) error
	BiometricRefs(ctx context.Context) (map[string]string, error)
	SaveBiometricRef(ctx context.Context, userID, ref string) error
}

type secretEncoder interface {
	Encode(secret string) (string, error)
	Verify(secret, encoded string) (bool, error)
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type service struct {
	// mu serializes the read-modify-write cycles on the credential list and
	// session slot; the store itself has no CAS.
	mu        sync.Mutex
	repo      credentialStore
	encoder   secretEncoder
	biometric BiometricVerifier
	limiter   rateLimiter
	adminCfg  config.AdminConfig
	limitCfg  config.AuthRateLimitConfig
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build an identity service.
type ServiceParams struct {
	Repo        credentialStore
	Encoder     secretEncoder
	Biometric   BiometricVerifier
	RateLimiter rateLimiter // optional; nil disables limiting
	AdminConfig config.AdminConfig
	LimitConfig config.AuthRateLimitConfig
	Now         func() time.Time
}

// NewService constructs an identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if params.Encoder == nil {
		return nil, fmt.Errorf("secret encoder is required")
	}
	if params.Biometric == nil {
		return nil, fmt.Errorf("biometric verifier is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		encoder:   params.Encoder,
		biometric: params.Biometric,
		limiter:   params.RateLimiter,
		adminCfg:  params.AdminConfig,
		limitCfg:  params.LimitConfig,
		now:       now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if err := s.allow(ctx, "register:"+username, int64(s.limitCfg.RegisterUserLimit), s.limitCfg.RegisterWindow); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.repo.Credentials(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load credentials")
	}
	// Usernames collide on exact match only. The existing record stays
	// untouched on conflict.
	for _, c := range creds {
		if c.Username == username {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
		}
	}

	encoded, err := s.encoder.Encode(req.Secret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode secret")
	}

	cred := Credential{
		UserID:        uuid.NewString(),
		Username:      username,
		EncodedSecret: encoded,
		Device:        req.Device,
		CreatedAt:     s.now(),
	}

	if req.UseBiometric {
		ref, err := s.biometric.Register(ctx, cred.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SaveBiometricRef(ctx, cred.UserID, ref); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store biometric credential")
		}
		cred.BiometricRegistered = true
	}

	creds = append(creds, cred)
	if err := s.repo.SaveCredentials(ctx, creds); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store credentials")
	}

	// Registration logs the user in immediately.
	return s.openSession(ctx, creds, len(creds)-1, req.Device)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if err := s.allow(ctx, "login:"+username, int64(s.limitCfg.LoginUserLimit), s.limitCfg.LoginWindow); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.repo.Credentials(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load credentials")
	}

	idx := -1
	for i, c := range creds {
		if c.Username == username {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	if req.UseBiometric {
		if err := s.verifyBiometric(ctx, creds[idx]); err != nil {
			return nil, err
		}
	} else {
		valid, err := s.encoder.Verify(req.Secret, creds[idx].EncodedSecret)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify secret")
		}
		if !valid {
			return nil, pkgerrors.New(pkgerrors.CodeAuth, invalidCredentialsMessage)
		}
	}

	return s.openSession(ctx, creds, idx, req.Device)
}

// openSession updates the matched credential in place and overwrites the
// session slot. Callers hold s.mu and must not have mutated state on the
// failure paths above.
func (s *service) openSession(ctx context.Context, creds []Credential, idx int, device string) (*Session, error) {
	now := s.now()
	creds[idx].LastLoginAt = &now
	if device != "" {
		creds[idx].Device = device
	}
	if err := s.repo.SaveCredentials(ctx, creds); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	cred := creds[idx]
	session := &Session{
		UserID:      cred.UserID,
		Username:    cred.Username,
		Device:      cred.Device,
		CreatedAt:   cred.CreatedAt,
		LastLoginAt: cred.LastLoginAt,
		Location:    cred.Location,
	}
	if err := s.repo.SaveCurrentSession(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}
	return session, nil
}

func (s *service) verifyBiometric(ctx context.Context, cred Credential) error {
	if !cred.BiometricRegistered {
		return pkgerrors.New(pkgerrors.CodeAuth, "biometric credential required but not registered")
	}
	refs, err := s.repo.BiometricRefs(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load biometric credentials")
	}
	verified, err := s.biometric.Verify(ctx, cred.UserID, refs[cred.UserID])
	if err != nil {
		return err
	}
	if !verified {
		return pkgerrors.New(pkgerrors.CodeAuth, invalidCredentialsMessage)
	}
	return nil
}

func (s *service) Current(ctx context.Context) (*Session, error) {
	session, err := s.repo.CurrentSession(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeAuth, "no active session")
	}
	return session, nil
}

// Logout destroys the session slot and drops admin access.
func (s *service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ClearCurrentSession(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear session")
	}
	if err := s.repo.ClearAdminUnlocked(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear admin flag")
	}
	return nil
}

// AdminUnlock compares the provided secret against the persisted override or
// the configured default and persists the unlocked flag on match. The flag
// never expires; repeated unlocks are no-ops.
func (s *service) AdminUnlock(ctx context.Context, secret string) (bool, error) {
	expected := s.adminCfg.Secret
	if expected == "" {
		expected = config.DefaultAdminSecret
	}
	if override, found, err := s.repo.AdminSecret(ctx); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin secret")
	} else if found {
		expected = override
	}

	if secret != expected {
		return false, nil
	}
	if err := s.repo.SetAdminUnlocked(ctx); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist admin flag")
	}
	return true, nil
}

func (s *service) AdminLock(ctx context.Context) error {
	if err := s.repo.ClearAdminUnlocked(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear admin flag")
	}
	return nil
}

func (s *service) IsAdminUnlocked(ctx context.Context) (bool, error) {
	unlocked, err := s.repo.AdminUnlocked(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin flag")
	}
	return unlocked, nil
}

func (s *service) UpdateAdminSecret(ctx context.Context, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin secret must not be empty")
	}
	if err := s.repo.SetAdminSecret(ctx, secret); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist admin secret")
	}
	return nil
}

// MergeLocation folds a peer-reported location into the persisted session
// slot. A missing session still records the fix so the admin panel can see
// it; everything else in the slot stays zero.
func (s *service) MergeLocation(ctx context.Context, loc Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.repo.CurrentSession(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if session == nil {
		session = &Session{}
	}
	session.Location = &loc

	if err := s.repo.SaveCurrentSession(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}

	// Keep the credential record in step so the admin user list shows the
	// latest fix.
	if session.UserID == "" {
		return nil
	}
	creds, err := s.repo.Credentials(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load credentials")
	}
	for i := range creds {
		if creds[i].UserID == session.UserID {
			creds[i].Location = &loc
			if err := s.repo.SaveCredentials(ctx, creds); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store credentials")
			}
			break
		}
	}
	return nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	creds, err := s.repo.Credentials(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load credentials")
	}
	users := make([]UserSummary, 0, len(creds))
	for _, c := range creds {
		users = append(users, UserSummary{
			UserID:              c.UserID,
			Username:            c.Username,
			Device:              c.Device,
			BiometricRegistered: c.BiometricRegistered,
			CreatedAt:           c.CreatedAt,
			LastLoginAt:         c.LastLoginAt,
			Location:            c.Location,
		})
	}
	return users, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int64, window time.Duration) error {
	if s.limiter == nil || limit <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		// The limiter is best-effort; an unreachable Redis must not block
		// logins.
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, retry later")
	}
	return nil
}
