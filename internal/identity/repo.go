package identity

import (
	"context"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
	"github.com/lojinha-labs/storefront-backend/pkg/kvstore"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

const (
	keyCurrentSession = "currentUser"
	keyCredentials    = "storeUsers"
	keyAdminUnlocked  = "adminAuthenticated"
	keyAdminSecret    = "adminPassword"
	keyBiometricRefs  = "biometricCredentials"
)

// Repository persists identity state in the key-value store. Corrupt entries
// are logged and read as the zero state so one bad write cannot brick login.
type Repository struct {
	store kvstore.Store
	logg  *logger.Logger
}

// NewRepository constructs an identity repo bound to the provided store.
func NewRepository(store kvstore.Store, logg *logger.Logger) *Repository {
	return &Repository{store: store, logg: logg}
}

// CurrentSession returns the session slot, or nil when no one is logged in.
func (r *Repository) CurrentSession(ctx context.Context) (*Session, error) {
	var session Session
	found, err := kvstore.GetJSON(ctx, r.store, keyCurrentSession, &session)
	if err != nil {
		return nil, r.fallbackOnParse(ctx, keyCurrentSession, err)
	}
	if !found {
		return nil, nil
	}
	return &session, nil
}

// SaveCurrentSession overwrites the single session slot.
func (r *Repository) SaveCurrentSession(ctx context.Context, session *Session) error {
	return kvstore.PutJSON(ctx, r.store, keyCurrentSession, session)
}

// ClearCurrentSession destroys the session slot.
func (r *Repository) ClearCurrentSession(ctx context.Context) error {
	return r.store.Delete(ctx, keyCurrentSession)
}

// Credentials returns every registered credential record.
func (r *Repository) Credentials(ctx context.Context) ([]Credential, error) {
	var creds []Credential
	if _, err := kvstore.GetJSON(ctx, r.store, keyCredentials, &creds); err != nil {
		return nil, r.fallbackOnParse(ctx, keyCredentials, err)
	}
	return creds, nil
}

// SaveCredentials overwrites the credential list.
func (r *Repository) SaveCredentials(ctx context.Context, creds []Credential) error {
	return kvstore.PutJSON(ctx, r.store, keyCredentials, creds)
}

// AdminUnlocked reports the persisted admin flag.
func (r *Repository) AdminUnlocked(ctx context.Context) (bool, error) {
	var unlocked bool
	if _, err := kvstore.GetJSON(ctx, r.store, keyAdminUnlocked, &unlocked); err != nil {
		return false, r.fallbackOnParse(ctx, keyAdminUnlocked, err)
	}
	return unlocked, nil
}

// SetAdminUnlocked persists the admin flag.
func (r *Repository) SetAdminUnlocked(ctx context.Context) error {
	return kvstore.PutJSON(ctx, r.store, keyAdminUnlocked, true)
}

// ClearAdminUnlocked removes the admin flag.
func (r *Repository) ClearAdminUnlocked(ctx context.Context) error {
	return r.store.Delete(ctx, keyAdminUnlocked)
}

// AdminSecret returns the persisted admin secret override, if any.
func (r *Repository) AdminSecret(ctx context.Context) (string, bool, error) {
	var secret string
	found, err := kvstore.GetJSON(ctx, r.store, keyAdminSecret, &secret)
	if err != nil {
		return "", false, r.fallbackOnParse(ctx, keyAdminSecret, err)
	}
	return secret, found && secret != "", nil
}

// SetAdminSecret persists an admin secret override.
func (r *Repository) SetAdminSecret(ctx context.Context, secret string) error {
	return kvstore.PutJSON(ctx, r.store, keyAdminSecret, secret)
}

// BiometricRefs returns the userID -> credential reference map.
func (r *Repository) BiometricRefs(ctx context.Context) (map[string]string, error) {
	refs := map[string]string{}
	if _, err := kvstore.GetJSON(ctx, r.store, keyBiometricRefs, &refs); err != nil {
		return map[string]string{}, r.fallbackOnParse(ctx, keyBiometricRefs, err)
	}
	return refs, nil
}

// SaveBiometricRef records the credential reference produced by a biometric
// registration ceremony.
func (r *Repository) SaveBiometricRef(ctx context.Context, userID, ref string) error {
	refs, err := r.BiometricRefs(ctx)
	if err != nil {
		return err
	}
	refs[userID] = ref
	return kvstore.PutJSON(ctx, r.store, keyBiometricRefs, refs)
}

// fallbackOnParse swallows parse errors after logging them so readers fall
// back to the zero state. Storage errors pass through.
func (r *Repository) fallbackOnParse(ctx context.Context, key string, err error) error {
	if !pkgerrors.HasCode(err, pkgerrors.CodeParse) {
		return err
	}
	if r.logg != nil {
		ctx = r.logg.WithField(ctx, "key", key)
		r.logg.Warn(ctx, "discarding corrupt identity entry")
	}
	return nil
}
