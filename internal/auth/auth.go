// Package auth implements the identity layer: account registration,
// password login, and bearer-token verification. Accounts are stored in
// the '_system' namespace of the KV store under the 'users' bucket.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdock-dev/taskdock/internal/store"
	"github.com/taskdock-dev/taskdock/pkg/schema"
)

// UsersBucket holds account records inside the system namespace, keyed by uid.
const UsersBucket = "users"

var (
	// ErrUnauthenticated is returned for a missing, malformed, or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned when login email/password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse is returned when registering an email that already has an account.
	ErrEmailInUse = errors.New("email already in use")
	// ErrEmailRequired is returned when the email field is missing.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordTooShort is returned when the password fails the minimum length check.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// Claims is the JWT payload. The uid travels in the registered subject.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies session tokens and manages accounts.
type Authenticator struct {
	store    store.Store
	secret   []byte
	tokenTTL time.Duration
}

// New builds an Authenticator on top of the given store.
func New(s store.Store, secret []byte, tokenTTL time.Duration) *Authenticator {
	return &Authenticator{store: s, secret: secret, tokenTTL: tokenTTL}
}

// Register creates a new account. It never logs the user in: callers get a
// success or an error, no token. The email_verified flag starts false.
func (a *Authenticator) Register(email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	if _, found, err := a.lookupByEmail(email); err != nil {
		return err
	} else if found {
		return ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	uid := uuid.NewString()
	rec := map[string]any{
		"email":          email,
		"password_hash":  string(hash),
		"email_verified": false,
		"created_at":     time.Now().UnixMilli(),
	}
	return a.store.Set(store.SystemNamespace, UsersBucket, uid, rec)
}

// Login checks a password against the stored hash and issues a session
// token. Credential mismatches (unknown email or wrong password) both
// surface as ErrInvalidCredentials.
func (a *Authenticator) Login(email, password string) (string, schema.Principal, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", schema.Principal{}, ErrInvalidCredentials
	}

	user, found, err := a.lookupByEmail(email)
	if err != nil {
		return "", schema.Principal{}, err
	}
	if !found {
		return "", schema.Principal{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", schema.Principal{}, ErrInvalidCredentials
	}

	token, err := a.issueToken(user.UID, user.Email)
	if err != nil {
		return "", schema.Principal{}, err
	}
	return token, schema.Principal{UID: user.UID, Email: user.Email}, nil
}

// VerifyToken resolves a bearer token to a principal. Any parse or claims
// failure collapses to ErrUnauthenticated; callers never see the detail.
func (a *Authenticator) VerifyToken(tokenString string) (schema.Principal, error) {
	if tokenString == "" {
		return schema.Principal{}, ErrUnauthenticated
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return schema.Principal{}, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return schema.Principal{}, ErrUnauthenticated
	}

	return schema.Principal{UID: claims.Subject, Email: claims.Email}, nil
}

func (a *Authenticator) issueToken(uid, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// lookupByEmail scans the users bucket. Account counts are small enough
// that a scan beats maintaining a second index that could drift.
func (a *Authenticator) lookupByEmail(email string) (schema.UserRecord, bool, error) {
	users, err := a.store.ListBucket(store.SystemNamespace, UsersBucket)
	if err != nil {
		if errors.Is(err, store.ErrBucketNotFound) || errors.Is(err, store.ErrNamespaceNotFound) {
			return schema.UserRecord{}, false, nil
		}
		return schema.UserRecord{}, false, fmt.Errorf("user lookup failed: %w", err)
	}

	for uid, v := range users {
		rec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if e, _ := rec["email"].(string); e == email {
			user := schema.UserRecord{UID: uid, Email: email}
			user.PasswordHash, _ = rec["password_hash"].(string)
			user.EmailVerified, _ = rec["email_verified"].(bool)
			switch ts := rec["created_at"].(type) {
			case int64:
				user.CreatedAt = ts
			case float64:
				user.CreatedAt = int64(ts)
			}
			return user, true, nil
		}
	}
	return schema.UserRecord{}, false, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
