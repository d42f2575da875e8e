package service

import (
	"context"
	"time"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
	"github.com/arvelez/debt-ledger/internal/utils"
)

// AuthService issues access tokens and manages refresh-token sessions.
// Refresh secrets are single-issue per (user, device): while an unexpired
// session exists for the pair, login reuses it and the raw secret is not
// re-revealed.
type AuthService struct {
	Users  UserStore
	Tokens TokenStore

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

func NewAuthService(users UserStore, tokens TokenStore, jwtSecret string, accessTTLMin, refreshTTLDays, bcryptCost int) *AuthService {
	return &AuthService{
		Users:          users,
		Tokens:         tokens,
		JWTSecret:      jwtSecret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
		BcryptCost:     bcryptCost,
	}
}

// LoginResult is what a successful login or refresh hands back to the
// client. RefreshToken is empty when an existing session was reused, since
// the raw secret is only known at creation time.
type LoginResult struct {
	User                  model.User
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// ValidateCredentials resolves an active user by identifier and checks the
// password. Unknown identifiers and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) ValidateCredentials(ctx context.Context, identifier, password string) (model.User, error) {
	if identifier == "" || password == "" {
		return model.User{}, apperr.Validation("identifier and password are required")
	}
	u, err := s.Users.GetActiveByIdentifier(ctx, identifier)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return model.User{}, apperr.Authentication("invalid credentials")
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, apperr.Authentication("invalid credentials")
	}
	return u, nil
}

// Login validates credentials, signs an access token and issues (or
// reuses) the refresh session for the given device.
func (s *AuthService) Login(ctx context.Context, identifier, password string, deviceInfo *string) (LoginResult, error) {
	u, err := s.ValidateCredentials(ctx, identifier, password)
	if err != nil {
		return LoginResult{}, err
	}

	access, err := utils.NewAccessToken(s.JWTSecret, u.ID, u.DocumentNumber, string(u.Role), s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, apperr.Internal("sign access token failed", err)
	}

	raw, expiresAt, err := s.issueOrReuseRefreshToken(ctx, u.ID, deviceInfo)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:                  u,
		AccessToken:           access.Token,
		AccessTokenExpiresAt:  access.Exp,
		RefreshToken:          raw,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

// issueOrReuseRefreshToken returns the raw secret and expiry of the
// session for (user, device). When an unexpired session already exists its
// expiry is returned with an empty raw secret; otherwise a new secret is
// generated, its hash stored, and the raw form returned exactly once.
func (s *AuthService) issueOrReuseRefreshToken(ctx context.Context, userID uint64, deviceInfo *string) (string, time.Time, error) {
	existing, err := s.Tokens.FindActive(ctx, userID, deviceInfo)
	if err == nil {
		return "", existing.ExpiresAt, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return "", time.Time{}, err
	}

	raw, err := utils.NewRefreshSecret()
	if err != nil {
		return "", time.Time{}, apperr.Internal("generate refresh secret failed", err)
	}
	hash, err := utils.HashRefreshSecret(raw, s.BcryptCost)
	if err != nil {
		return "", time.Time{}, apperr.Internal("hash refresh secret failed", err)
	}

	t := model.RefreshToken{
		UserID:     userID,
		TokenHash:  hash,
		DeviceInfo: deviceInfo,
		ExpiresAt:  time.Now().UTC().AddDate(0, 0, s.RefreshTTLDays),
	}
	if err := s.Tokens.Create(ctx, &t); err != nil {
		return "", time.Time{}, err
	}
	return raw, t.ExpiresAt, nil
}

// Refresh exchanges a presented refresh secret for a fresh access token.
// The presented secret is checked against every unexpired session of the
// user (narrowed to the device when one is given). The session is not
// rotated: the same secret keeps working until expiry or logout, so the
// response echoes it back.
func (s *AuthService) Refresh(ctx context.Context, userID uint64, presented string, deviceInfo *string) (LoginResult, error) {
	if presented == "" {
		return LoginResult{}, apperr.Authentication("invalid refresh token")
	}

	tokens, err := s.Tokens.ListActive(ctx, userID, deviceInfo)
	if err != nil {
		return LoginResult{}, err
	}

	var matched *model.RefreshToken
	for i := range tokens {
		if utils.VerifyRefreshSecret(tokens[i].TokenHash, presented) {
			matched = &tokens[i]
			break
		}
	}
	if matched == nil {
		return LoginResult{}, apperr.Authentication("invalid refresh token")
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		// A vanished user reads the same as a bad secret.
		if apperr.KindOf(err) == apperr.KindNotFound {
			return LoginResult{}, apperr.Authentication("invalid refresh token")
		}
		return LoginResult{}, err
	}
	if !u.Active() {
		return LoginResult{}, apperr.Authentication("invalid refresh token")
	}

	access, err := utils.NewAccessToken(s.JWTSecret, u.ID, u.DocumentNumber, string(u.Role), s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, apperr.Internal("sign access token failed", err)
	}

	return LoginResult{
		User:                  u,
		AccessToken:           access.Token,
		AccessTokenExpiresAt:  access.Exp,
		RefreshToken:          presented,
		RefreshTokenExpiresAt: matched.ExpiresAt,
	}, nil
}

// Logout revokes the session matching the presented secret, or every
// session of the user when allDevices is set. Logout is total: a secret
// that matches nothing still reports success, since the desired end state
// (no such session) already holds, but the message says so.
func (s *AuthService) Logout(ctx context.Context, userID uint64, presented string, allDevices bool) (string, error) {
	if allDevices {
		if err := s.Tokens.DeleteAllForUser(ctx, userID); err != nil {
			return "", err
		}
		return "logged out on all devices", nil
	}

	tokens, err := s.Tokens.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	for i := range tokens {
		if utils.VerifyRefreshSecret(tokens[i].TokenHash, presented) {
			if err := s.Tokens.Delete(ctx, tokens[i].ID); err != nil {
				return "", err
			}
			return "logged out", nil
		}
	}
	return "logged out (session not found or already removed)", nil
}

// RevokeAll removes every session of a user. Used when an account is
// inactivated.
func (s *AuthService) RevokeAll(ctx context.Context, userID uint64) error {
	return s.Tokens.DeleteAllForUser(ctx, userID)
}
