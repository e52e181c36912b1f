package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/auth/domain"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*fbauth.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// IDTokenVerifier is the subset of *fbauth.Client used for verification.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type FirebaseVerifier struct {
	client IDTokenVerifier
}

func NewFirebaseVerifier(client IDTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return identityFromFirebase(decoded), nil
}

func identityFromFirebase(t *fbauth.Token) *domain.Identity {
	id := &domain.Identity{
		UserID:   t.UID,
		Provider: ProviderName(t.Firebase.SignInProvider),
	}
	if email, ok := t.Claims["email"].(string); ok {
		id.Email = email
	}
	for _, claim := range []string{"user_name", "preferred_username", "name"} {
		if u, ok := t.Claims[claim].(string); ok && u != "" {
			id.Username = u
			break
		}
	}
	return id
}

// ProviderName maps a Firebase sign_in_provider to the provider names stored
// on profiles.
func ProviderName(signIn string) string {
	switch signIn {
	case "password", "emailLink":
		return "email"
	case "google.com":
		return "google"
	case "github.com":
		return "github"
	case "":
		return "email"
	default:
		return signIn
	}
}

var ErrUnknownUser = errors.New("user not found at identity provider")

// UserGetter is the subset of *fbauth.Client used for directory lookups.
type UserGetter interface {
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
}

// FirebaseDirectory resolves user ids against Firebase Authentication.
type FirebaseDirectory struct {
	client UserGetter
}

func NewFirebaseDirectory(client UserGetter) *FirebaseDirectory {
	return &FirebaseDirectory{client: client}
}

// Lookup returns the provider's current view of uid, or ErrUnknownUser when
// the account no longer exists.
func (d *FirebaseDirectory) Lookup(ctx context.Context, uid string) (*domain.Identity, error) {
	rec, err := d.client.GetUser(ctx, uid)
	if fbauth.IsUserNotFound(err) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("get firebase user %s: %w", uid, err)
	}

	id := &domain.Identity{UserID: uid, Provider: ProviderName("")}
	if rec.UserInfo != nil {
		id.Email = rec.Email
		id.Username = rec.DisplayName
	}
	if len(rec.ProviderUserInfo) > 0 && rec.ProviderUserInfo[0] != nil {
		id.Provider = ProviderName(rec.ProviderUserInfo[0].ProviderID)
	}
	return id, nil
}
