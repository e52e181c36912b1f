package bootstrap

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/auth"
)

// NewAuthenticator builds the request authenticator for cfg.Auth.Provider.
// The Firebase client is returned as well when that provider is selected.
func NewAuthenticator(ctx context.Context, cfg *config.Config) (auth.Authenticator, *fbauth.Client, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		return auth.Bearer{Verifier: auth.NewFirebaseVerifier(client)}, client, nil

	case config.AuthProviderJWT:
		return auth.Bearer{Verifier: auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)}, nil, nil

	case config.AuthProviderHeader:
		return auth.Header{}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.Auth.Provider)
}
