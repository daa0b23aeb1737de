package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

// IdentityVerifier проверяет внешний токен личности.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*database.Identity, error)
}

// GoogleVerifier проверяет Google ID-токены, выданные для ClientID.
type GoogleVerifier struct {
	ClientID string
}

func (v GoogleVerifier) Verify(ctx context.Context, credential string) (*database.Identity, error) {
	if v.ClientID == "" {
		return nil, errors.New("google sign-in is not configured")
	}
	payload, err := idtoken.Validate(ctx, credential, v.ClientID)
	if err != nil {
		return nil, fmt.Errorf("google token: %v: %w", err, models.ErrUnauthorized)
	}
	id := &database.Identity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("google email not verified: %w", models.ErrUnauthorized)
	}
	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("google token without subject or email: %w", models.ErrUnauthorized)
	}
	return id, nil
}
