package middleware

import (
	"context"
	"errors"
	"fmt"

	"unity-gaming/services"
)

// AuthServiceVerifier delegates token checks to the external auth service.
type AuthServiceVerifier struct {
	Client *services.AuthServiceClient
}

func (v *AuthServiceVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	resp, err := v.Client.ValidateToken(ctx, token, "")
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, fmt.Errorf("auth service unavailable: %w", err)
	}
	return Identity{UserID: resp.UserID, Username: resp.Username, Roles: resp.Roles}, nil
}
