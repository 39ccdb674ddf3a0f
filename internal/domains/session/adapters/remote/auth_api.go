// Package remote talks to the shelter backend's identity endpoints.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/session/domain"
	"github.com/Apurer/adoptionos/internal/domains/session/ports"
)

const (
	mePath     = "/api/users/me"
	loginPath  = "/api/login"
	logoutPath = "/api/users/logout"
	usersPath  = "/api/users"
)

// Doer is the part of the shelter client the adapter needs.
type Doer interface {
	Do(ctx context.Context, req shelter.Request) (*shelter.Response, error)
}

// AuthAPI implements ports.AuthAPI over the shelter client.
type AuthAPI struct {
	client Doer
}

var _ ports.AuthAPI = (*AuthAPI)(nil)

// NewAuthAPI wraps client.
func NewAuthAPI(client Doer) *AuthAPI {
	return &AuthAPI{client: client}
}

type meResponse struct {
	Data *domain.Identity `json:"data"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  *domain.Identity `json:"user"`
}

type profileResponse struct {
	User *domain.Identity `json:"user"`
}

func (a *AuthAPI) Me(ctx context.Context) (*domain.Identity, error) {
	resp, err := a.client.Do(ctx, shelter.Request{Method: http.MethodGet, Path: mePath, Auth: shelter.AuthCookie})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %w", ports.ErrUnauthenticated, resp.Err())
	}
	var body meResponse
	if err := resp.Decode(&body); err != nil {
		return nil, nil
	}
	return body.Data, nil
}

func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (ports.LoginResult, error) {
	resp, err := a.client.Do(ctx, shelter.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   creds,
		Auth:   shelter.AuthCookie,
	})
	if err != nil {
		return ports.LoginResult{}, err
	}
	if !resp.OK() {
		return ports.LoginResult{}, fmt.Errorf("%w: %w", ports.ErrInvalidCredentials, resp.Err())
	}
	var body loginResponse
	if err := resp.Decode(&body); err != nil {
		return ports.LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	return ports.LoginResult{Token: body.Token, Identity: body.User}, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	resp, err := a.client.Do(ctx, shelter.Request{Method: http.MethodPost, Path: logoutPath, Auth: shelter.AuthCookie})
	if err != nil {
		return err
	}
	return resp.Err()
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error) {
	resp, err := a.client.Do(ctx, shelter.Request{
		Method: http.MethodPut,
		Path:   usersPath,
		Body:   update,
		Auth:   shelter.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		var apiErr *shelter.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", ports.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	var body profileResponse
	if err := resp.Decode(&body); err != nil {
		return nil, nil
	}
	return body.User, nil
}
