// Package remote reads and writes pets through the shelter backend.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
	"github.com/Apurer/adoptionos/internal/domains/pets/ports"
)

const petsPath = "/pets"

// Doer is the part of the shelter client the adapter needs.
type Doer interface {
	Do(ctx context.Context, req shelter.Request) (*shelter.Response, error)
}

// Catalog implements ports.Catalog over the shelter client.
type Catalog struct {
	client Doer
}

var _ ports.Catalog = (*Catalog)(nil)

// NewCatalog wraps client.
func NewCatalog(client Doer) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) ListAvailable(ctx context.Context) ([]domain.Pet, error) {
	query := url.Values{
		"status": {string(domain.StatusAvailable)},
		"sort":   {"age"},
	}
	return c.list(ctx, query, shelter.AuthNone)
}

func (c *Catalog) ListAdmin(ctx context.Context, params string) ([]domain.Pet, error) {
	query, err := url.ParseQuery(strings.TrimPrefix(params, "?"))
	if err != nil {
		return nil, fmt.Errorf("parse admin params %q: %w", params, err)
	}
	return c.list(ctx, query, shelter.AuthBearer)
}

func (c *Catalog) ListAdopted(ctx context.Context) ([]domain.Pet, error) {
	query := url.Values{
		"status": {string(domain.StatusAdopted)},
		"limit":  {strconv.Itoa(ports.AdoptedPageSize)},
	}
	return c.list(ctx, query, shelter.AuthBearer)
}

func (c *Catalog) Update(ctx context.Context, id string, profile domain.Profile) error {
	segment, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return fmt.Errorf("encode pet id: %w", err)
	}
	resp, err := c.client.Do(ctx, shelter.Request{
		Method: http.MethodPut,
		Path:   petsPath + "/" + segment,
		Body:   profile,
		Auth:   shelter.AuthBearer,
	})
	if err != nil {
		return mapTransport(err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrRejected, err)
	}
	return nil
}

func (c *Catalog) list(ctx context.Context, query url.Values, auth shelter.AuthMode) ([]domain.Pet, error) {
	resp, err := c.client.Do(ctx, shelter.Request{
		Method: http.MethodGet,
		Path:   petsPath,
		Query:  query,
		Auth:   auth,
	})
	if err != nil {
		return nil, mapTransport(err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRejected, err)
	}
	pets, err := shelter.DecodeData[[]domain.Pet](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrUnexpectedShape, err)
	}
	if pets == nil {
		pets = []domain.Pet{}
	}
	return pets, nil
}

func mapTransport(err error) error {
	if errors.Is(err, shelter.ErrTransport) {
		return fmt.Errorf("%w: %w", ports.ErrUnreachable, err)
	}
	return err
}
