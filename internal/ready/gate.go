// internal/ready/gate.go
//
// Readiness conjunction: game UI stays behind a loading indicator
// until identity resolution and the country catalog fetch have both
// settled. The gate itself never retries; a failed resolution is
// handed to the caller to display.

package ready

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lexeme-dev/worldle/internal/catalog"
	"github.com/lexeme-dev/worldle/internal/identity"
)

// Gate couples the two startup dependencies.
type Gate struct {
	identity *identity.Manager
	catalog  *catalog.Catalog
}

// NewGate wires a Gate over the identity manager and country catalog.
func NewGate(m *identity.Manager, c *catalog.Catalog) *Gate {
	return &Gate{identity: m, catalog: c}
}

// Wait runs identity resolution and the catalog load concurrently and
// blocks until both settle. On success it returns the resolved token;
// identity-scoped requests must not be issued before Wait returns.
func (g *Gate) Wait(ctx context.Context) (string, error) {
	var token string
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		tok, err := g.identity.Resolve(ctx)
		if err != nil {
			return err
		}
		token = tok
		return nil
	})
	eg.Go(func() error {
		return g.catalog.Load(ctx)
	})
	if err := eg.Wait(); err != nil {
		return "", err
	}
	return token, nil
}
