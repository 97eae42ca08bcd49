// internal/api/client.go
//
// HTTP client for the Worldle API.
// Responsibilities:
//   - One method per remote operation (countries, user clients, games,
//     guesses, stats), request/response encoding, error mapping.
//   - All methods take a context; cancellation is the caller's concern.
//
// Notes:
//   - A 404 becomes *Error{Status:404} so callers can branch with
//     IsNotFound; any other failure is returned as-is.
//   - GET current_game answers a JSON null when the identity has no
//     open game; that decodes to a nil *Game, not an error.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client talks to one Worldle API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client for baseURL (no trailing slash required).
func New(baseURL string) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListCountries fetches the full reference catalog, in server order.
func (c *Client) ListCountries(ctx context.Context) ([]Country, error) {
	var out []Country
	if err := c.do(ctx, http.MethodGet, "/countries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadCountry fetches a single catalog entry by id.
func (c *Client) ReadCountry(ctx context.Context, id int) (*Country, error) {
	var out Country
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/countries/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUserClient mints a fresh identity on the server.
func (c *Client) CreateUserClient(ctx context.Context) (*UserClient, error) {
	var out UserClient
	if err := c.do(ctx, http.MethodPost, "/user_clients", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadUserClient is the existence check for a stored token.
// Unknown tokens come back as a 404 *Error.
func (c *Client) ReadUserClient(ctx context.Context, token string) (*UserClient, error) {
	var out UserClient
	if err := c.do(ctx, http.MethodGet, "/user_clients/"+token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadCurrentGame fetches the identity's open game.
// Returns (nil, nil) when the identity has no open game.
func (c *Client) ReadCurrentGame(ctx context.Context, token string) (*Game, error) {
	var out *Game
	if err := c.do(ctx, http.MethodGet, "/user_clients/"+token+"/current_game", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadUserStats fetches the identity's aggregate history.
func (c *Client) ReadUserStats(ctx context.Context, token string) (*UserStats, error) {
	var out UserStats
	if err := c.do(ctx, http.MethodGet, "/user_clients/"+token+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGame starts a new game for the identity and returns its
// snapshot (in_progress, no guesses).
func (c *Client) CreateGame(ctx context.Context, token string) (*Game, error) {
	var out Game
	if err := c.do(ctx, http.MethodPost, "/games", GameCreate{UserClientUUID: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadGame fetches a game snapshot by id.
func (c *Client) ReadGame(ctx context.Context, gameID int) (*Game, error) {
	var out Game
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d", gameID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGuess scores countryID against the game's answer and returns
// the new guess along with the updated game snapshot.
func (c *Client) CreateGuess(ctx context.Context, gameID, countryID int) (*GuessRead, error) {
	var out GuessRead
	path := fmt.Sprintf("/games/%d/guesses", gameID)
	if err := c.do(ctx, http.MethodPost, path, GuessCreate{GuessedCountryID: countryID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one request/response cycle. body and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &Error{Status: res.StatusCode, Message: readDetail(res.Body)}
		log.Debug().Str("method", method).Str("path", path).
			Int("status", res.StatusCode).Msg("api request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readDetail pulls a {"detail": "..."} or {"error": "..."} message out
// of an error body, tolerating anything else.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return ""
}
