// internal/api/types.go
//
// Wire types for the Worldle HTTP API.
// Field names mirror the remote contract exactly (snake_case JSON);
// the client consumes these verbatim and never recomputes any of the
// proximity feedback attached to a guess.

package api

// MaxGuesses is the number of guesses a game allows before it is lost.
const MaxGuesses = 6

// GameStatus is the lifecycle state of a game session.
// Possible values:
//   - "in_progress": the game is open and accepts guesses.
//   - "won":         a guess matched the answer country.
//   - "lost":        six guesses were used without a match.
//   - "abandoned":   superseded by a newer game before finishing.
type GameStatus string

const (
	GameInProgress GameStatus = "in_progress"
	GameWon        GameStatus = "won"
	GameLost       GameStatus = "lost"
	GameAbandoned  GameStatus = "abandoned"
)

// Terminal reports whether the status accepts no further guesses.
func (s GameStatus) Terminal() bool { return s != GameInProgress }

// CompassDirection is an 8-wind heading from a guessed country toward
// the answer, computed server-side.
type CompassDirection string

const (
	North     CompassDirection = "N"
	Northeast CompassDirection = "NE"
	East      CompassDirection = "E"
	Southeast CompassDirection = "SE"
	South     CompassDirection = "S"
	Southwest CompassDirection = "SW"
	West      CompassDirection = "W"
	Northwest CompassDirection = "NW"
)

// Country is one guessable entity from the reference catalog.
// Immutable once fetched.
type Country struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ISO2      *string `json:"iso2"`
	ISO3      *string `json:"iso3"`
	Status    *string `json:"status"`
	Continent *string `json:"continent"`
	Region    *string `json:"region"`
	ParentID  *int    `json:"parent_id"`
	SvgURL    *string `json:"svg_url"`
}

// UserClient is the server-side record for one anonymous identity.
type UserClient struct {
	UUID string `json:"uuid"`
}

// Guess is one scored attempt within a game. The distance, bearing and
// proximity fields are opaque feedback; only IsCorrect drives state.
type Guess struct {
	ID                       int              `json:"id"`
	GuessedCountryID         int              `json:"guessed_country_id"`
	GuessedCountry           Country          `json:"guessed_country"`
	Index                    int              `json:"index"`
	IsCorrect                bool             `json:"is_correct"`
	DistanceToAnswerMiles    float64          `json:"distance_to_answer_miles"`
	DistanceToAnswerKm       float64          `json:"distance_to_answer_km"`
	BearingToAnswer          float64          `json:"bearing_to_answer"`
	CompassDirectionToAnswer CompassDirection `json:"compass_direction_to_answer"`
	ProximityProp            float64          `json:"proximity_prop"`
}

// Game is a full game snapshot as returned by the server. The client
// treats it as the sole authority: every mutation response replaces the
// cached snapshot wholesale.
type Game struct {
	ID              int        `json:"id"`
	UserClientID    int        `json:"user_client_id"`
	AnswerCountryID int        `json:"answer_country_id"`
	Status          GameStatus `json:"status"`
	AnswerCountry   Country    `json:"answer_country"`
	Guesses         []Guess    `json:"guesses"`
}

// HasGuessed reports whether countryID was already guessed in g.
func (g *Game) HasGuessed(countryID int) bool {
	for _, gu := range g.Guesses {
		if gu.GuessedCountryID == countryID {
			return true
		}
	}
	return false
}

// GuessRead is the create-guess response: the new guess plus the
// updated authoritative game snapshot.
type GuessRead struct {
	Guess
	Game Game `json:"game"`
}

// UserStats is the per-identity aggregate history.
type UserStats struct {
	NumPlayed         int         `json:"num_played"`
	NumWon            int         `json:"num_won"`
	WinRate           float64     `json:"win_rate"`
	CurrentStreak     int         `json:"current_streak"`
	MaxStreak         int         `json:"max_streak"`
	GuessDistribution map[int]int `json:"guess_distribution"`
}

// Request payloads.

type GameCreate struct {
	UserClientUUID string `json:"user_client_uuid"`
}

type GuessCreate struct {
	GuessedCountryID int `json:"guessed_country_id"`
}
