// internal/stub/game.go
//
// Guess scoring and state transitions for stub games.
// Responsibilities:
//   - Apply a guess to an in-progress game: append, mark correct or
//     attach proximity feedback, transition to won/lost.
//   - Naive great-circle feedback from country centroids. The real
//     service computes this against full geometries; the stub only
//     needs plausible, stable numbers for the client to display.
//
// State transitions:
//   - Correct guess → won.
//   - Sixth wrong guess → lost.

package stub

import (
	"errors"
	"math"

	"github.com/lexeme-dev/worldle/internal/api"
)

const (
	earthRadiusKm = 6371.0
	milesPerKm    = 0.621371

	// maxDistanceKm is half the Earth's circumference, the farthest any
	// guess can be; proximity is scaled against it.
	maxDistanceKm = math.Pi * earthRadiusKm
)

var errGameFinished = errors.New("game is not in progress")

// applyGuess validates and scores countryID against g, mutating g.
// Returns the new guess.
func (s *Server) applyGuess(g *gameRecord, countryID int) (api.Guess, error) {
	if g.Status.Terminal() {
		return api.Guess{}, errGameFinished
	}
	guessed := recordByID[countryID]
	answer := recordByID[g.AnswerCountryID]

	s.guessSeq++
	guess := api.Guess{
		ID:               s.guessSeq,
		GuessedCountryID: countryID,
		GuessedCountry:   wireCountry(guessed),
		Index:            len(g.Guesses),
		IsCorrect:        countryID == g.AnswerCountryID,
	}
	if !guess.IsCorrect {
		km := haversineKm(guessed.Lat, guessed.Lng, answer.Lat, answer.Lng)
		bearing := initialBearing(guessed.Lat, guessed.Lng, answer.Lat, answer.Lng)
		guess.DistanceToAnswerKm = km
		guess.DistanceToAnswerMiles = km * milesPerKm
		guess.BearingToAnswer = bearing
		guess.CompassDirectionToAnswer = compassFromBearing(bearing)
		guess.ProximityProp = 1 - km/maxDistanceKm
	} else {
		guess.ProximityProp = 1
		guess.CompassDirectionToAnswer = api.North
	}

	g.Guesses = append(g.Guesses, guess)
	if guess.IsCorrect {
		g.Status = api.GameWon
	} else if len(g.Guesses) >= api.MaxGuesses {
		g.Status = api.GameLost
	}
	return guess, nil
}

// haversineKm returns the great-circle distance between two centroids.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// initialBearing returns the forward azimuth from point 1 to point 2
// in degrees, normalized to [0, 360).
func initialBearing(lat1, lng1, lat2, lng2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dLambda := radians(lng2 - lng1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// compassFromBearing maps a bearing to the nearest 8-wind direction.
func compassFromBearing(bearing float64) api.CompassDirection {
	winds := []api.CompassDirection{
		api.North, api.Northeast, api.East, api.Southeast,
		api.South, api.Southwest, api.West, api.Northwest,
	}
	idx := int(math.Round(bearing/45)) % 8
	return winds[idx]
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
