package geo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned for text that is not a coordinate pair.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

var mapsURL = regexp.MustCompile(`^https?://[^?\s]*/maps\?q=(.+)$`)

// Parse extracts a coordinate from " lat, lon " or a maps link of the
// form https://maps.google.com/maps?q=lat,lon.
func Parse(text string) (Coordinate, error) {
	raw := strings.TrimSpace(text)
	if m := mapsURL.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, parts[1])
	}

	c := Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %s out of range", ErrInvalidCoordinate, c)
	}
	return c, nil
}

// Waypoint is one stop of the route with its 1-based line number.
type Waypoint struct {
	Coordinate
	Ordinal int
}

// LineError describes a route line that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// ReadWaypoints reads a newline-delimited route. Blank lines are ignored;
// unparsable lines are skipped and reported in the second return value.
// The returned error is only set when reading itself fails.
func ReadWaypoints(r io.Reader) ([]Waypoint, []LineError, error) {
	var (
		waypoints []Waypoint
		skipped   []LineError
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		c, err := Parse(text)
		if err != nil {
			skipped = append(skipped, LineError{Line: line, Err: err})
			continue
		}
		waypoints = append(waypoints, Waypoint{Coordinate: c, Ordinal: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read waypoints: %w", err)
	}
	return waypoints, skipped, nil
}
