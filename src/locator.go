package wsprcodex

// Where a grid square is.  Encoded payloads produce arbitrary (valid) locators, and
// it helps when checking transmissions against a spot map to know where they will
// show up.  Geodetic conversions use https://github.com/tzneal/coordconv

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

func D2R(d float64) float64 {
	return d * math.Pi / 180
}

/*------------------------------------------------------------------
 *
 * Name:	GridCenter
 *
 * Purpose:	Centre of a 4 character Maidenhead square.
 *
 * Description:	Field letters are 20 x 10 degrees, square digits are
 *		2 x 1 degrees, measured from 180W 90S.
 *
 *------------------------------------------------------------------*/

func GridCenter(grid string) (s2.LatLng, error) {
	grid = strings.ToUpper(grid)

	var m = Message{Callsign: "AAAAAA", GridSquare: grid, PowerDbm: 0}

	var err = m.Validate()
	if err != nil {
		return s2.LatLng{}, err
	}

	var lon = float64(grid[0]-'A')*20 + float64(grid[2]-'0')*2 + 1 - 180
	var lat = float64(grid[1]-'A')*10 + float64(grid[3]-'0') + 0.5 - 90

	return s2.LatLng{
		Lat: s1.Angle(D2R(lat)),
		Lng: s1.Angle(D2R(lon)),
	}, nil
}

// GridDistance is the great circle distance in km between two square centres.
func GridDistance(a, b string) (float64, error) {
	var pa, errA = GridCenter(a)
	if errA != nil {
		return 0, errA
	}

	var pb, errB = GridCenter(b)
	if errB != nil {
		return 0, errB
	}

	const earthRadiusKm = 6371.0

	return pa.Distance(pb).Radians() * earthRadiusKm, nil
}

func HemisphereToRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	case coordconv.HemisphereInvalid:
		return '!'
	default:
		return '?'
	}
}

// DescribeGrid is one line: the centre in degrees, UTM and MGRS.  Conversions that
// fail (UTM doesn't cover the poles) are left out rather than failing the lot.
func DescribeGrid(grid string) (string, error) {
	var latlng, err = GridCenter(grid)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s centre %.1f, %.1f", strings.ToUpper(grid), latlng.Lat.Degrees(), latlng.Lng.Degrees())

	var utmCoord, utmErr = coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
	if utmErr == nil {
		fmt.Fprintf(&sb, ", UTM %d%c %.0f %.0f", utmCoord.Zone, HemisphereToRune(utmCoord.Hemisphere), utmCoord.Easting, utmCoord.Northing)
	}

	var mgrsCoord, mgrsErr = coordconv.DefaultMGRSConverter.ConvertFromGeodetic(latlng, 2)
	if mgrsErr == nil {
		fmt.Fprintf(&sb, ", MGRS %s", mgrsCoord)
	}

	return sb.String(), nil
}
