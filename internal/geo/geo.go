// Package geo provides the single city-name canonicalization used by both
// the analytics filters and the merchant map, plus a fixed city-coordinate
// lookup for map rendering.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// aliases maps known alternative spellings onto the canonical form. Applied
// after lowercasing and diacritic stripping.
var aliases = map[string]string{
	"the hague":     "den haag",
	"'s-gravenhage": "den haag",
	"s-gravenhage":  "den haag",
	"'s-hertogenbosch": "den bosch",
	"s-hertogenbosch":  "den bosch",
}

// Canonical lowercases, trims, strips diacritics and collapses inner
// whitespace, then applies the alias table. Free-text city fields from the
// commerce platform are not normalized upstream, so every comparison in
// this codebase goes through here.
func Canonical(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	out = strings.Join(strings.Fields(out), " ")
	if alias, ok := aliases[out]; ok {
		return alias
	}
	return out
}

// CityMatches reports whether the target city occurs in the candidate text,
// canonicalized substring semantics: "Amsterdam" matches "Amsterdam-Noord".
func CityMatches(candidate, city string) bool {
	c := Canonical(candidate)
	t := Canonical(city)
	if c == "" || t == "" {
		return false
	}
	return strings.Contains(c, t)
}

// Point is a city centroid used by the merchant map.
type Point struct {
	Latitude  float64
	Longitude float64
}

// cityCoordinates holds centroids for the cities the marketplace operates
// in, keyed by canonical name.
var cityCoordinates = map[string]Point{
	"amsterdam":  {52.3676, 4.9041},
	"rotterdam":  {51.9244, 4.4777},
	"den haag":   {52.0705, 4.3007},
	"utrecht":    {52.0907, 5.1214},
	"eindhoven":  {51.4416, 5.4697},
	"groningen":  {53.2194, 6.5665},
	"tilburg":    {51.5555, 5.0913},
	"almere":     {52.3508, 5.2647},
	"breda":      {51.5719, 4.7683},
	"nijmegen":   {51.8126, 5.8372},
	"haarlem":    {52.3874, 4.6462},
	"arnhem":     {51.9851, 5.8987},
	"amersfoort": {52.1561, 5.3878},
	"zaandam":    {52.4389, 4.8264},
	"den bosch":  {51.6978, 5.3037},
	"leiden":     {52.1601, 4.4970},
	"maastricht": {50.8514, 5.6910},
	"delft":      {52.0116, 4.3571},
	"zwolle":     {52.5168, 6.0830},
	"leeuwarden": {53.2012, 5.7999},
}

// Locate resolves a free-text city to coordinates: exact canonical match
// first, then partial match in either direction. The second return reports
// whether a coordinate was found.
func Locate(city string) (Point, bool) {
	c := Canonical(city)
	if c == "" {
		return Point{}, false
	}
	if p, ok := cityCoordinates[c]; ok {
		return p, true
	}
	for name, p := range cityCoordinates {
		if strings.Contains(c, name) || strings.Contains(name, c) {
			return p, true
		}
	}
	return Point{}, false
}
