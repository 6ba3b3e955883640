// Package phone resuelve códigos de llamada internacionales a partir
// del código de país ISO-3166 alpha-2.
package phone

import "strings"

// callingCodes cubre los países soportados por la plataforma.
// Fuente: ITU-T E.164 assigned country codes.
var callingCodes = map[string]string{
	"AT": "43", "AU": "61", "BE": "32", "BG": "359", "BR": "55",
	"CA": "1", "CH": "41", "CL": "56", "CN": "86", "CO": "57",
	"CZ": "420", "DE": "49", "DK": "45", "EE": "372", "ES": "34",
	"FI": "358", "FR": "33", "GB": "44", "GR": "30", "HR": "385",
	"HU": "36", "IE": "353", "IL": "972", "IN": "91", "IT": "39",
	"JP": "81", "KR": "82", "LT": "370", "LU": "352", "LV": "371",
	"MX": "52", "NL": "31", "NO": "47", "NZ": "64", "PL": "48",
	"PT": "351", "RO": "40", "SE": "46", "SI": "386", "SK": "421",
	"TR": "90", "UA": "380", "US": "1", "ZA": "27",
}

// CallingCode retorna el código de llamada para un país ISO2 ("DE" -> "49").
// Retorna "0" si el país es desconocido, igual que la librería upstream.
func CallingCode(country string) string {
	if cc, ok := callingCodes[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return cc
	}
	return "0"
}

// IsKnownCountry indica si el país ISO2 tiene código de llamada asignado.
func IsKnownCountry(country string) bool {
	_, ok := callingCodes[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}

// CountryForCallingCode hace el lookup inverso ("49" -> "DE").
// Cuando varios países comparten código (p.ej. "1"), retorna el primero
// en orden alfabético. Retorna "" si el código no está asignado.
func CountryForCallingCode(code string) string {
	best := ""
	for iso, cc := range callingCodes {
		if cc == code && (best == "" || iso < best) {
			best = iso
		}
	}
	return best
}
