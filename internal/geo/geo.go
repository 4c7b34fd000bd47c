// Package geo holds the reference table used to validate submitted locations.
// The table is static; profiles must name a city that belongs to the declared
// province of the declared country.
package geo

import (
	"sort"

	dErrors "conocida/pkg/domain-errors"
)

// table maps country -> province -> cities.
var table = map[string]map[string][]string{
	"Paraguay": {
		"Central":     {"Asunción", "Lambaré", "Luque", "San Lorenzo", "Fernando de la Mora", "Capiatá"},
		"Alto Paraná": {"Ciudad del Este", "Hernandarias", "Presidente Franco", "Minga Guazú"},
		"Itapúa":      {"Encarnación", "Hohenau", "Obligado"},
		"Caaguazú":    {"Coronel Oviedo", "Caaguazú"},
	},
	"Argentina": {
		"Buenos Aires": {"La Plata", "Mar del Plata", "Quilmes", "Bahía Blanca"},
		"Córdoba":      {"Córdoba", "Villa Carlos Paz", "Río Cuarto"},
		"Misiones":     {"Posadas", "Oberá", "Puerto Iguazú"},
		"Santa Fe":     {"Rosario", "Santa Fe"},
	},
	"Brasil": {
		"Paraná":    {"Curitiba", "Foz do Iguaçu", "Londrina"},
		"São Paulo": {"São Paulo", "Campinas", "Santos"},
	},
	"Uruguay": {
		"Montevideo": {"Montevideo"},
		"Canelones":  {"Canelones", "Las Piedras", "Ciudad de la Costa"},
	},
	"Bolivia": {
		"Santa Cruz": {"Santa Cruz de la Sierra", "Montero"},
		"La Paz":     {"La Paz", "El Alto"},
	},
}

// Countries lists the known countries in stable order for form rendering.
func Countries() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provinces lists the provinces of a country, empty when unknown.
func Provinces(country string) []string {
	provinces := table[country]
	names := make([]string, 0, len(provinces))
	for name := range provinces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cities lists the cities of a province, empty when unknown.
func Cities(country, province string) []string {
	cities := append([]string(nil), table[country][province]...)
	sort.Strings(cities)
	return cities
}

// Validate checks that the city belongs to the declared province of the
// declared country. Every failure is a bad request; the reference table is
// the single source of truth.
func Validate(country, province, city string) error {
	provinces, ok := table[country]
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "unknown country")
	}
	cities, ok := provinces[province]
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "unknown province for country")
	}
	for _, c := range cities {
		if c == city {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeBadRequest, "city does not belong to declared province")
}
