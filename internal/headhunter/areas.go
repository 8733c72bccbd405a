package headhunter

import "strings"

// areaIDs maps lowercase city names to hh.ru area identifiers. The vocabulary
// is small and fixed, so a static table beats an extra API round trip per
// search.
var areaIDs = map[string]int{
	"москва":           1,
	"санкт-петербург":  2,
	"екатеринбург":     3,
	"новосибирск":      4,
	"волгоград":        24,
	"воронеж":          26,
	"казань":           88,
	"краснодар":        53,
	"красноярск":       54,
	"нижний новгород":  66,
	"омск":             68,
	"пермь":            72,
	"ростов-на-дону":   76,
	"самара":           78,
	"уфа":              99,
	"челябинск":        104,
}

// ResolveArea returns the hh.ru area id for a city name. The lookup is
// case-insensitive; an unknown or empty name reports ok=false.
func ResolveArea(city string) (int, bool) {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return 0, false
	}
	id, ok := areaIDs[city]
	return id, ok
}
