package geocoding

import "strings"

// RegionFields поля адреса уровня региона в порядке приоритета
var RegionFields = []string{"state", "county", "province", "region", "city", "town", "village"}

// ExtractPlace выбирает страну и первый заполненный региональный уровень
func ExtractPlace(addr Address) Place {
	place := Place{Country: strings.TrimSpace(addr["country"])}
	for _, field := range RegionFields {
		if value := strings.TrimSpace(addr[field]); value != "" {
			place.Region = value
			break
		}
	}
	return place
}
