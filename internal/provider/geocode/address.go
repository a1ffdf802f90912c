package geocode

import "github.com/airsight/airsight/internal/metadata"

// parseAddress flattens a geocode result into named address fields. The
// vendor tags each component with one or more types; a single component
// frequently feeds several fields (a sublocality names the parish, the
// division, the village and the sub-county at once).
func parseAddress(result geocodeResult) *metadata.Address {
	addr := &metadata.Address{
		FormattedName: result.FormattedAddress,
		PlaceID:       result.PlaceID,
		SiteTags:      append([]string{}, result.Types...),
	}

	for _, component := range result.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality", "administrative_area_level_3":
				addr.Town = component.LongName
				addr.City = component.LongName
			case "administrative_area_level_2":
				addr.District = component.LongName
				addr.County = component.LongName
			case "administrative_area_level_1":
				addr.Region = component.LongName
			case "route":
				addr.Street = component.LongName
			case "country":
				addr.Country = component.LongName
			case "sublocality", "sublocality_level_1":
				addr.Parish = component.LongName
				addr.Division = component.LongName
				addr.Village = component.LongName
				addr.SubCounty = component.LongName
			}
		}
	}

	addr.SearchName = firstNonEmpty(addr.Town, addr.Street, addr.City, addr.District)
	return addr
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
