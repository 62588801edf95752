package brewery

import "brewfinder/models"

// SampleBreweries returns the static records served when the directory API
// is unreachable. Callers get a fresh slice each time.
func SampleBreweries() []models.Brewery {
	return []models.Brewery{
		{
			ID:          "1",
			Name:        "Sample Micro Brewery",
			BreweryType: "micro",
			Street:      "123 Beer Street",
			City:        "Portland",
			State:       "Oregon",
			Country:     "United States",
			WebsiteURL:  "https://example.com",
			Phone:       "555-0123",
		},
		{
			ID:          "2",
			Name:        "Local Brewpub",
			BreweryType: "brewpub",
			Street:      "456 Ale Avenue",
			City:        "Denver",
			State:       "Colorado",
			Country:     "United States",
			WebsiteURL:  "https://example.com",
			Phone:       "555-0456",
		},
		{
			ID:          "3",
			Name:        "Regional Beer Co.",
			BreweryType: "regional",
			Street:      "789 Lager Lane",
			City:        "San Diego",
			State:       "California",
			Country:     "United States",
			WebsiteURL:  "https://example.com",
			Phone:       "555-0789",
		},
	}
}
