package domain

import (
	"time"
	"unicode/utf8"
)

var (
	// ErrItemNotFound is returned when looking up a non-existent clothing item.
	ErrItemNotFound = NewError(KindNotFound, "Item not found")
	// ErrInvalidWeather is returned for a weather value outside the enum.
	ErrInvalidWeather = NewError(KindBadRequest, "Weather must be one of hot, warm, cold")
)

// Weather is the temperature band an item is suited for.
type Weather string

const (
	WeatherHot  Weather = "hot"
	WeatherWarm Weather = "warm"
	WeatherCold Weather = "cold"
)

// Valid reports whether w is one of the known bands.
func (w Weather) Valid() bool {
	switch w {
	case WeatherHot, WeatherWarm, WeatherCold:
		return true
	default:
		return false
	}
}

// ClothingItem is a user-owned resource. Owner is set at creation and never changes.
type ClothingItem struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Weather   Weather   `json:"weather"`
	ImageURL  string    `json:"imageUrl"`
	Owner     string    `json:"owner"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewClothingItem holds the client-supplied fields of an item to create.
type NewClothingItem struct {
	Name     string  `json:"name"`
	Weather  Weather `json:"weather"`
	ImageURL string  `json:"imageUrl"`
}

// Validate checks the fields of a new item.
func (n NewClothingItem) Validate() error {
	if c := utf8.RuneCountInString(n.Name); c < NameMinLength || c > NameMaxLength {
		return BadRequestf("Name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}

	if !n.Weather.Valid() {
		return ErrInvalidWeather
	}

	return ValidateURL("imageUrl", n.ImageURL)
}

// ClothingItemUpdate holds the mutable fields of an item.
type ClothingItemUpdate struct {
	ImageURL string `json:"imageUrl"`
}

// Validate checks the update.
func (u ClothingItemUpdate) Validate() error {
	return ValidateURL("imageUrl", u.ImageURL)
}
