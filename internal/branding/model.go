package branding

import (
	"errors"
	"time"
)

const (
	DefaultPrimaryColor   = "#1F2937"
	DefaultSecondaryColor = "#3B82F6"
	DefaultFontFamily     = "Inter"
)

var (
	ErrNotFound         = errors.New("branding not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedImage = errors.New("unsupported logo type")
)

// FontFamilies lists the fonts the résumé renderer ships with.
var FontFamilies = []string{"Inter", "Roboto", "Lato", "Open Sans", "Merriweather", "Georgia", "Source Sans Pro"}

// Branding is a user's custom résumé theme.
type Branding struct {
	UserID         string    `json:"-"`
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	FontFamily     string    `json:"fontFamily"`
	LogoKey        string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func defaults(userID string) Branding {
	return Branding{
		UserID:         userID,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		FontFamily:     DefaultFontFamily,
	}
}
