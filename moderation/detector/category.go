package detector

import (
	"log/slog"
	"strings"
)

// Category identifies one of the four independent detection domains.
type Category string

const (
	CategorySpam          Category = "spam"
	CategoryAdvertisement Category = "advertisement"
	CategoryCaps          Category = "caps"
	CategorySwear         Category = "swear"
)

// Categories lists every category, for iteration in config parsing.
var Categories = []Category{CategorySpam, CategoryAdvertisement, CategoryCaps, CategorySwear}

// ParseCategory maps a config string to a Category. Unrecognized values
// default to spam with a logged warning rather than failing.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategorySpam:
		return CategorySpam
	case CategoryAdvertisement:
		return CategoryAdvertisement
	case CategoryCaps:
		return CategoryCaps
	case CategorySwear:
		return CategorySwear
	default:
		slog.Warn("unrecognized violation category, defaulting to spam", "category", s)
		return CategorySpam
	}
}

func (c Category) String() string {
	return string(c)
}
