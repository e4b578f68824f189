package errors

import "strings"

// Mode selects how much error detail leaves the process.
type Mode int

const (
	ModeDevelopment Mode = iota
	ModeProduction
)

// maps an ENVIRONMENT value to a Mode; anything but production is development
func ParseMode(environment string) Mode {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "production", "prod":
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

func (m Mode) IsProduction() bool {
	return m == ModeProduction
}

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}

	return "development"
}
