package sitegen

import "fmt"

// ModeEnvVar is the environment variable consulted for the build mode.
const ModeEnvVar = "NODE_ENV"

// Mode selects between readable, hot-reload friendly output and minified output.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode converts a mode name into a Mode. An empty string selects development.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeDevelopment:
		return ModeDevelopment, nil
	case ModeProduction:
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("%w: %q must be %s or %s", ErrInvalidMode, s, ModeDevelopment, ModeProduction)
	}
}

// ModeFromEnv reads the build mode through getenv exactly once.
func ModeFromEnv(getenv func(string) string) (Mode, error) {
	return ParseMode(getenv(ModeEnvVar))
}

func (m Mode) Production() bool { return m == ModeProduction }

func (m Mode) String() string { return string(m) }
