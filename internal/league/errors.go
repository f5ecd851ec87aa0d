package league

import "fmt"

// DataIntegrityError reports a match record that cannot be trusted for the
// rating phase.
type DataIntegrityError struct {
	Match  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: match %s: %s", e.Match, e.Reason)
}

// RosterSizeError reports a registry whose size does not fit the league's
// rank bands.
type RosterSizeError struct {
	Want int
	Got  int
}

func (e *RosterSizeError) Error() string {
	return fmt.Sprintf("roster size: want %d teams, got %d", e.Want, e.Got)
}

// InvalidConfigurationError reports a rejected configuration value.
type InvalidConfigurationError struct {
	Field   string
	Message string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}
