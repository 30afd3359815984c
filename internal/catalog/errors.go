package catalog

import "fmt"

// Detail pinpoints one offending field of a malformed library document.
type Detail struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
	Hint    string `json:"hint"`
}

// ConfigError reports malformed or incomplete threshold/scenario tables.
// It is a load-time fatal condition: a process must refuse to serve
// requests rather than classify against broken tables.
type ConfigError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []Detail `json:"details"`
}

func (e *ConfigError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%d issues, first: %s %s)", e.Code, e.Message, len(e.Details), e.Details[0].Field, e.Details[0].Problem)
}
