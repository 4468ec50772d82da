package orchestrator

import (
	"errors"
	"strings"

	"github.com/nao1215/zonecheck/internal/model"
)

const (
	connectivityHint = "Please check your internet connection and make sure the server is running."
	permissionHint   = "Please enable location access and try again."
)

// UserMessage renders err as a human-readable message. Network errors end
// with a connectivity hint, permission errors with a hint to enable
// location access, and configuration errors list what must be configured.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		httpErr    *model.HTTPError
		incomplete *model.IncompleteConfigError
	)
	switch {
	case errors.As(err, &incomplete) && len(incomplete.Missing) > 0:
		var b strings.Builder
		b.WriteString("Configuration required. To use the security analysis service, you must configure:")
		for _, m := range incomplete.Missing {
			b.WriteString("\n  - ")
			b.WriteString(m)
		}
		return b.String()
	case errors.Is(err, model.ErrConfigIncomplete):
		return "Configuration required: " + err.Error() + ". Configure at least one home address and an alert email."
	case errors.Is(err, model.ErrPermissionDenied):
		return "Unable to access your location. " + permissionHint
	case errors.Is(err, model.ErrPositionUnavailable):
		return "Unable to access your location. Location information is unavailable."
	case errors.Is(err, model.ErrLocationTimeout):
		return "Unable to access your location. Location request timed out."
	case errors.Is(err, model.ErrLocationUnsupported):
		return "Unable to access your location. Geolocation is not supported; pass coordinates or enable IP geolocation."
	case errors.Is(err, model.ErrValidationRejected):
		return "The server rejected the configuration: " + rejection(err) + ". Please correct it and save again."
	case model.IsNetworkError(err):
		if errors.Is(err, model.ErrRequestTimeout) {
			return "Unable to reach the server: the request timed out. " + connectivityHint
		}
		return "Unable to reach the server. " + connectivityHint
	case errors.As(err, &httpErr):
		return "Unable to perform security check. " + httpErr.Error()
	case errors.Is(err, model.ErrMalformedResponse):
		return "Unable to perform security check. The server returned an unexpected response."
	default:
		return "Unable to perform security check. " + err.Error()
	}
}

func rejection(err error) string {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	return err.Error()
}
