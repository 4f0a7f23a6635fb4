package llm

import (
	"strings"

	werrors "github.com/vinayprograms/willow/errors"
)

// classifyStatus maps an HTTP status code from a provider SDK to a coded
// error. Zero status falls through to text classification.
func classifyStatus(provider string, status int, err error) *werrors.Error {
	opt := werrors.WithProvider(provider)
	switch {
	case status == 401 || status == 403:
		return werrors.Wrap(werrors.ErrCodeUnauthorized, provider+" rejected credentials", err, opt)
	case status == 429:
		return werrors.Wrap(werrors.ErrCodeRateLimit, provider+" rate limit exceeded", err, opt)
	case status == 402:
		return werrors.Wrap(werrors.ErrCodeQuotaExceeded, provider+" quota or billing issue", err, opt)
	case status == 400 || status == 404 || status == 422:
		return werrors.Wrap(werrors.ErrCodeInvalidInput, provider+" rejected request", err, opt)
	case status == 408 || status == 504:
		return werrors.Wrap(werrors.ErrCodeTimeout, provider+" request timed out", err, opt)
	case status >= 500:
		return werrors.Wrap(werrors.ErrCodeUnavailable, provider+" temporarily unavailable", err, opt)
	case status != 0:
		return werrors.Wrap(werrors.ErrCodeProvider, provider+" request failed", err, opt)
	}
	return classifyText(provider, err)
}

// classifyText falls back to inspecting error text when the SDK exposes
// no status code (network errors, SDK-internal failures).
func classifyText(provider string, err error) *werrors.Error {
	opt := werrors.WithProvider(provider)
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key", "api_key", "authentication", "unauthorized", "permission"):
		return werrors.Wrap(werrors.ErrCodeUnauthorized, provider+" authentication failed", err, opt)
	case containsAny(msg, "rate limit", "rate_limit", "too many requests", "429", "overloaded"):
		return werrors.Wrap(werrors.ErrCodeRateLimit, provider+" rate limit exceeded", err, opt)
	case containsAny(msg, "quota", "billing", "payment", "insufficient", "credits"):
		return werrors.Wrap(werrors.ErrCodeQuotaExceeded, provider+" quota or billing issue", err, opt)
	case containsAny(msg, "timeout", "deadline exceeded", "context canceled"):
		return werrors.Wrap(werrors.ErrCodeTimeout, provider+" request timed out", err, opt)
	case containsAny(msg, "connection", "no such host", "network", "eof"):
		return werrors.Wrap(werrors.ErrCodeNetworkErr, provider+" network error", err, opt)
	case containsAny(msg, "unavailable", "bad gateway", "internal server error", "500", "502", "503"):
		return werrors.Wrap(werrors.ErrCodeUnavailable, provider+" temporarily unavailable", err, opt)
	default:
		return werrors.Wrap(werrors.ErrCodeProvider, provider+" request failed", err, opt)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
