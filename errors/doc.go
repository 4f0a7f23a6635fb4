// Package errors provides structured, coded errors for willow.
//
// Every failure that crosses a package boundary carries an ErrorCode
// identifying what went wrong and an ErrorCategory describing whether a
// retry could help. LLM providers classify SDK failures into these codes
// (bad credentials vs rate limiting vs transient network trouble) so the
// layers above never have to string-match provider error text.
//
// Create errors with New, Newf or Wrap:
//
//	return errors.New(errors.ErrCodeUnauthorized, "openai rejected API key")
//	return errors.Wrap(errors.ErrCodeRateLimit, "gemini call failed", err,
//	    errors.WithProvider("google"))
//
// Inspect errors with CodeOf, IsCode and IsRetryable; Wrap preserves the
// cause chain for errors.Is/As.
package errors
