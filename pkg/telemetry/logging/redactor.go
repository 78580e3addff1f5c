package logging

import (
	"regexp"
	"strings"
)

// Redactor masks credentials and sensitive submission fields in log output.
// Intake submissions carry free-text values (owner contacts, data
// descriptions) that routinely contain emails or identifiers which must not
// land in logs verbatim.
type Redactor struct {
	patterns      []*redactPattern
	sensitiveKeys map[string]bool
}

// redactPattern pairs a compiled regex with its replacement.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternToken       = "token"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternEmail       = "email"
	PatternSSN         = "ssn"
)

// builtinSensitiveKeys are key names whose values are always fully masked,
// regardless of content.
var builtinSensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"auth", "authorization",
	"ssh_key_passphrase", "private_key",
}

// NewRedactor creates a Redactor with the built-in credential patterns plus
// the given extra field names, which are masked by key.
func NewRedactor(extraFields []string) *Redactor {
	r := &Redactor{
		sensitiveKeys: make(map[string]bool),
	}

	for _, k := range builtinSensitiveKeys {
		r.sensitiveKeys[k] = true
	}
	for _, k := range extraFields {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			r.sensitiveKeys[k] = true
		}
	}

	r.patterns = []*redactPattern{
		{
			// GitHub/GitLab access tokens and generic api-key assignments
			name:        PatternToken,
			regex:       regexp.MustCompile(`(ghp_[a-zA-Z0-9]+|glpat-[a-zA-Z0-9_-]+|api[-_]?key[-_:=]\s*[a-zA-Z0-9]+)`),
			replacement: "***",
		},
		{
			name:        PatternBearerToken,
			regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
			replacement: "Bearer ***",
		},
		{
			name:        PatternPassword,
			regex:       regexp.MustCompile(`(password|passwd|pwd)[:=]\s*[^\s]+`),
			replacement: "$1: ***",
		},
		{
			// Keep the first character and domain so entries stay correlatable
			name:        PatternEmail,
			regex:       regexp.MustCompile(`\b([a-zA-Z0-9])[a-zA-Z0-9._%+-]*@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})\b`),
			replacement: "$1***@$2",
		},
		{
			name:        PatternSSN,
			regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			replacement: "***-**-****",
		},
	}

	return r
}

// RedactString applies the built-in patterns to a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactArgs redacts variadic log arguments of the form
// key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && r.IsSensitiveKey(key) {
			redacted[i] = maskValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// RedactMap returns a copy of a submission field map safe for logging.
// Values of sensitive keys are fully masked; other values pass through the
// pattern redaction.
func (r *Redactor) RedactMap(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if r.IsSensitiveKey(k) {
			out[k] = "***"
			continue
		}
		out[k] = r.RedactString(v)
	}
	return out
}

// IsSensitiveKey reports whether a key name marks its value as sensitive.
// Matching is case-insensitive and includes substring matches for the
// built-in credential key names.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if r.sensitiveKeys[lower] {
		return true
	}
	for k := range r.sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// maskValue fully masks a sensitive value, keeping a short prefix of longer
// strings for correlation.
func maskValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return "***"
	}
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}
