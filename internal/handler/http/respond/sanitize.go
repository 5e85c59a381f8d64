package respond

import (
	"regexp"
)

// Patterns are applied in order; the Anthropic pattern must run before the
// generic OpenAI one.
var (
	anthropicKeyPattern   = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern      = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	huggingFaceKeyPattern = regexp.MustCompile(`hf_[a-zA-Z0-9]{10,}`)

	// apiKey=... as sent to the news API in the query string.
	queryKeyPattern = regexp.MustCompile(`(?i)(api_?key=)[^&\s"]+`)

	bearerPattern     = regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._\-]+`)
	dbPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with API keys, bearer tokens and DSN
// passwords masked. It is safe to log.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks secrets in an arbitrary string.
func Sanitize(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = huggingFaceKeyPattern.ReplaceAllString(msg, "hf_****")
	msg = queryKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
