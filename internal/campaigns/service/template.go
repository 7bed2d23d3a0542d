package service

import (
	"strings"

	"leadmarket_backend/internal/campaigns/repository"
)

// RenderTemplate substitutes recipient placeholders into the message body.
// Unknown placeholders are left untouched; missing contact fields render empty.
func RenderTemplate(template string, rec repository.Recipient) string {
	firstName := rec.FullName
	if idx := strings.IndexByte(firstName, ' '); idx > 0 {
		firstName = firstName[:idx]
	}

	replacer := strings.NewReplacer(
		"{{name}}", rec.FullName,
		"{{first_name}}", firstName,
		"{{phone}}", optional(rec.Phone),
		"{{email}}", optional(rec.Email),
	)

	return replacer.Replace(template)
}

func optional(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
