// internal/service/template_service.go
package service

import (
	"strings"
)

// RenderTemplate substitutes {{key}} placeholders in an HTML template.
// Empty values fall back to a neutral marker so half-known leads still
// render a presentable message.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "N/A"
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}
