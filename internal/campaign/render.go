package campaign

import (
	"strings"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

// RecipientFields returns the token values available to a template for one
// recipient.
func RecipientFields(c *entity.Client) map[string]string {
	fields := map[string]string{
		"name":   c.Name,
		"email":  "",
		"mobile": "",
	}
	if c.Email.Valid {
		fields["email"] = c.Email.String
	}
	if c.Mobile.Valid {
		fields["mobile"] = c.Mobile.String
	}
	return fields
}

// Render substitutes {{field}} tokens with the recipient's values. The
// substitution is plain text, no HTML escaping: recipient-sourced values
// land in the message verbatim. Unknown tokens are left as is.
func Render(tmpl string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
