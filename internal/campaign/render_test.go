package campaign

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

func TestRender(t *testing.T) {
	fields := map[string]string{"name": "Anna", "email": "anna@example.com"}

	assert.Equal(t, "Hi Anna", Render("Hi {{name}}", fields))
	assert.Equal(t, "anna@example.com Anna", Render("{{email}} {{name}}", fields))

	// unknown tokens stay verbatim
	assert.Equal(t, "Hi {{nickname}}", Render("Hi {{nickname}}", fields))

	// values are not HTML-escaped
	assert.Equal(t, "<b>&</b>", Render("{{name}}", map[string]string{"name": "<b>&</b>"}))
}

func TestRecipientFields(t *testing.T) {
	c := entity.Client{
		Name:   "Anna",
		Email:  sql.NullString{String: "anna@example.com", Valid: true},
		Mobile: sql.NullString{String: "+3161234", Valid: true},
	}
	fields := RecipientFields(&c)
	assert.Equal(t, "Anna", fields["name"])
	assert.Equal(t, "anna@example.com", fields["email"])
	assert.Equal(t, "+3161234", fields["mobile"])

	// null columns render as empty strings, not "<nil>"
	fields = RecipientFields(&entity.Client{Name: "Bob"})
	assert.Equal(t, "", fields["email"])
	assert.Equal(t, "", fields["mobile"])
}
