package apptype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Person
		wantErr string
	}{
		{"ok", Person{ID: "1", Name: "Ada", Born: 1815, Died: Year(1852), Fame: 120}, ""},
		{"living", Person{ID: "2", Name: "Now", Born: 1990}, ""},
		{"bce", Person{ID: "3", Name: "Old", Born: -470, Died: Year(-399)}, ""},
		{"missing name", Person{ID: "4", Born: 1900}, "name is required"},
		{"missing id", Person{Name: "NoID", Born: 1900}, "id is required"},
		{"negative fame", Person{ID: "5", Name: "Neg", Born: 1900, Fame: -1}, "fame must be at least 0"},
		{"died before born", Person{ID: "6", Name: "Back", Born: 1900, Died: Year(1850)}, "died must not be before born"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNormalize_DerivesStableID(t *testing.T) {
	a := Person{Name: "  Ada Lovelace ", Born: 1815}
	a.Normalize()
	assert.Equal(t, "Ada Lovelace", a.Name)
	require.NotEmpty(t, a.ID)

	b := Person{Name: "Ada Lovelace", Born: 1815}
	b.Normalize()
	assert.Equal(t, a.ID, b.ID)

	c := Person{Name: "Ada Lovelace", Born: 1816}
	c.Normalize()
	assert.NotEqual(t, a.ID, c.ID)

	d := Person{ID: "wd:Q7259", Name: "Ada Lovelace", Born: 1815}
	d.Normalize()
	assert.Equal(t, "wd:Q7259", d.ID)
}

func TestValidatePersons_ReportsIndex(t *testing.T) {
	err := ValidatePersons([]Person{
		{ID: "1", Name: "A", Born: 1},
		{ID: "2", Born: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "person 1")
}

func TestPersonBasics(t *testing.T) {
	p := Person{ID: "x", Name: "X", Born: 1950}
	assert.True(t, p.Living())
	assert.Equal(t, 2025, p.EffectiveDeath(2025))
	p.Died = Year(2001)
	assert.False(t, p.Living())
	assert.Equal(t, 2001, p.EffectiveDeath(2025))

	assert.Equal(t, "x", p.Key())
	assert.Equal(t, "X", Person{Name: "X"}.Key())
	assert.Equal(t, []string{"X"}, Chain{p}.Names())
}
