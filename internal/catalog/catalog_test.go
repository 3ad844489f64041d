package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLDocument(t *testing.T) {
	f, err := Load("testdata/pioneers.yaml")
	require.NoError(t, err)
	require.Len(t, f.Persons, 3)
	require.Len(t, f.Relations, 1)

	newton := f.Persons[0]
	assert.Equal(t, "q935", newton.ID)
	require.NotNil(t, newton.Died)
	assert.Equal(t, 1727, *newton.Died)
	assert.Equal(t, []string{"physics", "mathematics"}, newton.Domains)

	goodall := f.Persons[2]
	assert.True(t, goodall.Living())
	assert.NotEmpty(t, goodall.ID, "id derived from name and birth year")
}

func TestLoad_JSONList(t *testing.T) {
	f, err := Load("testdata/list.json")
	require.NoError(t, err)
	require.Len(t, f.Persons, 2)
	assert.Equal(t, "Charles Babbage", f.Persons[1].Name)
	assert.Empty(t, f.Relations)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("testdata/catalog.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		format  Format
		body    string
		wantErr string
	}{
		{"died before born", FormatYAML, "- {id: x, name: X, born: 1900, died: 1800}", "died must not be before born"},
		{"missing name", FormatJSON, `[{"id": "x", "born": 1}]`, "name is required"},
		{"duplicate id", FormatYAML, "- {id: x, name: X, born: 1}\n- {id: x, name: Y, born: 2}", "duplicate id"},
		{"dangling relation", FormatJSON, `{"persons": [{"id": "a", "name": "A", "born": 1}], "relations": [{"from": "a", "to": "b", "relationType": "r"}]}`, "unknown person id"},
		{"bad yaml", FormatYAML, "persons: [", "failed to parse yaml"},
		{"bad format", Format("toml"), "", "unsupported catalog format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.body), tc.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON} {
		f, err := Decode(strings.NewReader(""), format)
		require.NoError(t, err)
		assert.Empty(t, f.Persons)
	}
}
