package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		wantKind ValueKind
		wantErr  bool
	}{
		"integer":          {input: `10`, wantKind: KindNumber},
		"float":            {input: `2.5`, wantKind: KindNumber},
		"string":           {input: `"compact"`, wantKind: KindString},
		"bool":             {input: `true`, wantKind: KindBool},
		"enum":             {input: `["light","dark"]`, wantKind: KindEnum},
		"null rejected":    {input: `null`, wantErr: true},
		"object rejected":  {input: `{"a":1}`, wantErr: true},
		"mixed enum fails": {input: `["a", 1]`, wantErr: true},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var v Value
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, v.Kind())
		})
	}
}

func TestValue_CustomizationMap(t *testing.T) {
	t.Parallel()

	var m map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"stars": 15, "theme": "dark"}`), &m))

	n, ok := m["stars"].Number()
	require.True(t, ok)
	assert.Equal(t, 15.0, n)

	_, ok = m["theme"].Number()
	assert.False(t, ok)
	assert.Equal(t, "dark", m["theme"].Display())
}

func TestValue_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	var limits map[string]Value
	src := "maxStars: 10\nallowedTheme: [light, dark]\nlabel: Rating\nanimated: false\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &limits))

	n, ok := limits["maxStars"].Number()
	require.True(t, ok)
	assert.Equal(t, 10.0, n)

	opts, ok := limits["allowedTheme"].Options()
	require.True(t, ok)
	assert.Equal(t, []string{"light", "dark"}, opts)

	assert.Equal(t, KindString, limits["label"].Kind())
	assert.Equal(t, KindBool, limits["animated"].Kind())
}

func TestValue_RoundTripKeepsVariant(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(map[string]Value{"maxStars": Number(10), "allowedTheme": Enum("a", "b")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"maxStars":10,"allowedTheme":["a","b"]}`, string(data))
}
