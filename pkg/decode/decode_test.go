package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/decode"
	"canopy/pkg/domain"
)

const yamlDoc = `
id: root
label: Top event
type: OR
children: [leaf]
nodes:
  - id: leaf
    label: Leaf
    type: LEAF
    prob: 0.4
    impact: 1.0
`

const jsonDoc = `{
  "id": "root",
  "label": "Top event",
  "type": "OR",
  "children": ["leaf"],
  "nodes": [
    {"id": "leaf", "label": "Leaf", "type": "LEAF", "prob": 0.4, "impact": 1.0}
  ]
}`

const xmlDoc = `
<spec>
  <id>root</id>
  <label>Top event</label>
  <type>OR</type>
  <children>
    <child>leaf</child>
  </children>
  <nodes>
    <node>
      <id>leaf</id>
      <label>Leaf</label>
      <type>LEAF</type>
      <prob>0.4</prob>
      <impact>1.0</impact>
    </node>
  </nodes>
</spec>`

func TestDecode_YAML(t *testing.T) {
	v, err := decode.Decode([]byte(yamlDoc), "yaml")
	require.NoError(t, err)

	m, ok := v.(map[string]any)
	require.True(t, ok, "top level should decode to a mapping")
	assert.Equal(t, "root", m["id"])
	assert.Equal(t, []any{"leaf"}, m["children"])
}

func TestDecode_JSON(t *testing.T) {
	v, err := decode.Decode([]byte(jsonDoc), "json")
	require.NoError(t, err)

	m, ok := v.(map[string]any)
	require.True(t, ok)
	nodes, ok := m["nodes"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
	leaf := nodes[0].(map[string]any)
	assert.Equal(t, 0.4, leaf["prob"])
}

func TestDecode_XML(t *testing.T) {
	v, err := decode.Decode([]byte(xmlDoc), "xml")
	require.NoError(t, err)

	m, ok := v.(map[string]any)
	require.True(t, ok, "document element should unwrap to a mapping")
	assert.Equal(t, "root", m["id"])

	// A wrapper with a single entry still becomes a proper sequence.
	children, ok := m["children"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"leaf"}, children)

	nodes, ok := m["nodes"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
	leaf, ok := nodes[0].(map[string]any)
	require.True(t, ok)
	// XML scalars stay strings; the normalizer coerces them.
	assert.Equal(t, "0.4", leaf["prob"])
}

func TestDecode_XMLRepeatedTags(t *testing.T) {
	doc := `
<spec>
  <id>r</id>
  <type>AND</type>
  <children>
    <child>a</child>
    <child>b</child>
  </children>
</spec>`
	v, err := decode.Decode([]byte(doc), "xml")
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, []any{"a", "b"}, m["children"])
}

func TestDecode_FormatTagTolerance(t *testing.T) {
	for _, tag := range []string{"yaml", "YAML", "yml", ".yaml"} {
		_, err := decode.Decode([]byte(yamlDoc), tag)
		assert.NoError(t, err, "tag %q should be accepted", tag)
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := decode.Decode([]byte("{}"), "toml")

	var ferr *domain.FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "toml", ferr.Format)
	assert.Contains(t, err.Error(), "toml")
}

func TestDecode_MalformedInput(t *testing.T) {
	cases := map[string]string{
		"yaml": "id: [unclosed",
		"json": `{"id": `,
		"xml":  "<spec><id>oops</spec>",
	}
	for format, body := range cases {
		_, err := decode.Decode([]byte(body), format)

		var ferr *domain.FormatError
		require.ErrorAs(t, err, &ferr, "format %s should wrap its parser error", format)
		assert.NotNil(t, ferr.Err, "format %s should keep the underlying cause", format)
	}
}

func TestAsSequence(t *testing.T) {
	assert.Nil(t, decode.AsSequence(nil))
	assert.Equal(t, []any{"a"}, decode.AsSequence("a"))
	assert.Equal(t, []any{"a", "b"}, decode.AsSequence([]any{"a", "b"}))

	lone := map[string]any{"id": "x"}
	assert.Equal(t, []any{lone}, decode.AsSequence(lone))
}
