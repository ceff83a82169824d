package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "Yabatech is in Lagos.\n"),
		DataPath: writeFile(t, dir, "data.json", `{"schools": {"science": ["Computer Science"]}, "founded": 1947}`),
	}

	kb, err := Load(src)
	require.NoError(t, err)

	assert.Equal(t, "Yabatech is in Lagos.\n", kb.FreeText())
	assert.Equal(t, `{"founded":1947,"schools":{"science":["Computer Science"]}}`, kb.CanonicalJSON())

	m, ok := kb.Structured().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "schools")
}

func TestLoad_Idempotent(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: writeFile(t, dir, "data.json", `{"b": 2, "a": [1, 2, {"z": true, "y": null}]}`),
	}

	first, err := Load(src)
	require.NoError(t, err)
	second, err := Load(src)
	require.NoError(t, err)

	assert.Equal(t, first.FreeText(), second.FreeText())
	assert.Equal(t, first.CanonicalJSON(), second.CanonicalJSON())
	assert.Equal(t, first.Structured(), second.Structured())
}

func TestLoad_JSONKeepsNumbersAndMarkupVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: writeFile(t, dir, "data.json", `{"matric":20230412345678901,"fees":"<b>N50,000</b> & more"}`),
	}

	kb, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, `{"fees":"<b>N50,000</b> & more","matric":20230412345678901}`, kb.CanonicalJSON())
}

func TestLoad_TrailingData(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: writeFile(t, dir, "data.json", `{"a": 1} {"b": 2}`),
	})
	assert.ErrorIs(t, err, ErrResourceLoad)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: writeFile(t, dir, "data.yaml", "departments:\n  - name: Computer Science\n    utme_subjects: 4\n"),
	}

	kb, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, `{"departments":[{"name":"Computer Science","utme_subjects":4}]}`, kb.CanonicalJSON())
}

func TestLoad_MissingText(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath: filepath.Join(dir, "missing.txt"),
		DataPath: writeFile(t, dir, "data.json", `{}`),
	})
	assert.ErrorIs(t, err, ErrResourceLoad)
}

func TestLoad_MissingData(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: filepath.Join(dir, "missing.json"),
	})
	assert.ErrorIs(t, err, ErrResourceLoad)
}

func TestLoad_MalformedData(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath: writeFile(t, dir, "knowledge.txt", "text"),
		DataPath: writeFile(t, dir, "data.json", `{"unterminated": `),
	})
	assert.ErrorIs(t, err, ErrResourceLoad)
}

const departmentSchema = `{
	"type": "object",
	"required": ["departments"],
	"properties": {
		"departments": {"type": "array", "items": {"type": "object", "required": ["name"]}}
	}
}`

func TestLoad_SchemaValid(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath:   writeFile(t, dir, "knowledge.txt", "text"),
		DataPath:   writeFile(t, dir, "data.json", `{"departments": [{"name": "Marine Engineering"}]}`),
		SchemaPath: writeFile(t, dir, "schema.json", departmentSchema),
	})
	require.NoError(t, err)
}

func TestLoad_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath:   writeFile(t, dir, "knowledge.txt", "text"),
		DataPath:   writeFile(t, dir, "data.json", `{"departments": [{"code": "MEE"}]}`),
		SchemaPath: writeFile(t, dir, "schema.json", departmentSchema),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceLoad)
	assert.Contains(t, err.Error(), "name")
}

func TestLoad_MissingSchema(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		TextPath:   writeFile(t, dir, "knowledge.txt", "text"),
		DataPath:   writeFile(t, dir, "data.json", `{}`),
		SchemaPath: filepath.Join(dir, "nope.json"),
	})
	assert.ErrorIs(t, err, ErrResourceLoad)
}

func TestValidate_EmptySchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, Validate([]byte(`[1,2,3]`), nil))
}

func TestNew_UnencodableValue(t *testing.T) {
	_, err := New("text", map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrResourceLoad)
}
