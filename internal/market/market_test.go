// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collection-engine/pkg/types"
)

func sampleTraits() []types.LayerTrait {
	return []types.LayerTrait{
		{TraitType: "Background", Value: "night"},
		{TraitType: "Body", Value: "red"},
	}
}

func TestOWRecordShape(t *testing.T) {
	data, err := json.Marshal(OW("Pixel Cats", 3, sampleTraits()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "",
		"meta": {
			"name": "Pixel Cats #3",
			"attributes": [
				{"trait_type": "Background", "value": "night"},
				{"trait_type": "Body", "value": "red"}
			]
		}
	}`, string(data))
}

func TestDMRecordShape(t *testing.T) {
	data, err := json.Marshal(DM("Pixel Cats", 3, sampleTraits()))
	require.NoError(t, err)
	assert.Equal(t,
		`{"inscriptionId":"","name":"Pixel Cats #3","attributes":{"Background":"night","Body":"red"}}`,
		string(data))
}

func TestEmptyTraits(t *testing.T) {
	data, err := json.Marshal(OW("C", 1, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"","meta":{"name":"C #1","attributes":[]}}`, string(data))

	data, err = json.Marshal(DM("C", 1, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"inscriptionId":"","name":"C #1","attributes":{}}`, string(data))
}

func TestCollectorWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "marketmetadata")

	var c Collector
	c.Add("Pixel Cats", 1, sampleTraits())
	c.Add("Pixel Cats", 2, sampleTraits()[:1])
	require.Equal(t, 2, c.Len())
	require.NoError(t, c.WriteFiles(dir))

	owData, err := os.ReadFile(filepath.Join(dir, OWFile))
	require.NoError(t, err)
	var ow []map[string]any
	require.NoError(t, json.Unmarshal(owData, &ow))
	require.Len(t, ow, 2)
	assert.Equal(t, "Pixel Cats #2", ow[1]["meta"].(map[string]any)["name"])
	assert.Contains(t, string(owData), "\n  {\n    \"id\": \"\",", "two-space indentation")

	dmData, err := os.ReadFile(filepath.Join(dir, DMFile))
	require.NoError(t, err)
	var dm []map[string]any
	require.NoError(t, json.Unmarshal(dmData, &dm))
	require.Len(t, dm, 2)
	assert.Equal(t, "Pixel Cats #1", dm[0]["name"])
	assert.Equal(t, map[string]any{"Background": "night"}, dm[1]["attributes"])
}

func TestCollectorWriteFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	var c Collector
	require.NoError(t, c.WriteFiles(dir))

	data, err := os.ReadFile(filepath.Join(dir, DMFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
