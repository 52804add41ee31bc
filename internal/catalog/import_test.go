package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse decodes a JSON literal the way the import path receives it.
func parse(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestMergeImport_EmptyCatalog(t *testing.T) {
	raw := parse(t, `[{"store":"Auchan","item":"Milk","price":2.5}]`)

	merged, report, err := MergeImport(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 1}, report)
	require.Len(t, merged, 1)
	assert.Equal(t, "Auchan", merged[0].Store)
	assert.Equal(t, "Milk", merged[0].Name)
	assert.Equal(t, 2.5, merged[0].Price)
	assert.True(t, strings.HasPrefix(merged[0].ID, "item-"), "id must be synthesized")
}

func TestMergeImport_NonArrayFails(t *testing.T) {
	_, _, err := MergeImport(nil, parse(t, `{"store":"Auchan"}`))
	require.Error(t, err)

	_, _, err = MergeImport(nil, parse(t, `"nope"`))
	require.Error(t, err)
}

func TestMergeImport_DuplicateWithinBatch(t *testing.T) {
	raw := parse(t, `[
		{"store":"Auchan","item":"Milk"},
		{"store":"Auchan","item":"Milk"}
	]`)

	merged, report, err := MergeImport(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 1, Duplicates: 1}, report)
	assert.Len(t, merged, 1)
}

func TestMergeImport_DuplicateAgainstExisting(t *testing.T) {
	existing := []Item{{ID: "item-1", Store: "Auchan", Name: "Milk", Price: 2.5}}
	raw := parse(t, `[{"store":"AUCHAN","item":"milk","price":9.9}]`)

	merged, report, err := MergeImport(existing, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Duplicates: 1}, report)
	require.Len(t, merged, 1)
	assert.Equal(t, 2.5, merged[0].Price, "existing item must be untouched")
}

func TestMergeImport_InvalidRecords(t *testing.T) {
	raw := parse(t, `[
		{"store":"","item":"Milk"},
		{"store":"Auchan","item":"   "},
		{"store":"Auchan"},
		42,
		{"store":"Auchan","item":"Eggs"}
	]`)

	merged, report, err := MergeImport(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 1, Invalid: 4}, report)
	require.Len(t, merged, 1)
	assert.Equal(t, "Eggs", merged[0].Name)
}

func TestMergeImport_FieldNameVariants(t *testing.T) {
	raw := parse(t, `[
		{"Store":"Lidl","Name":"Bread","Price":1.2},
		{"STORE":"Aldi","ITEM":"Butter","PRICE":"3.4"}
	]`)

	merged, report, err := MergeImport(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 2}, report)
	require.Len(t, merged, 2)
	assert.Equal(t, "Lidl", merged[0].Store)
	assert.Equal(t, "Bread", merged[0].Name)
	assert.Equal(t, 1.2, merged[0].Price)
	assert.Equal(t, "Aldi", merged[1].Store)
	assert.Equal(t, "Butter", merged[1].Name)
	assert.Equal(t, 3.4, merged[1].Price)
}

func TestMergeImport_ItemPreferredOverName(t *testing.T) {
	raw := parse(t, `[{"store":"Lidl","item":"Bread","name":"ignored"}]`)

	merged, _, err := MergeImport(nil, raw)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Bread", merged[0].Name)
}

func TestMergeImport_PriceDefaults(t *testing.T) {
	raw := parse(t, `[
		{"store":"A","item":"no price"},
		{"store":"A","item":"bad string","price":"not a number"},
		{"store":"A","item":"bool price","price":true},
		{"store":"A","item":"string price","price":" 4.5 "}
	]`)

	merged, report, err := MergeImport(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 4}, report)
	assert.Equal(t, 0.0, merged[0].Price)
	assert.Equal(t, 0.0, merged[1].Price)
	assert.Equal(t, 0.0, merged[2].Price)
	assert.Equal(t, 4.5, merged[3].Price)
}

func TestMergeImport_PreservesUnusedID(t *testing.T) {
	raw := parse(t, `[{"id":"x","store":"Auchan","item":"Milk"}]`)

	merged, _, err := MergeImport(nil, raw)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "x", merged[0].ID, "unused supplied id must be preserved")
}

func TestMergeImport_ReplacesCollidingID(t *testing.T) {
	existing := []Item{{ID: "x", Store: "Lidl", Name: "Bread"}}
	raw := parse(t, `[{"id":"x","store":"Auchan","item":"Milk"}]`)

	merged, report, err := MergeImport(existing, raw)
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 1}, report)
	require.Len(t, merged, 2)
	assert.NotEqual(t, "x", merged[1].ID, "colliding id must be re-synthesized")
	assert.NotEmpty(t, merged[1].ID)
}

func TestMergeImport_UniqueIDsWithinBatch(t *testing.T) {
	raw := parse(t, `[
		{"store":"A","item":"one"},
		{"store":"A","item":"two"},
		{"store":"A","item":"three"}
	]`)

	merged, _, err := MergeImport(nil, raw)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, it := range merged {
		assert.False(t, seen[it.ID], "id %q assigned twice", it.ID)
		seen[it.ID] = true
	}
}

func TestMergeImport_OutputOrder(t *testing.T) {
	existing := []Item{
		{ID: "1", Store: "A", Name: "first"},
		{ID: "2", Store: "A", Name: "second"},
	}
	raw := parse(t, `[
		{"store":"B","item":"third"},
		{"store":"B","item":"fourth"}
	]`)

	merged, _, err := MergeImport(existing, raw)
	require.NoError(t, err)
	require.Len(t, merged, 4)

	names := make([]string, len(merged))
	for i, it := range merged {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, names)
}

func TestMergeImport_DoesNotMutateInput(t *testing.T) {
	existing := []Item{{ID: "1", Store: "A", Name: "first"}}
	raw := parse(t, `[{"store":"B","item":"second"}]`)

	_, _, err := MergeImport(existing, raw)
	require.NoError(t, err)
	assert.Len(t, existing, 1)
	assert.Equal(t, "first", existing[0].Name)
}

func TestMergeImport_RoundTripThroughExport(t *testing.T) {
	l := &List{}
	_, err := l.AddItem("Auchan", "Milk", 2.5)
	require.NoError(t, err)
	_, err = l.AddItem("Lidl", "Bread", 1.2)
	require.NoError(t, err)

	data, err := Export(l.Items)
	require.NoError(t, err)

	merged, report, err := MergeImport(nil, parse(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, Report{Accepted: 2}, report)
	assert.Equal(t, l.Items, merged, "export/import must round-trip exactly, ids included")
}
