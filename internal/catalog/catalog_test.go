package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	t.Parallel()

	milkID := uuid.New()
	raw := `[
	  {
	    "id": "p1",
	    "name": "Coffee",
	    "variants": [
	      {
	        "id": "v-latte",
	        "name": "Latte",
	        "price": 4.5,
	        "effective_tax_rate": 0.19,
	        "consumption": [
	          {"stock_item_id": "` + milkID.String() + `", "quantity": 0.2},
	          {"stock_item_id": "not-a-uuid", "quantity": 1}
	        ]
	      },
	      {"id": "v-espresso", "name": "Espresso", "price": 2.5}
	    ]
	  }
	]`

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	snap, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)

	p, v, ok := snap.FindVariant("v-latte")
	require.True(t, ok)
	assert.Equal(t, "Coffee", p.Name)
	assert.Equal(t, 4.5, v.Price)

	require.Len(t, v.Consumption, 2)
	assert.True(t, v.Consumption[0].Ref.Resolved)
	assert.Equal(t, milkID, v.Consumption[0].Ref.ID)
	assert.False(t, v.Consumption[1].Ref.Resolved)
	assert.Equal(t, "not-a-uuid", v.Consumption[1].Ref.Raw)

	idx := snap.ConsumptionIndex()
	assert.Len(t, idx["v-latte"], 2)
	assert.Empty(t, idx["v-espresso"])

	_, _, ok = snap.FindVariant("missing")
	assert.False(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
