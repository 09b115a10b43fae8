package service

import (
	"testing"

	"grocerysearch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocument(t *testing.T) {
	doc := model.Document{"_id": int64(9), "item_name": "Toned Milk", "price": 56.0}

	out := normalizeDocument(doc)
	assert.Equal(t, "9", out["_id"])
	assert.Equal(t, "Toned Milk", out["item_name"])
	assert.Equal(t, 56.0, out["price"])
	// the input is left untouched
	assert.Equal(t, int64(9), doc["_id"])

	oid := normalizeDocument(model.Document{"_id": map[string]interface{}{"$oid": "65f1c0ffee"}})
	assert.Equal(t, "65f1c0ffee", oid["_id"])

	noID := normalizeDocument(model.Document{"item_name": "x"})
	_, present := noID["_id"]
	assert.False(t, present)
}
