package service

import (
	"grocerysearch/internal/model"
)

// normalizeDocument returns a shallow copy of doc with its identifier as a plain string.
// Every other field is passed through untouched.
func normalizeDocument(doc model.Document) model.Document {
	out := make(model.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	if id, ok := doc.ID(); ok {
		out[model.FieldID] = id
	}
	return out
}
