package repository

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"grocerysearch/internal/model"
)

// DecodeDocuments reads catalog documents from a JSON array or from
// newline-delimited JSON (one object per line, as written by mongoexport).
func DecodeDocuments(r io.Reader) ([]model.Document, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Document{}, nil
		}
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var docs []model.Document
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("failed to decode document array: %w", err)
		}
		return docs, nil
	}

	docs := []model.Document{}
	for {
		var doc model.Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadDocumentsFile decodes catalog documents from a file
func LoadDocumentsFile(path string) ([]model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeDocuments(f)
}

// NewMemoryRepositoryFromFile creates an in-memory repository seeded from a file
func NewMemoryRepositoryFromFile(path string) (*MemoryRepository, error) {
	docs, err := LoadDocumentsFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryRepository(docs...), nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
