package sio

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/structure"
)

// =============================================================================
// BSON Encoding - Compact Binary Storage
// =============================================================================

// EncodeStructureBSON converts a structure to BSON bytes. The wire layout
// matches the JSON document, so the two encodings round-trip through the
// same types.
func EncodeStructureBSON(s *structure.Structure) ([]byte, error) {
	data, err := bson.Marshal(FromStructure(s))
	if err != nil {
		return nil, fmt.Errorf("encode bson: %w", err)
	}
	return data, nil
}

// DecodeStructureBSON deserializes BSON bytes to a structure.
func DecodeStructureBSON(data []byte) (*structure.Structure, error) {
	var doc Document
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bson: %w", err)
	}
	return ToStructure(doc)
}

// EncodeAnalysisBSON converts an analysis to BSON bytes.
func EncodeAnalysisBSON(a *analyze.Analysis) ([]byte, error) {
	data, err := bson.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode bson: %w", err)
	}
	return data, nil
}

// DecodeAnalysisBSON deserializes BSON bytes to an analysis.
func DecodeAnalysisBSON(data []byte) (*analyze.Analysis, error) {
	var a analyze.Analysis
	if err := bson.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode bson: %w", err)
	}
	return &a, nil
}
