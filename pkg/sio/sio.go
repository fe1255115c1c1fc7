// Package sio serializes spatial structures and analyses.
//
// JSON is the canonical, human-readable exchange format; BSON is offered
// for compact binary storage. Both share the same wire types, so the two
// encodings carry identical information.
package sio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signkit/signspace/pkg/analyze"
	"github.com/signkit/signspace/pkg/structure"
)

// =============================================================================
// Structure Serialization API
// =============================================================================

// MarshalStructure converts a structure to JSON bytes.
// Zones, proformes, and elements are sorted by ID for deterministic output.
func MarshalStructure(s *structure.Structure) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeStructureTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalStructure deserializes JSON bytes to a structure.
func UnmarshalStructure(data []byte) (*structure.Structure, error) {
	return readStructureFrom(bytes.NewReader(data))
}

// WriteStructureFile writes a structure to a JSON file.
// The file is created with 0644 permissions.
func WriteStructureFile(s *structure.Structure, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeStructureTo(s, f)
}

// WriteStructure writes a structure as JSON to an io.Writer.
// Use MarshalStructure for in-memory serialization or WriteStructureFile
// for files.
func WriteStructure(s *structure.Structure, w io.Writer) error {
	return writeStructureTo(s, w)
}

// ReadStructureFile reads a JSON file and returns the decoded structure.
// Returns validation errors for unknown zone or relation kinds.
func ReadStructureFile(path string) (*structure.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readStructureFrom(f)
}

// ReadStructure decodes a JSON structure from an io.Reader.
// Use ReadStructureFile for files or pass bytes.NewReader for in-memory
// data.
func ReadStructure(r io.Reader) (*structure.Structure, error) {
	return readStructureFrom(r)
}

// =============================================================================
// Analysis Serialization API
// =============================================================================

// MarshalAnalysis converts an analysis to JSON bytes.
func MarshalAnalysis(a *analyze.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalAnalysis deserializes JSON bytes to an analysis.
func UnmarshalAnalysis(data []byte) (*analyze.Analysis, error) {
	var a analyze.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &a, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeStructureTo(s *structure.Structure, w io.Writer) error {
	doc := FromStructure(s)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readStructureFrom(r io.Reader) (*structure.Structure, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToStructure(doc)
}
