package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is the version EncodeCollection writes.
//
//	1: bare JSON array, or an object without "version"; "accomplishment"
//	   field, ISO datetimes allowed in "date"
//	2: {"version":2,"entries":[...]}
const SchemaVersion = 2

var ErrUnsupportedSchema = errors.New("unsupported collection schema version")

type collectionDoc struct {
	Version int                `json:"version"`
	Entries []storedReflection `json:"entries"`
}

// storedReflection accepts fields that only exist in older documents.
type storedReflection struct {
	Reflection
	Accomplishment string `json:"accomplishment,omitempty"`
}

// DecodeCollection reads a stored collection of any supported version and
// migrates it to the current one.
func DecodeCollection(raw []byte) ([]Reflection, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []Reflection{}, nil
	}

	var doc collectionDoc
	if raw[0] == '[' {
		doc.Version = 1
		if err := json.Unmarshal(raw, &doc.Entries); err != nil {
			return nil, fmt.Errorf("decode v1 collection: %w", err)
		}
	} else {
		var obj struct {
			Version *int               `json:"version"`
			Entries []storedReflection `json:"entries"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		doc.Version, doc.Entries = 1, obj.Entries
		if obj.Version != nil {
			doc.Version = *obj.Version
		}
	}

	if doc.Version > SchemaVersion || doc.Version < 1 {
		return nil, fmt.Errorf("version %d: %w", doc.Version, ErrUnsupportedSchema)
	}

	out := make([]Reflection, 0, len(doc.Entries))
	for _, s := range doc.Entries {
		if doc.Version < 2 {
			s = migrateV1(s)
		}
		out = append(out, s.Reflection)
	}
	return out, nil
}

// EncodeCollection writes entries at SchemaVersion.
func EncodeCollection(entries []Reflection) ([]byte, error) {
	if entries == nil {
		entries = []Reflection{}
	}
	return json.Marshal(struct {
		Version int          `json:"version"`
		Entries []Reflection `json:"entries"`
	}{Version: SchemaVersion, Entries: entries})
}

func migrateV1(s storedReflection) storedReflection {
	if s.Achievement == "" {
		s.Achievement = s.Accomplishment
	}
	s.Accomplishment = ""

	if len(s.Date) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s.Date); err == nil {
			if s.Timestamp == nil {
				ts := t.UTC()
				s.Timestamp = &ts
			}
			s.Date = t.UTC().Format(DateLayout)
		} else {
			s.Date = s.Date[:len(DateLayout)]
		}
	}

	s.Mood = NormalizeMood(string(s.Mood))
	return s
}
