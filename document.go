package gita

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/natefinch/atomic"
)

// JourneysFileName is the optional journey list inside a content directory.
const JourneysFileName = "journeys.json"

var unitFilePattern = regexp.MustCompile(`^unit(\d+)\.json$`)

// LoadDocument reads unit<N>.json from dir. A missing file returns
// ErrDocumentNotFound.
func LoadDocument(dir string, unitNumber int) (*Document, error) {
	return ReadDocument(filepath.Join(dir, UnitFileName(unitNumber)))
}

// ReadDocument reads a unit document from an explicit path.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

// LoadDocuments reads the listed units from dir, or every unit file when
// units is empty. Units without a file are returned in missing rather than
// as an error.
func LoadDocuments(dir string, units []int) (docs []*Document, missing []int, err error) {
	if len(units) == 0 {
		if units, err = ListUnits(dir); err != nil {
			return nil, nil, err
		}
	}
	for _, n := range units {
		doc, err := LoadDocument(dir, n)
		if errors.Is(err, ErrDocumentNotFound) {
			missing = append(missing, n)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
	}
	return docs, missing, nil
}

// SaveDocument rewrites unit<N>.json in dir atomically and returns its path.
func SaveDocument(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode unit %d: %w", doc.Unit.UnitNumber, err)
	}
	data = append(data, '\n')
	path := filepath.Join(dir, UnitFileName(doc.Unit.UnitNumber))
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ListUnits returns the unit numbers that have a content file in dir, ascending.
func ListUnits(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list content dir: %w", err)
	}
	var units []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := unitFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		units = append(units, n)
	}
	sort.Ints(units)
	return units, nil
}

// UnitNumberFromPath returns the unit number encoded in a unit<N>.json file
// name, or 0 if path is not a unit file.
func UnitNumberFromPath(path string) int {
	m := unitFilePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// DefaultJourneys returns the three built-in journeys.
func DefaultJourneys() []Journey {
	return []Journey{
		{
			ID:            "journey_1",
			Title:         "The Path of Action",
			TitleHi:       "कर्म का मार्ग",
			Description:   "From Arjuna's despair to disciplined, selfless action.",
			DescriptionHi: "अर्जुन के विषाद से निष्काम कर्म तक।",
			Order:         1,
			UnitRange:     "1-6",
		},
		{
			ID:            "journey_2",
			Title:         "The Path of Devotion",
			TitleHi:       "भक्ति का मार्ग",
			Description:   "Knowing the divine and relating to it with love.",
			DescriptionHi: "ईश्वर को जानना और प्रेम से जुड़ना।",
			Order:         2,
			UnitRange:     "7-12",
		},
		{
			ID:            "journey_3",
			Title:         "The Path of Knowledge",
			TitleHi:       "ज्ञान का मार्ग",
			Description:   "Discernment between the field and its knower, and liberation.",
			DescriptionHi: "क्षेत्र और क्षेत्रज्ञ का विवेक, और मोक्ष।",
			Order:         3,
			UnitRange:     "13-18",
		},
	}
}

// LoadJourneys reads journeys.json from dir, falling back to DefaultJourneys
// when the file does not exist.
func LoadJourneys(dir string) ([]Journey, error) {
	path := filepath.Join(dir, JourneysFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultJourneys(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var journeys []Journey
	if err := json.Unmarshal(data, &journeys); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, j := range journeys {
		if j.ID == "" {
			return nil, fmt.Errorf("%w: journey %d has no id", ErrInvalidContent, i)
		}
	}
	sort.SliceStable(journeys, func(i, k int) bool { return journeys[i].Order < journeys[k].Order })
	return journeys, nil
}
