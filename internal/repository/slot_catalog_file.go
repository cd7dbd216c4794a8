package repository

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lms-timetable/internal/domain"
)

type slotCatalogDocument struct {
	TimeSlots []domain.TimeSlotDefinition `yaml:"time_slots"`
}

// SlotCatalogFile serves a static slot catalog from a YAML document of the form
//
//	time_slots:
//	  - id: s1
//	    name: Slot 1
//	    start_time: "07:30"
//	    end_time: "09:20"
//
// The file is re-read on every call so edits are picked up by the next
// catalog refresh.
type SlotCatalogFile struct {
	path string
}

func NewSlotCatalogFile(path string) *SlotCatalogFile {
	return &SlotCatalogFile{path: path}
}

func (f *SlotCatalogFile) ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read slot catalog %s: %w", f.path, err)
	}

	var doc slotCatalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode slot catalog %s: %w", f.path, err)
	}

	return doc.TimeSlots, nil
}
