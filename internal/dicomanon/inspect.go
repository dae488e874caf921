package dicomanon

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Header carries the few source-file attributes the pipeline needs before
// the engine runs: the modality filter, the quarantine pre-checks, and the
// original values for the audit trail.
type Header struct {
	Modality          string
	SeriesDescription string
	BurntIn           bool
	// Attributes holds the audited identifying attributes as read from the
	// source file. They go into the audit store, never into any output
	// filename or spreadsheet field.
	Attributes map[string]string
}

// HeaderReader reads a DICOM header. The pipeline takes it as a seam so
// tests can substitute fixtures without real DICOM files.
type HeaderReader func(path string) (Header, error)

// auditedTags are the identifying attributes recorded original→cleaned in
// the audit store.
var auditedTags = map[string]tag.Tag{
	"PatientID":               tag.PatientID,
	"PatientName":             tag.PatientName,
	"PatientBirthDate":        tag.PatientBirthDate,
	"AccessionNumber":         tag.AccessionNumber,
	"StudyDate":               tag.StudyDate,
	"StudyID":                 tag.StudyID,
	"InstitutionName":         tag.InstitutionName,
	"SeriesDescription":       tag.SeriesDescription,
	"SOPInstanceUID":          tag.SOPInstanceUID,
	"StudyInstanceUID":        tag.StudyInstanceUID,
	"SeriesInstanceUID":       tag.SeriesInstanceUID,
	"PatientAddress":          tag.PatientAddress,
	"OtherPatientIDs":         tag.OtherPatientIDs,
	"PerformingPhysicianName": tag.PerformingPhysicianName,
}

// ReadHeader parses the DICOM header of the file at path. Pixel data is
// skipped; only element values are needed.
func ReadHeader(path string) (Header, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return Header{}, fmt.Errorf("parse DICOM header %s: %w", path, err)
	}

	header := Header{
		Modality:          elementString(ds, tag.Modality),
		SeriesDescription: elementString(ds, tag.SeriesDescription),
		Attributes:        map[string]string{},
	}
	header.BurntIn = strings.EqualFold(elementString(ds, tag.BurnedInAnnotation), "YES")

	for name, t := range auditedTags {
		if value := elementString(ds, t); value != "" {
			header.Attributes[name] = value
		}
	}
	return header, nil
}

func elementString(ds dicom.Dataset, t tag.Tag) string {
	element, err := ds.FindElementByTag(t)
	if err != nil || element == nil {
		return ""
	}
	values, ok := element.Value.GetValue().([]string)
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
