// Package dicomanon wraps the external DICOM de-identification engine.
//
// The engine itself (header scrubbing, pixel handling, the confidentiality
// profile) is an unmodified third-party tool invoked once per file. This
// package contributes what sits around it: DICOM header inspection for the
// modality filter and the audit trail, the per-file invocation with a
// bounded timeout, and the quarantine decision for burnt-in annotations and
// "Patient Protocol" series.
package dicomanon
