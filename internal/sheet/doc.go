// Package sheet reads and writes the screening variables CSV.
//
// The input follows a positional contract (person ID, invitation ID,
// screening date in the first three columns, diagnosis date in the tenth)
// that is validated once against the declared header before any row is
// processed. Cleaning a row collapses the two identifier columns into a
// single pseudonym column and coarsens the date columns per the configured
// policy.
package sheet
