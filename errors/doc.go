// Package errors provides the tagged error taxonomy used by padflow.
//
// Every failure surfaced by a pipeline is an *AppError carrying one of three
// fatal categories (configuration, execution, misuse) and the name of the
// offending element or pad in Details.
package errors
