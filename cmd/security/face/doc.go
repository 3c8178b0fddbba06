// Package face implements descriptor comparison for biometric matching.
//
// A descriptor is a fixed-length (128) embedding produced by an external
// face model. Comparison is Euclidean distance; two descriptors closer than
// a configured threshold are considered the same face. The threshold is a
// calibration constant for the descriptor model in use, not a physical one,
// so it stays configurable.
package face
