// Package aggregate folds a linear-frequency dB magnitude spectrum onto a
// logarithmic band partition, producing one display value per band.
//
// FFT bins are linearly spaced, so low-frequency bands may cover less than
// one bin while high-frequency bands cover hundreds. The bin mapping
// guarantees every band at least one contributing bin, and three reducers
// (mean, max, RMS) control how multi-bin bands collapse to a single value.
package aggregate
