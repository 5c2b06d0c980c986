// Package bands partitions a frequency range into logarithmically spaced
// analysis bands.
//
// Unlike the IEC 61260 octave system, the partition here is parameterized
// by an arbitrary band count: the range [fMin, fMax] is split into bands
// of constant frequency ratio, which gives perceptually uniform spacing
// on a log-frequency display. The canonical analyzer configuration is
// 120 bands over 20 Hz .. 20 kHz.
package bands
