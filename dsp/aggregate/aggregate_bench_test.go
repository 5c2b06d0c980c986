package aggregate

import (
	"testing"

	"github.com/cwbudde/algo-analyzer/dsp/bands"
)

func BenchmarkAggregateInto(b *testing.B) {
	partition, err := bands.MakeLog(20, 20000, 120)
	if err != nil {
		b.Fatal(err)
	}

	spectrum := make([]float64, 2048/2)
	for i := range spectrum {
		spectrum[i] = -60 + float64(i%40)
	}

	dst := make([]float64, len(partition))

	for _, reducer := range []Reducer{Mean, Max, RMS} {
		b.Run(reducer.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				AggregateInto(dst, spectrum, 48000, 2048, partition, reducer)
			}
		})
	}
}
