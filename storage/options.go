package storage

import "github.com/rs/zerolog"

// DefaultBloomFilterFPR is the default false positive rate of a table's
// in-memory bloom filter.
const DefaultBloomFilterFPR = 0.01

// Options configures how tables are written and opened. A nil *Options
// uses the defaults.
type Options struct {
	// Logger receives debug events for writes and loads. Defaults to a
	// disabled logger.
	Logger *zerolog.Logger

	// BloomFilterFPR is the target false positive rate of the bloom
	// filter built when a table is opened.
	BloomFilterFPR float64
}

func (o *Options) logger() zerolog.Logger {
	if o == nil || o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o *Options) bloomFilterFPR() float64 {
	if o == nil || o.BloomFilterFPR <= 0 || o.BloomFilterFPR >= 1 {
		return DefaultBloomFilterFPR
	}
	return o.BloomFilterFPR
}
