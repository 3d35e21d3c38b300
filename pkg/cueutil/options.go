// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps documents at 1 MiB.
const DefaultMaxFileSize int64 = 1 << 20

type (
	parseOptions struct {
		maxFileSize int64
		filename    string
	}

	// Option adjusts ParseAndDecode and DecodeJSON.
	Option func(*parseOptions)
)

func defaultOptions() parseOptions {
	return parseOptions{maxFileSize: DefaultMaxFileSize}
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) { o.maxFileSize = size }
}

// WithFilename names the document in error messages and CUE positions.
func WithFilename(name string) Option {
	return func(o *parseOptions) { o.filename = name }
}
