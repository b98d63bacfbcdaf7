// Package constants centralizes the wire-format and server-tuning values
// that don't belong to any single package.
package constants

import "time"

// ChannelLen is the number of samples expected in each of the r/g/b
// channel arrays on the direct-upload HTTP path: haar.Pixels squared.
const ChannelLen = 128 * 128

// HTTP server timeouts, grounded on the teacher's own server tuning.
const (
	ReadTimeout    = 30 * time.Second
	WriteTimeout   = 60 * time.Second
	IdleTimeout    = 60 * time.Second
	RequestTimeout = 30 * time.Second
)

// DefaultDBFile is the CLI's default persistent-store filename.
const DefaultDBFile = "iqdb.db"
