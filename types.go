package zcrypt

const (
	// NonceSize is the XChaCha20 extended nonce length
	NonceSize = 24

	// SaltSize is the Argon2id salt length stored in the container header
	SaltSize = 40

	// KeySize is the derived key length (256 bits)
	KeySize = 32

	// HeaderSize is the fixed size of the container header: nonce then salt
	HeaderSize = NonceSize + SaltSize
)

const (
	// MinLevel is the lowest accepted compression level
	MinLevel = 0

	// MaxLevel is the highest accepted compression level; larger values are clamped
	MaxLevel = 9

	// DefaultLevel is used when no level is configured
	DefaultLevel = 6
)

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
	KeySize     uint32 // Derived key size in bytes
}

// FormatParams are the key derivation costs baked into the container format.
// Changing any of them makes previously written containers unreadable.
var FormatParams = Argon2idParams{
	Memory:      65535,
	Iterations:  10,
	Parallelism: 4,
	KeySize:     KeySize,
}

// Options controls the encode side of the pipeline
type Options struct {
	// Level is the compression level, clamped to [MinLevel, MaxLevel]
	Level int

	// Threads is the number of encoder goroutines; 0 selects DefaultThreads()
	Threads int
}

// DefaultOptions returns the options used by the command-line tool when
// nothing else is configured
func DefaultOptions() Options {
	return Options{
		Level:   DefaultLevel,
		Threads: 0,
	}
}

// Stats reports how many bytes moved through one Encode or Decode call
type Stats struct {
	BytesIn      int64 // Bytes read from the source, header included on decode
	BytesOut     int64 // Bytes written to the sink, header included on encode
	PayloadBytes int64 // Encrypted payload bytes, header excluded
}
