package audio

// Device represents an audio input device
type Device struct {
	ID        int
	Name      string
	IsDefault bool
}

// Config holds the encoding parameters for recordings
type Config struct {
	SampleRate int    // Hz
	Channels   int    // 1 = mono
	Bitrate    string // AAC bitrate, e.g. "128k"
}

// DefaultConfig returns the encoding used for every recording:
// mono, 44.1 kHz, compressed AAC.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		Bitrate:    "128k",
	}
}

// Recorder captures audio from the default input device into a container
// file, one session at a time. Callers serialize access; implementations
// can be swapped without changing the session manager.
type Recorder interface {
	// Start begins capturing to the given file path
	Start(path string) error

	// Stop halts capture and finalizes the container file
	Stop() error

	// Deactivate releases shared capture resources after a stop.
	// A returned error does not invalidate the finished file.
	Deactivate() error

	// IsRunning returns whether a capture process is active
	IsRunning() bool

	// Close releases the recorder entirely
	Close() error
}
