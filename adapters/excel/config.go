package excel

// ReaderConfig bounds what the reader accepts
type ReaderConfig struct {
	MaxBytes int64  // 0 means unlimited
	Sheet    string // xlsx sheet to read; empty means the first sheet
}

// DefaultReaderConfig returns a 32 MiB limit on the first sheet
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{MaxBytes: 32 << 20}
}
