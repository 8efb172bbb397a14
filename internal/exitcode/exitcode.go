package exitcode

const (
	Success            = 0
	UsageError         = 1
	ConfigError        = 2
	ValidationError    = 3
	GenerationError    = 4
	SerializationError = 5
	IOError            = 6
	DBConnError        = 7
	StoreError         = 8
)
