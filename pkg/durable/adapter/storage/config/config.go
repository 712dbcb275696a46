package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type"`             // "local" or "gcs".
	BucketName      string `yaml:"bucket_name"`      // Default bucket for operations.
	CredentialsFile string `yaml:"credentials_file"` // Service account key, for gcs.
	Endpoint        string `yaml:"endpoint"`         // Optional API endpoint override, for gcs emulators.
	BaseDir         string `yaml:"base_dir"`         // Root directory, for local.
}
