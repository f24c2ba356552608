// Package config provides configuration management for ci-mirrors.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Storage: S3 credentials, endpoint and bucket (STORAGE_*)
//   - CDN: public URL used for read-only runs (CDN_*)
//   - Sync: worker limits and staging directory (SYNC_*)
//   - Log: logging level, format and optional file (LOG_*)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Bucket)
package config
