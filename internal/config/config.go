package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Keys read by the commands.
const (
	KeyStorageBackend = "storage.backend"
	KeyStorageDir     = "storage.dir"
	KeyDatabasePath   = "database.path"
	KeyExportClient   = "export.client"
	KeyOCRBinary      = "ocr.binary"
	KeyOCRLang        = "ocr.lang"
	KeyOCRPSM         = "ocr.psm"
	KeyArchiveWorkDir = "archive.workdir"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	dataDir := filepath.Join("~", ".local", "share", "cordon")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "cordon")
	}

	v.SetDefault(KeyStorageBackend, "json")
	v.SetDefault(KeyStorageDir, dataDir)
	v.SetDefault(KeyDatabasePath, filepath.Join(dataDir, "cordon.db"))
	v.SetDefault(KeyExportClient, "bazar gadol")
	v.SetDefault(KeyOCRBinary, "tesseract")
	v.SetDefault(KeyOCRLang, "eng")
	v.SetDefault(KeyOCRPSM, 0)
	v.SetDefault(KeyArchiveWorkDir, "procesos_tmp")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// StoragePath returns the expanded location for the configured backend:
// the document directory for json, the database file for sqlite.
func StoragePath(v *viper.Viper) (backend, path string) {
	if v == nil {
		v = viper.GetViper()
	}
	backend = v.GetString(KeyStorageBackend)
	if backend == "sqlite" {
		return backend, ExpandPath(v.GetString(KeyDatabasePath))
	}
	return backend, ExpandPath(v.GetString(KeyStorageDir))
}
