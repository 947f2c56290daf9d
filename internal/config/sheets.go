package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/cordon/internal/sheets"
)

// LoadSheetsConfig loads the Google Sheets settings. Values under sheets.*
// (config file or CORDON_SHEETS_* env) win over the GOOGLE_SHEETS_*
// variables, which win over the defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	cfg := sheets.DefaultConfig()

	fromViper := func(key string, dst *string) {
		if val := v.GetString(key); val != "" {
			*dst = val
		}
	}
	fromEnv := func(name string, dst *string) {
		if *dst != "" {
			return
		}
		*dst = os.Getenv(name)
	}

	fromViper("sheets.service_account_path", &cfg.ServiceAccountPath)
	fromViper("sheets.client_id", &cfg.ClientID)
	fromViper("sheets.client_secret", &cfg.ClientSecret)
	fromViper("sheets.refresh_token", &cfg.RefreshToken)
	fromViper("sheets.spreadsheet_id", &cfg.SpreadsheetID)
	fromViper("sheets.timezone", &cfg.TimeZone)

	fromEnv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", &cfg.ServiceAccountPath)
	fromEnv("GOOGLE_SHEETS_CLIENT_ID", &cfg.ClientID)
	fromEnv("GOOGLE_SHEETS_CLIENT_SECRET", &cfg.ClientSecret)
	fromEnv("GOOGLE_SHEETS_REFRESH_TOKEN", &cfg.RefreshToken)
	fromEnv("GOOGLE_SHEETS_SPREADSHEET_ID", &cfg.SpreadsheetID)

	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	} else if name := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}

	if n := v.GetInt("sheets.batch_size"); n != 0 {
		cfg.BatchSize = n
	}
	if v.IsSet("sheets.formatting") {
		cfg.EnableFormatting = v.GetBool("sheets.formatting")
	}

	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
