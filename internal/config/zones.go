package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
)

// LoadDirectory builds the zone directory from the zones key, or from the
// built-in directory when the key is absent.
func LoadDirectory(v *viper.Viper) (*model.Directory, error) {
	if v == nil {
		v = viper.GetViper()
	}

	zones := model.DefaultZones()
	if v.IsSet("zones") {
		zones = nil
		if err := v.UnmarshalKey("zones", &zones); err != nil {
			return nil, fmt.Errorf("%w: zones: %v", common.ErrInvalidConfig, err)
		}
	}

	dir, err := model.NewDirectory(zones)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return dir, nil
}
