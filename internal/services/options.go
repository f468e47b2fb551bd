package services

import (
	"fmt"
	"strings"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
)

// PipelineOptions turns the pipeline section of the configuration into
// loader options. The preset supplies the column names and any non-empty
// mapping field in the configuration replaces the preset's value.
func PipelineOptions(cfg config.PipelineConfig) (dataprocessing.Options, error) {
	mapping, ok := dataprocessing.MappingPreset(cfg.MappingPreset)
	if !ok {
		return dataprocessing.Options{}, apierrors.NewConfigError(
			fmt.Sprintf("unknown mapping preset %q", cfg.MappingPreset), nil).
			WithContext("mapping_preset", cfg.MappingPreset)
	}

	overrides := []struct {
		target *string
		value  string
	}{
		{&mapping.SalesAmount, cfg.Mapping.SalesAmount},
		{&mapping.OrderDate, cfg.Mapping.OrderDate},
		{&mapping.Region, cfg.Mapping.Region},
		{&mapping.Product, cfg.Mapping.Product},
		{&mapping.OrderID, cfg.Mapping.OrderID},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(o.value); v != "" {
			*o.target = v
		}
	}

	opts := dataprocessing.DefaultOptions()
	opts.Mapping = mapping
	if cfg.Encoding != "" {
		if err := dataprocessing.ValidateEncoding(cfg.Encoding); err != nil {
			return dataprocessing.Options{}, apierrors.NewConfigError("invalid source encoding", err).
				WithContext("encoding", cfg.Encoding)
		}
		opts.Encoding = cfg.Encoding
	}
	if cfg.Delimiter != "" {
		opts.Delimiter = cfg.Delimiter
	}
	if len(cfg.DateLayouts) > 0 {
		opts.DateLayouts = cfg.DateLayouts
	}
	return opts, nil
}
