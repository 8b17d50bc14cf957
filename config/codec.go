package config

import (
	"dxf/dwire"

	"github.com/pkg/errors"
)

func (c CodecConfig) ParsedVersion() (dwire.Version, error) {
	v, err := dwire.ParseVersion(c.Version)
	if err != nil {
		return 0, errors.Wrap(err, "invalid codec version")
	}
	return v, nil
}

func (c CodecConfig) WriterOptions() (dwire.WriterOptions, error) {
	v, err := c.ParsedVersion()
	if err != nil {
		return dwire.WriterOptions{}, err
	}
	if c.FloatPrecision < dwire.ShortestPrecision || c.FloatPrecision > 16 {
		return dwire.WriterOptions{}, errors.Errorf("float precision %d out of range", c.FloatPrecision)
	}
	// a precision of 0 selects dwire.DefaultPrecision
	return dwire.WriterOptions{
		Version:   v,
		Precision: c.FloatPrecision,
		Flatland:  c.Flatland,
	}, nil
}

func (c CodecConfig) ReaderConfig() dwire.ReaderConfig {
	return dwire.ReaderConfig{
		MaxLineLen: c.MaxLineLen,
	}
}
