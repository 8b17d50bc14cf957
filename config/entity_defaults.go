package config

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// EntityDefaults holds the names substituted for empty textual fields.
type EntityDefaults struct {
	Layer     string
	Linetype  string
	TextStyle string
}

var BuiltinEntityDefaults = EntityDefaults{
	Layer:     "0",
	Linetype:  "BYLAYER",
	TextStyle: "STANDARD",
}

var ErrDefaultsFrozen = errors.New("entity defaults are already in use")

var (
	defaultsMtx    sync.Mutex
	defaultsFrozen bool
	loadedDefaults = BuiltinEntityDefaults
)

// InstallEntityDefaults replaces the process-wide entity defaults. It must be
// called before the first record is initialized; afterwards the defaults are
// frozen and ErrDefaultsFrozen is returned.
func InstallEntityDefaults(d EntityDefaults) error {
	if strings.TrimSpace(d.Layer) == "" || strings.TrimSpace(d.Linetype) == "" || strings.TrimSpace(d.TextStyle) == "" {
		return errors.New("entity defaults must not be empty")
	}

	defaultsMtx.Lock()
	defer defaultsMtx.Unlock()
	if defaultsFrozen {
		return ErrDefaultsFrozen
	}
	loadedDefaults = d
	defaultsFrozen = true
	return nil
}

// LoadedEntityDefaults returns the frozen entity defaults.
func LoadedEntityDefaults() EntityDefaults {
	defaultsMtx.Lock()
	defer defaultsMtx.Unlock()
	defaultsFrozen = true
	return loadedDefaults
}

func (c EntityDefaultsConfig) EntityDefaults() EntityDefaults {
	return EntityDefaults{
		Layer:     c.Layer,
		Linetype:  c.Linetype,
		TextStyle: c.TextStyle,
	}
}
