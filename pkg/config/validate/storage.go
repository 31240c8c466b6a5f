package validate

import "fmt"

// StorageConfig represents the storage configuration for validation purposes.
type StorageConfig struct {
	Variant       string
	Dir           string
	HasPassphrase bool
	KV            string
	RQLiteDSN     string
	OlricServers  []string
}

// ValidateStorage performs validation of the storage configuration.
func ValidateStorage(sc StorageConfig) []error {
	var errs []error

	switch sc.Variant {
	case "web", "memory", "none", "mobile":
	default:
		errs = append(errs, ValidationError{
			Path:    "storage.variant",
			Message: fmt.Sprintf("invalid value %q", sc.Variant),
			Hint:    "allowed values: web, mobile, memory, none",
		})
		return errs
	}

	if sc.Dir != "" && (sc.Variant == "web" || sc.Variant == "mobile") {
		if err := ValidateDataDir(sc.Dir); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.dir",
				Message: err.Error(),
			})
		}
	}

	if sc.Variant != "mobile" {
		return errs
	}

	if !sc.HasPassphrase {
		errs = append(errs, ValidationError{
			Path:    "storage.passphrase",
			Message: "must not be empty for the mobile variant",
			Hint:    "set FAYOL_STORAGE_PASSPHRASE",
		})
	}

	switch sc.KV {
	case "sqlite", "memory":
	case "rqlite":
		if err := ValidateHTTPURL(sc.RQLiteDSN); err != nil {
			errs = append(errs, ValidationError{
				Path:    "storage.rqlite_dsn",
				Message: err.Error(),
				Hint:    "expected http://host:4001",
			})
		}
	case "olric":
		for i, addr := range sc.OlricServers {
			if err := ValidateHostPort(addr); err != nil {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("storage.olric.servers[%d]", i),
					Message: err.Error(),
				})
			}
		}
	default:
		errs = append(errs, ValidationError{
			Path:    "storage.kv",
			Message: fmt.Sprintf("invalid value %q", sc.KV),
			Hint:    "allowed values: sqlite, rqlite, olric, memory",
		})
	}

	return errs
}
