package validate

import (
	"fmt"
	"path/filepath"

	"github.com/deividlukks/Fayol-sub007/pkg/logging"
)

// LoggingConfig is the subset of logging settings checked here.
type LoggingConfig struct {
	Level      string
	Format     string
	OutputFile string
}

// ValidateLogging checks the level against zap's names, the format against
// the encoders logging.New builds, and that the output file's directory
// is writable.
func ValidateLogging(lc LoggingConfig) []error {
	var errs []error

	if _, err := logging.ParseLevel(lc.Level); err != nil {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: err.Error(),
			Hint:    "debug, info, warn or error",
		})
	}

	switch lc.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("unknown format %q", lc.Format),
			Hint:    logging.FormatConsole + " or " + logging.FormatJSON,
		})
	}

	if lc.OutputFile == "" {
		return errs
	}
	path, err := ExpandHome(lc.OutputFile)
	if err == nil {
		err = ValidateDirWritable(filepath.Dir(path))
	}
	if err != nil {
		errs = append(errs, ValidationError{
			Path:    "logging.output_file",
			Message: fmt.Sprintf("cannot write log file: %v", err),
		})
	}
	return errs
}
