package client

import (
	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/logging"
)

// newClientLogger builds the stdout logger used when no WithLogger option
// is given. Quiet mode keeps warnings and errors only, without colors.
func newClientLogger(quiet bool) (*zap.Logger, error) {
	if !quiet {
		l, err := logging.NewColoredLogger(logging.ComponentClient, true)
		if err != nil {
			return nil, err
		}
		return l.Logger, nil
	}
	logger, _, err := logging.New(logging.Options{Level: "warn", Format: logging.FormatConsole})
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", string(logging.ComponentClient))), nil
}
