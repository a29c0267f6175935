package adapter

import (
	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/logger"
)

// Normalize maps a connection failure anywhere in err's chain to
// errors.ConnectionRefused. The engine detail is logged at debug level.
// Other errors are returned unchanged.
func Normalize(err error) error {
	ce, ok := engine.AsConnectError(err)
	if !ok {
		return err
	}
	logger.Get("adapter").Debug("connection failed", logger.Fields(
		logger.FieldEngine, ce.Engine,
		"addr", ce.Addr,
		logger.FieldError, ce.Error(),
	))
	return errors.ConnectionRefused()
}
