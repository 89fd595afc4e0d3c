package anomaly

import "errors"

var ErrUnknownDimension = errors.New("unknown anomaly dimension")
