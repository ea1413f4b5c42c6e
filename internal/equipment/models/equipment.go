package models

import (
	dErrors "trafficwatch/pkg/domain-errors"
)

const (
	maxSerialLen  = 50
	maxModelLen   = 100
	maxAddressLen = 255
)

// Equipment is a registered monitoring device. The serial is the business
// key; two records are the same equipment iff their serials match.
type Equipment struct {
	ID        int64   `json:"id"`
	Serial    string  `json:"serial"`
	Model     string  `json:"model"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Active    bool    `json:"active"`
}

// Equal compares by the business key.
func (e Equipment) Equal(other Equipment) bool {
	return e.Serial == other.Serial
}

// Validate enforces the field constraints delegated to the registry: required
// strings with length limits and coordinates inside the WGS 84 ranges.
func (e Equipment) Validate() error {
	switch {
	case e.Serial == "":
		return dErrors.New(dErrors.CodeUnprocessable, "serial is required")
	case len(e.Serial) > maxSerialLen:
		return dErrors.Newf(dErrors.CodeUnprocessable, "serial must be at most %d characters", maxSerialLen)
	case e.Model == "":
		return dErrors.New(dErrors.CodeUnprocessable, "model is required")
	case len(e.Model) > maxModelLen:
		return dErrors.Newf(dErrors.CodeUnprocessable, "model must be at most %d characters", maxModelLen)
	case e.Address == "":
		return dErrors.New(dErrors.CodeUnprocessable, "address is required")
	case len(e.Address) > maxAddressLen:
		return dErrors.Newf(dErrors.CodeUnprocessable, "address must be at most %d characters", maxAddressLen)
	case e.Latitude < -90 || e.Latitude > 90:
		return dErrors.New(dErrors.CodeUnprocessable, "latitude must be between -90 and 90")
	case e.Longitude < -180 || e.Longitude > 180:
		return dErrors.New(dErrors.CodeUnprocessable, "longitude must be between -180 and 180")
	}
	return nil
}

// MaskSerial hides all but the last four characters of a serial for logging.
func MaskSerial(serial string) string {
	if len(serial) < 4 {
		return "****"
	}
	return "****" + serial[len(serial)-4:]
}
