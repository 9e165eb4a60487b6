package models

import "fmt"

// InstrumentInfo is identified by model, serial number and software version.
type InstrumentInfo struct {
	ID              int64  `json:"id"`
	Model           string `json:"model" validate:"required"`
	SerialNumber    string `json:"serial_number" validate:"required"`
	SoftwareVersion string `json:"sw_version" validate:"required"`
}

func (i InstrumentInfo) String() string {
	return fmt.Sprintf("%s/%s/%s", i.Model, i.SerialNumber, i.SoftwareVersion)
}
