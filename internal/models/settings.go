package models

import "github.com/julianstephens/tracker/internal/constants"

// Settings represents application-wide settings
type Settings struct {
	Timezone      string               `json:"timezone" yaml:"timezone" cbor:"1,keyasint"`             // IANA timezone name, or "Local" for the system timezone
	DefaultFilter constants.FilterMode `json:"default_filter" yaml:"default_filter" cbor:"2,keyasint"` // filter mode used when none is given
}
