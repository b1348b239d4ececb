package models

// AliasFile maps short names to project and service type identifiers.
type AliasFile struct {
	Projects     map[string]string `json:"projects"`
	ServiceTypes map[string]string `json:"serviceTypes"`
}
