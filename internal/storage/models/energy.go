package models

import "time"

// BasicEnergyTypes lists the eight basic energy types in display order.
var BasicEnergyTypes = []string{
	"Grass",
	"Fire",
	"Water",
	"Lightning",
	"Psychic",
	"Fighting",
	"Darkness",
	"Metal",
}

// IsBasicEnergyType reports whether t is one of BasicEnergyTypes.
func IsBasicEnergyType(t string) bool {
	for _, bt := range BasicEnergyTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// BasicEnergy is the user's owned count of one basic energy type.
type BasicEnergy struct {
	Type         string    `json:"type"`
	Count        int       `json:"count"`
	DateModified time.Time `json:"date_modified"`
}
