package domain

import "github.com/google/uuid"

// LandStorageEntry is the simplified, single-occupant analogue of Resource
// for winter storage slots on land. The code printed on the slot is the key.
type LandStorageEntry struct {
	Code          string
	OccupantID    *uuid.UUID
	OccupantPhone string
	OccupantEmail string
}

// Status derives the occupancy status from occupant presence.
func (e *LandStorageEntry) Status() OccupancyStatus {
	if e.OccupantID != nil {
		return StatusOccupied
	}
	return StatusAvailable
}
