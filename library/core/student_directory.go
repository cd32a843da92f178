package core

// StudentDirectory maps student IDs to display names.
// The directory is read-only; an ID without an entry is still a valid loan reference.
type StudentDirectory map[StudentIDString]string

// DisplayName returns the name registered for id, or id itself when the directory has no entry.
func (d StudentDirectory) DisplayName(id StudentIDString) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}

	return id
}
