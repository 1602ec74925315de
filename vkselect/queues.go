package vkselect

// NoFamily marks a queue-family slot that could not be resolved.
const NoFamily = -1

// QueueIndices holds the queue families resolved for a device. Indices
// stay valid for the lifetime of any logical device created from them.
type QueueIndices struct {
	Graphics int
	Present  int
}

func (i QueueIndices) HasGraphics() bool {
	return i.Graphics != NoFamily
}

// Valid reports whether both the graphics and presentation slots
// resolved.
func (i QueueIndices) Valid() bool {
	return i.Graphics != NoFamily && i.Present != NoFamily
}

// ResolveQueues walks the profile's queue families in enumeration order
// and records the first family that can run graphics work and, when
// needPresent is set, the first family that can present. The two slots
// resolve independently and may name the same family. The scan stops as
// soon as every slot in scope is filled; unfilled slots stay NoFamily.
func ResolveQueues(profile DeviceProfile, needPresent bool) QueueIndices {
	indices := QueueIndices{Graphics: NoFamily, Present: NoFamily}

	for _, family := range profile.Families {
		if family.Count == 0 {
			continue
		}
		if indices.Graphics == NoFamily && family.IsGraphics() {
			indices.Graphics = family.Index
		}
		if indices.Present == NoFamily && family.CanPresent {
			indices.Present = family.Index
		}
		if indices.HasGraphics() && (!needPresent || indices.Present != NoFamily) {
			break
		}
	}

	return indices
}
