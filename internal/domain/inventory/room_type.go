package inventory

// RoomType classifies a room by its occupancy layout.
type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeDorm   RoomType = "dorm"
)

// IsValid returns true if the room type is recognized.
func (t RoomType) IsValid() bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeDorm:
		return true
	}
	return false
}

// String returns the string representation of the room type.
func (t RoomType) String() string {
	return string(t)
}
