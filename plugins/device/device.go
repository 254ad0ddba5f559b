package device

// Device is a single document of the device_info collection.
// ID is not unique, nothing enforces it.
type Device struct {
	ID        int    `bson:"id" json:"id" yaml:"id" gorm:"column:id;not null"`
	Name      string `bson:"name" json:"name" yaml:"name" gorm:"column:name"`
	IPAddress string `bson:"ip_address" json:"ip_address" yaml:"ip_address" gorm:"column:ip_address"`
}

// SeedDevices returns a fresh copy of the fixture inserted by Seed.
func SeedDevices() []*Device {
	return []*Device{
		{ID: 1, Name: "Router1", IPAddress: "192.168.1.1"},
		{ID: 2, Name: "Switch1", IPAddress: "192.168.1.2"},
		{ID: 3, Name: "Firewall1", IPAddress: "192.168.1.3"},
	}
}
