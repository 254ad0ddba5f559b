package device

import (
	"context"
	"fmt"
)

// Seed inserts the fixture devices with a single bulk insert and returns the
// number of documents submitted. It does not check for existing documents,
// so every run adds another copy of the fixture.
func Seed(ctx context.Context, deviceService IDeviceService) (int, error) {
	devices := SeedDevices()
	log.Infof("Seeding %d devices", len(devices))
	if err := deviceService.InsertMany(ctx, devices); err != nil {
		return 0, fmt.Errorf("insert seed devices: %w", err)
	}
	log.Infof("Inserted %d devices", len(devices))
	return len(devices), nil
}
