package device

import (
	"context"
)

type IDeviceService interface {
	InsertMany(ctx context.Context, devices []*Device) error
	FindAll(ctx context.Context) ([]*Device, error)
	FindByID(ctx context.Context, id int) ([]*Device, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

type StatusChecker interface {
	Check(ctx context.Context, ipAddress string) (Status, error)
}
