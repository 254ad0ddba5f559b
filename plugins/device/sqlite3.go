package device

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	logDb "gorm.io/gorm/logger"
)

// sqliteDevice is the row layout of the device_info table. RowID is a
// surrogate key so the id column can hold duplicates.
type sqliteDevice struct {
	RowID uint `gorm:"primaryKey;column:row_id"`
	Device
}

func (sqliteDevice) TableName() string {
	return CollectionName
}

type Sqlite3Service struct {
	db *gorm.DB
}

// OpenSqlite3 opens the database file and wraps it in a Sqlite3Service.
func OpenSqlite3(filename string) (*Sqlite3Service, error) {
	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{
		Logger: logDb.Default.LogMode(logDb.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", filename, err)
	}
	return NewSqlite3Service(db)
}

func NewSqlite3Service(db *gorm.DB) (*Sqlite3Service, error) {
	if err := db.AutoMigrate(&sqliteDevice{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", CollectionName, err)
	}
	return &Sqlite3Service{db: db}, nil
}

func (service *Sqlite3Service) InsertMany(ctx context.Context, devices []*Device) error {
	log.Infof("Inserting %d devices", len(devices))
	if len(devices) == 0 {
		return nil
	}
	rows := make([]sqliteDevice, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, sqliteDevice{Device: *d})
	}
	return service.db.WithContext(ctx).CreateInBatches(&rows, len(rows)).Error
}

func (service *Sqlite3Service) FindAll(ctx context.Context) ([]*Device, error) {
	log.Debugf("Finding all devices")
	var rows []sqliteDevice
	if err := service.db.WithContext(ctx).Order("row_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (service *Sqlite3Service) FindByID(ctx context.Context, id int) ([]*Device, error) {
	log.Debugf("Finding devices by id %d", id)
	var rows []sqliteDevice
	if err := service.db.WithContext(ctx).Where("id = ?", id).Order("row_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (service *Sqlite3Service) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := service.db.WithContext(ctx).Model(&sqliteDevice{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (service *Sqlite3Service) Close(ctx context.Context) error {
	sqlDB, err := service.db.DB()
	if err != nil {
		return fmt.Errorf("get sql database: %w", err)
	}
	return sqlDB.Close()
}

func fromRows(rows []sqliteDevice) []*Device {
	devices := make([]*Device, 0, len(rows))
	for i := range rows {
		d := rows[i].Device
		devices = append(devices, &d)
	}
	return devices
}
