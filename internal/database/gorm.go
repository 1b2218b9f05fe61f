package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm opens the listing store for the batch pipeline. The request path
// uses the raw SQL layer in this package; batch jobs go through gorm for its
// transaction and batching helpers. The busy timeout keeps the two
// connections from tripping over sqlite's file lock.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
