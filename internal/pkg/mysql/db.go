// internal/pkg/mysql/db.go
package mysql

import (
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options 描述建立 MySQL 连接所需的参数。
type Options struct {
	Addr     string
	User     string
	Password string
	Database string
}

// Open 建立一个带连接池配置的 GORM 连接。
// DSN 通过 go-sql-driver 的 Config 构造，避免手工拼接字符串。
func Open(opts Options) (*gorm.DB, error) {
	mc := gomysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = opts.Addr
	mc.User = opts.User
	mc.Passwd = opts.Password
	mc.DBName = opts.Database
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}

	db, err := gorm.Open(mysql.Open(mc.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql connection")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get underlying sql.DB")
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
