// internal/service/order/infrastructure/gorm_repository_test.go
package infrastructure

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newDryRunDB 构造一个只生成 SQL 不执行的 gorm 句柄。
// sql.Open 是惰性的，关掉自动 Ping 与版本探测后全程不需要真实连接。
// 返回的切片收集查询路径上生成的每一条 SQL。
func newDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()

	sqlDB, err := sql.Open("mysql", "user:pass@tcp(127.0.0.1:3306)/dryrun")
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := &[]string{}
	err = db.Callback().Query().After("gorm:query").Register("capture_statements", func(tx *gorm.DB) {
		*statements = append(*statements, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, statements
}

func anyForUpdate(statements []string) bool {
	for _, stmt := range statements {
		if strings.Contains(stmt, "FOR UPDATE") {
			return true
		}
	}
	return false
}

// 事务上下文里的订单读取必须带行锁。普通 SELECT 在可重复读下
// 不加锁，两次并发取消会同时读到 PROCESSING、各归还一次库存；
// FOR UPDATE 让后到的事务排队并读到已提交的终态。
func TestTxContextOrderReadsTakeRowLock(t *testing.T) {
	db, statements := newDryRunDB(t)

	repo, ok := (&gormTxContext{tx: db}).Orders().(*GormOrderRepository)
	require.True(t, ok)
	assert.True(t, repo.forUpdate)

	_, _ = repo.FindByShippingCode(context.Background(), "GHN123")
	assert.True(t, anyForUpdate(*statements))

	*statements = (*statements)[:0]
	_, _ = repo.FindByID(context.Background(), "tenant-1", "order-1")
	assert.True(t, anyForUpdate(*statements))
}

// 事务之外的查询路径（GetOrder 读接口）保持普通读，不持有行锁。
func TestPlainOrderReadsDoNotLock(t *testing.T) {
	db, statements := newDryRunDB(t)

	repo := NewGormOrderRepository(db)
	_, _ = repo.FindByID(context.Background(), "tenant-1", "order-1")
	_, _ = repo.FindByShippingCode(context.Background(), "GHN123")

	assert.NotEmpty(t, *statements)
	assert.False(t, anyForUpdate(*statements))
}
