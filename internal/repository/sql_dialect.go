package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// deliverySecondsExpr 构建交付耗时（秒）表达式，兼容 sqlite 与 postgres。
func deliverySecondsExpr(db *gorm.DB) string {
	return deliverySecondsExprByDialect(dbDialectName(db))
}

func deliverySecondsExprByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "EXTRACT(EPOCH FROM (delivered_at - created_at))"
	default:
		// sqlite 以儒略日差值换算秒
		return "(julianday(delivered_at) - julianday(created_at)) * 86400.0"
	}
}
