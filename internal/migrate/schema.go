// 包 migrate：本地开发库的表与视图初始化
package migrate

import (
	"database/sql"
	"errors"
	"strings"

	"clubip-api/internal/logger"
	"clubip-api/internal/store"
)

// ipFields：参与 IP 索引视图的站点列
var ipFields = []string{
	"WAN_IP", "GATEWAY_IP", "SUBNET", "INTERNAL_LAN", "MGMNT_WLAN",
	"INTERNAL_WLAN", "PUBLIC_WIFI", "VOIP", "IP_CAMERAS", "DNS",
}

// 背景：本地开发与测试时在 SQLite/PostgreSQL 上建立与线上仓库同名的表和视图，保障查询定义可直接运行
// 约束：使用 IF NOT EXISTS / OR REPLACE 避免与既有结构冲突；Snowflake 由数据团队维护，禁止在其上执行
func EnsureSchema(db *sql.DB, d store.Dialect) error {
	if d.Name == "snowflake" {
		return errors.New("migrate: refusing to manage snowflake schema")
	}
	createView := "CREATE OR REPLACE VIEW "
	if d.Name == "sqlite" {
		createView = "CREATE VIEW IF NOT EXISTS "
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS AZURE_SERVICE_TAGS_PREFIXES (
            NAME TEXT NOT NULL,
            SYSTEM_SERVICE TEXT,
            REGION TEXT,
            PLATFORM TEXT,
            PREFIX TEXT NOT NULL,
            IP_VERSION INT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_azure_prefix ON AZURE_SERVICE_TAGS_PREFIXES(PREFIX)`,
		`CREATE TABLE IF NOT EXISTS CLUBIP_SITES (
            CLUB_CODE TEXT,
            CLUB_NAME TEXT,
            CLUB_DISPLAY TEXT,
            WAN_IP TEXT,
            SUBNET TEXT,
            GATEWAY_IP TEXT,
            INTERNAL_LAN TEXT,
            MGMNT_WLAN TEXT,
            INTERNAL_WLAN TEXT,
            PUBLIC_WIFI TEXT,
            VOIP TEXT,
            IP_CAMERAS TEXT,
            FIREWALL_MODEL TEXT,
            AP_MODEL TEXT,
            AP_COUNT INT,
            REMOTE_URL TEXT,
            DVR TEXT,
            UNIFI_CONTROLLER TEXT,
            YEASTAR_PBX TEXT,
            DNS TEXT,
            ISP TEXT,
            ACCOUNT TEXT,
            ADDRESS TEXT,
            BRAND TEXT
        )`,
		createView + `CLUBIP_SEARCH_V AS
            SELECT CLUB_CODE, CLUB_NAME, ` + d.BaseAddr("WAN_IP") + ` AS WAN_IP_EXTRACTED
            FROM CLUBIP_SITES`,
		createView + `CLUBIP_FULL_V AS
            SELECT CLUB_CODE, CLUB_NAME, TRIM(CLUB_NAME) AS CLUB_NAME_CLEAN, CLUB_DISPLAY,
                WAN_IP, SUBNET, GATEWAY_IP, INTERNAL_LAN, MGMNT_WLAN, INTERNAL_WLAN, PUBLIC_WIFI,
                VOIP, IP_CAMERAS, FIREWALL_MODEL, AP_MODEL, AP_COUNT, REMOTE_URL, DVR,
                UNIFI_CONTROLLER, YEASTAR_PBX, DNS, ISP, ACCOUNT, ADDRESS, BRAND
            FROM CLUBIP_SITES`,
		createView + `CLUBIP_IP_INDEX_V AS ` + indexSelect(d),
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "dialect", d.Name)
	return nil
}

// indexSelect：每个 IP 字段展开为一行 (CLUB_CODE, MATCHED_FIELD, IP_TOKEN)
func indexSelect(d store.Dialect) string {
	parts := make([]string, 0, len(ipFields))
	for _, f := range ipFields {
		parts = append(parts, "SELECT CLUB_CODE, '"+f+"' AS MATCHED_FIELD, "+
			d.BaseAddr(f)+" AS IP_TOKEN FROM CLUBIP_SITES WHERE "+f+" IS NOT NULL AND "+f+" <> ''")
	}
	return strings.Join(parts, "\n UNION ALL ")
}
