package lookup

import "clubip-api/internal/ipquery"

var searchFields = []Field{
	{Source: "CLUB_CODE", Name: "club_code"},
	{Source: "CLUB_NAME", Name: "club_name"},
	{Source: "WAN_IP_EXTRACTED", Name: "wan_ip"},
}

// siteFields：完整站点记录的对外字段，顺序即输出顺序
var siteFields = []Field{
	{Expr: "i.MATCHED_FIELD", Source: "MATCHED_FIELD", Name: "matched_field"},
	{Expr: "f.CLUB_CODE", Source: "CLUB_CODE", Name: "club_code"},
	{Expr: "f.CLUB_NAME_CLEAN", Source: "CLUB_NAME_CLEAN", Name: "club_name"},
	{Expr: "f.CLUB_DISPLAY", Source: "CLUB_DISPLAY", Name: "club_display"},
	{Expr: "f.WAN_IP", Source: "WAN_IP", Name: "wan_ip"},
	{Expr: "f.SUBNET", Source: "SUBNET", Name: "subnet"},
	{Expr: "f.GATEWAY_IP", Source: "GATEWAY_IP", Name: "gateway_ip"},
	{Expr: "f.INTERNAL_LAN", Source: "INTERNAL_LAN", Name: "internal_lan"},
	{Expr: "f.MGMNT_WLAN", Source: "MGMNT_WLAN", Name: "mgmnt_wlan"},
	{Expr: "f.INTERNAL_WLAN", Source: "INTERNAL_WLAN", Name: "internal_wlan"},
	{Expr: "f.PUBLIC_WIFI", Source: "PUBLIC_WIFI", Name: "public_wifi"},
	{Expr: "f.VOIP", Source: "VOIP", Name: "voip"},
	{Expr: "f.IP_CAMERAS", Source: "IP_CAMERAS", Name: "ip_cameras"},
	{Expr: "f.FIREWALL_MODEL", Source: "FIREWALL_MODEL", Name: "firewall_model"},
	{Expr: "f.AP_MODEL", Source: "AP_MODEL", Name: "ap_model"},
	{Expr: "f.AP_COUNT", Source: "AP_COUNT", Name: "ap_count"},
	{Expr: "f.REMOTE_URL", Source: "REMOTE_URL", Name: "remote_url"},
	{Expr: "f.DVR", Source: "DVR", Name: "dvr"},
	{Expr: "f.UNIFI_CONTROLLER", Source: "UNIFI_CONTROLLER", Name: "unifi_controller"},
	{Expr: "f.YEASTAR_PBX", Source: "YEASTAR_PBX", Name: "yeastar_pbx"},
	{Expr: "f.DNS", Source: "DNS", Name: "dns"},
	{Expr: "f.ISP", Source: "ISP", Name: "isp"},
	{Expr: "f.ACCOUNT", Source: "ACCOUNT", Name: "account"},
	{Expr: "f.ADDRESS", Source: "ADDRESS", Name: "address"},
	{Expr: "f.BRAND", Source: "BRAND", Name: "brand"},
}

// 文档注释：内置的四个查询端点
// 背景：Azure 服务标签、按 IP 查俱乐部、完整站点记录、站点列表；表均位于 CLUBIP.PUBLIC，由方言负责限定。
// 约束：每次调用返回新的副本，调用方可以自由修改。
func Builtin() []*Definition {
	defs := []*Definition{
		{
			Name:        "azurelookup",
			Tables:      []Table{{Name: "AZURE_SERVICE_TAGS_PREFIXES"}},
			Filter:      "IP_VERSION = 4",
			MatchColumn: "PREFIX",
			StripMask:   true,
			Fields: []Field{
				{Source: "NAME", Name: "name"},
				{Source: "SYSTEM_SERVICE", Name: "system_service"},
				{Source: "REGION", Name: "region"},
				{Source: "PLATFORM", Name: "platform"},
				{Source: "PREFIX", Name: "prefix"},
			},
			OrderBy:   []string{"SYSTEM_SERVICE", "REGION", "PREFIX"},
			Limit:     50,
			FullIPv4:  ipquery.PolicyExact,
			ExactMode: "exact-base-ip",
			ExactNote: "This is strict base-IP matching. True CIDR containment (IP inside range) is not evaluated.",
			Note:      "Prefix matching compares the dotted-decimal base address only; results approximate subnet membership.",
		},
		{
			Name:           "lookup",
			Tables:         []Table{{Name: "CLUBIP_SEARCH_V"}},
			MatchColumn:    "WAN_IP_EXTRACTED",
			Fields:         append([]Field(nil), searchFields...),
			OrderBy:        []string{"CLUB_CODE", "CLUB_NAME"},
			Limit:          25,
			FullIPv4:       ipquery.PolicyExact,
			Note:           "Prefix matching compares the dotted-decimal WAN address only; results are approximate.",
			InvalidMessage: "Enter a full IPv4 (a.b.c.d) or a prefix (a, a.b, a.b.c).",
		},
		{
			Name: "site",
			Tables: []Table{
				{Name: "CLUBIP_IP_INDEX_V", Alias: "i"},
				{Name: "CLUBIP_FULL_V", Alias: "f", On: "f.CLUB_CODE = i.CLUB_CODE"},
			},
			MatchColumn:    "i.IP_TOKEN",
			Fields:         append([]Field(nil), siteFields...),
			OrderBy:        []string{"i.MATCHED_FIELD"},
			Limit:          20,
			RequireFull:    true,
			Envelope:       EnvelopeRecords,
			InvalidMessage: "Provide a full IPv4 address (x.x.x.x) for site lookup.",
		},
		{
			Name:          "sites",
			Kind:          KindSearch,
			Tables:        []Table{{Name: "CLUBIP_SEARCH_V"}},
			SearchColumns: []string{"CLUB_CODE", "CLUB_NAME", "WAN_IP_EXTRACTED"},
			Fields:        append([]Field(nil), searchFields...),
			OrderBy:       []string{"CLUB_CODE ASC NULLS LAST", "CLUB_NAME ASC"},
			Limit:         500,
		},
	}
	for _, d := range defs {
		d.applyDefaults()
	}
	return defs
}
