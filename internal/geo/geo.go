// 包 geo：可选的 MaxMind 数据库补充信息（国家/城市/ASN/所属网段），仅用于完整 IPv4 查询
package geo

import (
	"errors"
	"net"

	"clubip-api/internal/logger"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// Info：附加到响应中的地理信息；字段为空时省略
type Info struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	ASN     uint   `json:"asn,omitempty"`
	ASOrg   string `json:"as_org,omitempty"`
	Network string `json:"network,omitempty"`
}

func (i *Info) empty() bool { return *i == Info{} }

type asnRecord struct {
	Number uint   `maxminddb:"autonomous_system_number"`
	Org    string `maxminddb:"autonomous_system_organization"`
}

// Enricher：持有已打开的 City 与 ASN 数据库，二者均可缺省
type Enricher struct {
	city *geoip2.Reader
	asn  *maxminddb.Reader
}

// 文档注释：打开数据库文件
// 背景：City 库走 geoip2 的类型化接口；ASN 库直接使用 maxminddb 以便取得命中的网段（真正的 CIDR 包含关系）。
// 返回：两个路径都为空时返回 nil, nil，表示不启用。
func Open(cityPath, asnPath string) (*Enricher, error) {
	if cityPath == "" && asnPath == "" {
		return nil, nil
	}
	e := &Enricher{}
	if cityPath != "" {
		r, err := geoip2.Open(cityPath)
		if err != nil {
			return nil, err
		}
		e.city = r
	}
	if asnPath != "" {
		r, err := maxminddb.Open(asnPath)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		e.asn = r
	}
	logger.L().Info("geoip_ready", "city", e.city != nil, "asn", e.asn != nil)
	return e, nil
}

// 文档注释：查询地址的补充信息
// 约束：仅接受 IPv4；数据库未命中或出错时返回 nil，不影响主查询结果。
func (e *Enricher) Lookup(ip string) *Info {
	if e == nil {
		return nil
	}
	p := net.ParseIP(ip)
	if p == nil || p.To4() == nil {
		return nil
	}
	var out Info
	if e.city != nil {
		if c, err := e.city.City(p); err == nil {
			out.Country = c.Country.IsoCode
			out.City = c.City.Names["en"]
		} else {
			logger.L().Debug("geoip_city_error", "ip", ip, "err", err)
		}
	}
	if e.asn != nil {
		var rec asnRecord
		network, ok, err := e.asn.LookupNetwork(p, &rec)
		if err != nil {
			logger.L().Debug("geoip_asn_error", "ip", ip, "err", err)
		} else if ok {
			out.ASN = rec.Number
			out.ASOrg = rec.Org
			out.Network = network.String()
		}
	}
	if out.empty() {
		return nil
	}
	return &out
}

func (e *Enricher) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.city != nil {
		errs = append(errs, e.city.Close())
	}
	if e.asn != nil {
		errs = append(errs, e.asn.Close())
	}
	return errors.Join(errs...)
}
