package lookup

import "clubip-api/internal/geo"

// Result：一次查询的结果，供 HTTP 与 CLI 共用
type Result struct {
	Def         *Definition
	Query       string
	Mode        string
	Approximate bool
	Note        string
	Records     []Record
	Geo         *geo.Info
}

type matchesBody struct {
	Query       string    `json:"query"`
	Mode        string    `json:"mode"`
	Approximate bool      `json:"approximate"`
	Note        string    `json:"note,omitempty"`
	Matches     []Record  `json:"matches"`
	Geo         *geo.Info `json:"geo,omitempty"`
}

type recordsBody struct {
	Query   string    `json:"query"`
	Matches []Record  `json:"matches"`
	Geo     *geo.Info `json:"geo,omitempty"`
}

type listingBody struct {
	Count int      `json:"count"`
	Sites []Record `json:"sites"`
}

// Envelope：按定义的信封类型生成对外响应体
func (r *Result) Envelope() any {
	recs := r.Records
	if recs == nil {
		recs = []Record{}
	}
	switch r.Def.Envelope {
	case EnvelopeRecords:
		return recordsBody{Query: r.Query, Matches: recs, Geo: r.Geo}
	case EnvelopeListing:
		return listingBody{Count: len(recs), Sites: recs}
	}
	return matchesBody{
		Query:       r.Query,
		Mode:        r.Mode,
		Approximate: r.Approximate,
		Note:        r.Note,
		Matches:     recs,
		Geo:         r.Geo,
	}
}
