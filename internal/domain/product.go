package domain

// Product is a line item of a request for quotation. Historical products and
// similarity queries share this shape.
type Product struct {
	ID        string `json:"id"`
	RequestID string `json:"requestId,omitempty"`
	WLID      string `json:"wlid,omitempty"`

	// Series is the product category. It is a hard filter for similarity.
	Series Attribute `json:"productSeries"`

	HairFiber Attribute `json:"hairFiber"`
	Cap       Attribute `json:"cap"`
	CapSize   Attribute `json:"capSize"`
	Length    Attribute `json:"length"`
	Density   Attribute `json:"density"`
	Color     Attribute `json:"color"`
	CurlStyle Attribute `json:"curlStyle"`

	Quantity int    `json:"quantity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ComparisonField names one of the attributes used for similarity scoring.
type ComparisonField struct {
	Name string
	Get  func(p *Product) Attribute
}

// ComparisonFields is the fixed set of attributes compared between products.
var ComparisonFields = []ComparisonField{
	{Name: "hairFiber", Get: func(p *Product) Attribute { return p.HairFiber }},
	{Name: "cap", Get: func(p *Product) Attribute { return p.Cap }},
	{Name: "capSize", Get: func(p *Product) Attribute { return p.CapSize }},
	{Name: "length", Get: func(p *Product) Attribute { return p.Length }},
	{Name: "density", Get: func(p *Product) Attribute { return p.Density }},
	{Name: "color", Get: func(p *Product) Attribute { return p.Color }},
	{Name: "curlStyle", Get: func(p *Product) Attribute { return p.CurlStyle }},
}
