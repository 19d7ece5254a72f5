package core

// AggregateBucket is one group of an aggregation: a key with summed revenue
// and units. Value mirrors Revenue and is the measure charted by default.
type AggregateBucket struct {
	Key         string  `json:"name"`
	Year        int     `json:"year,omitempty"`
	MonthNumber int     `json:"monthNumber,omitempty"`
	Revenue     float64 `json:"revenue"`
	Units       int     `json:"units"`
	Value       float64 `json:"value"`
}

// MetricSet holds the headline KPIs of a filtered record set.
type MetricSet struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalUnits            int     `json:"totalUnits"`
	RevenueGrowthPct      float64 `json:"revenueGrowthPct"`
	UnitsGrowthPct        float64 `json:"unitsGrowthPct"`
	AverageOrderValue     float64 `json:"averageOrderValue"`
	DistinctCategoryCount int     `json:"distinctCategoryCount"`
}

// FilterOptions are the selectable values offered for each dimension, plus
// the revenue bounds used by a threshold slider.
type FilterOptions struct {
	Years      []int    `json:"years"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Products   []string `json:"products"`
	MinRevenue float64  `json:"minRevenue"`
	MaxRevenue float64  `json:"maxRevenue"`
}
