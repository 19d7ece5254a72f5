package memory

import (
	"math"
	"math/rand/v2"
	"strconv"

	"salesdash/internal/core"
)

type categoryProfile struct {
	name        string
	baseRevenue float64
	avgPrice    float64
	products    []string
}

var (
	profiles = []categoryProfile{
		{"Electronics", 120000, 800, []string{"Smartphone Pro", "Laptop Ultra", "Wireless Headphones", "Smart Watch"}},
		{"Clothing", 80000, 120, []string{"Designer Jacket", "Running Shoes", "Casual Shirt", "Winter Coat"}},
		{"Home & Garden", 90000, 200, []string{"Garden Tools", "Kitchen Set", "Furniture Collection", "Lighting"}},
		{"Sports", 70000, 150, []string{"Fitness Equipment", "Sports Apparel", "Outdoor Gear", "Team Jerseys"}},
		{"Books", 40000, 25, []string{"Technical Books", "Fiction Novels", "Educational Materials", "Digital Guides"}},
	}

	regions = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Middle East"}

	yearMultipliers = map[int]float64{2022: 1.0, 2023: 1.15, 2024: 1.25}
)

// seasonal is 0.8 in Q1, 1.4 in Q4 and 1.0 otherwise. monthIndex is 0-based.
func seasonal(monthIndex int) float64 {
	switch {
	case monthIndex >= 9:
		return 1.4
	case monthIndex <= 2:
		return 0.8
	default:
		return 1.0
	}
}

// Generate synthesizes the reference dataset: every month of 2022-2024, every
// category and region, with 2 to 4 of the category's products per
// combination. The same seed always yields the same records.
func Generate(seed uint64) []core.SalesRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]core.SalesRecord, 0, 3*12*len(profiles)*len(regions)*3)
	id := 1
	for _, year := range core.DefaultYears() {
		yearMult := yearMultipliers[year]
		for monthIndex := 0; monthIndex < 12; monthIndex++ {
			season := seasonal(monthIndex)
			for _, p := range profiles {
				for _, region := range regions {
					n := rng.IntN(3) + 2
					picked := append([]string(nil), p.products...)
					rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
					for _, product := range picked[:n] {
						revenue := math.Floor(p.baseRevenue * (0.7 + rng.Float64()*0.6) * season * yearMult)
						out = append(out, core.SalesRecord{
							ID:          strconv.Itoa(id),
							Year:        year,
							Month:       core.MonthName(monthIndex + 1),
							MonthNumber: monthIndex + 1,
							Revenue:     revenue,
							Units:       int(math.Floor(revenue / p.avgPrice)),
							Category:    p.name,
							Region:      region,
							Product:     product,
						})
						id++
					}
				}
			}
		}
	}
	return out
}
