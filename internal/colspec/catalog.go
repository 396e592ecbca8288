package colspec

import "github.com/incidentiq/datagen/internal/domain"

type KindInfo struct {
	Kind         domain.Kind `json:"kind"`
	Syntax       string      `json:"syntax"`
	Distribution string      `json:"distribution"`
	Default      string      `json:"default"`
}

var catalog = map[domain.Kind]KindInfo{
	domain.KindID:           {Syntax: "id", Distribution: "sequential, 3-letter prefix + 6 digits", Default: "starts at 000001"},
	domain.KindCategoryList: {Syntax: "[a, b, c]", Distribution: "uniform categorical with replacement", Default: "-"},
	domain.KindDate:         {Syntax: "date [YYYY-YYYY]", Distribution: "uniform day offset", Default: "2020-01-01..2025-10-31"},
	domain.KindInt:          {Syntax: "int [min-max]", Distribution: "uniform integer, inclusive", Default: "0-100"},
	domain.KindFloat:        {Syntax: "float [min-max]", Distribution: "uniform real, 2 dp", Default: "0-1"},
	domain.KindMoney:        {Syntax: "money [min-max]", Distribution: "lognormal at midpoint, sigma 0.5, clipped, 2 dp", Default: "1000-100000"},
	domain.KindBool:         {Syntax: "bool [p%]", Distribution: "Bernoulli", Default: "50%"},
	domain.KindEmail:        {Syntax: "email", Distribution: "user{row}@ one of 4 domains", Default: "-"},
	domain.KindPhone:        {Syntax: "phone", Distribution: "random NNN-NNN-NNNN", Default: "-"},
	domain.KindCurrent:      {Syntax: "current [min-max]", Distribution: "uniform real, 2 dp", Default: "0-10"},
	domain.KindTemperature:  {Syntax: "temperature [min-max]", Distribution: "normal at midpoint, sd range/6, clipped, 2 dp", Default: "15-35"},
	domain.KindVoltage:      {Syntax: "voltage [min-max]", Distribution: "uniform real, 2 dp", Default: "110-240"},
	domain.KindTimestamp:    {Syntax: "timestamp [start end]", Distribution: "uniform second offset", Default: "2024-01-01..now"},
	domain.KindUnspecified:  {Syntax: "anything else", Distribution: "uniform integer", Default: "0-99"},
}

// Catalog describes every kind in display order.
func Catalog() []KindInfo {
	out := make([]KindInfo, 0, len(domain.Kinds))
	for _, k := range domain.Kinds {
		info := catalog[k]
		info.Kind = k
		out = append(out, info)
	}
	return out
}
