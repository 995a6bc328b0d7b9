package weather

// Summarize computes aggregate statistics over a Dataset. Means are rounded
// to the dataset precision. Extremes keep the first city in dataset order
// on ties. An empty Dataset yields Insights with every aggregate absent.
func Summarize(ds Dataset) Insights {
	ins := Insights{TotalCities: ds.Len()}
	if ds.Empty() {
		return ins
	}

	var (
		temp     = newColumnStats()
		tempF    = newColumnStats()
		humidity = newColumnStats()
		windMS   = newColumnStats()
		windMPH  = newColumnStats()
	)

	for _, r := range ds.rows {
		temp.add(r.City, r.TemperatureC)
		tempF.add(r.City, r.TemperatureF)
		humidity.add(r.City, r.HumidityPct)
		windMS.add(r.City, r.WindSpeedMS)
		windMPH.add(r.City, r.WindSpeedMPH)
	}

	ins.Temperature = TemperatureStats{
		Avg:         Some(temp.mean()),
		AvgF:        Some(tempF.mean()),
		Min:         Some(temp.min),
		Max:         Some(temp.max),
		HottestCity: Some(temp.maxCity),
		ColdestCity: Some(temp.minCity),
	}
	ins.Humidity = HumidityStats{
		Avg:            Some(humidity.mean()),
		Min:            Some(humidity.min),
		Max:            Some(humidity.max),
		MostHumidCity:  Some(humidity.maxCity),
		LeastHumidCity: Some(humidity.minCity),
	}
	ins.Wind = WindStats{
		AvgMS:        Some(windMS.mean()),
		AvgMPH:       Some(windMPH.mean()),
		WindiestCity: Some(windMPH.maxCity),
		CalmestCity:  Some(windMPH.minCity),
	}

	return ins
}

// columnStats accumulates one numeric column.
type columnStats struct {
	n                int
	sum              float64
	min, max         float64
	minCity, maxCity string
}

func newColumnStats() *columnStats {
	return &columnStats{}
}

func (c *columnStats) add(city string, v float64) {
	if c.n == 0 {
		c.min, c.max = v, v
		c.minCity, c.maxCity = city, city
	} else {
		// strict comparisons: earlier rows win ties
		if v > c.max {
			c.max, c.maxCity = v, city
		}
		if v < c.min {
			c.min, c.minCity = v, city
		}
	}
	c.n++
	c.sum += v
}

func (c *columnStats) mean() float64 {
	return round(c.sum / float64(c.n))
}
