package arm

// Range is a closed interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether x lies inside the range.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Scale maps between application units and the controller's system units
// with a clamped linear interpolation: values outside either range pin to
// the nearest end.
type Scale struct {
	App Range `json:"app"`
	Sys Range `json:"sys"`
}

// ToSys converts an application value to system units.
func (s Scale) ToSys(app float64) float64 {
	return convert(app, s.App, s.Sys)
}

// ToApp converts a system value to application units.
func (s Scale) ToApp(sys float64) float64 {
	return convert(sys, s.Sys, s.App)
}

func convert(x float64, from, to Range) float64 {
	if from.Max <= from.Min {
		return to.Min
	}
	f := (x - from.Min) / (from.Max - from.Min)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return to.Min + f*(to.Max-to.Min)
}

// Units groups the three conversions of one servo.
type Units struct {
	Position Scale `json:"position"`
	Velocity Scale `json:"velocity"`
	Torque   Scale `json:"torque"`
}
