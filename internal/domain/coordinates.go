package domain

// Geographic coordinates of a service pro's start or end location.
type Coordinates struct {
	Lon float64
	Lat float64
}

const metersPerMile = 1609.344

// Distance in meters.
type Distance float64

func (d Distance) Meters() float64 { return float64(d) }

func (d Distance) Miles() float64 { return float64(d) / metersPerMile }

func DistanceFromMiles(miles float64) Distance { return Distance(miles * metersPerMile) }
