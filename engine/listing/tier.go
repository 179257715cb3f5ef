package listing

// BrandTier groups makes by their running-cost profile.
type BrandTier int

const (
	Mainstream BrandTier = iota
	Premium
	Luxury
)

func (t BrandTier) String() string {
	switch t {
	case Premium:
		return "premium"
	case Luxury:
		return "luxury"
	default:
		return "mainstream"
	}
}

var luxuryMakes = map[string]bool{
	"porsche": true, "maserati": true, "bentley": true, "ferrari": true,
	"lamborghini": true, "rolls-royce": true, "rolls royce": true,
	"aston martin": true, "mclaren": true,
}

var premiumMakes = map[string]bool{
	"bmw": true, "audi": true, "mercedes": true, "mercedes-benz": true,
	"lexus": true, "volvo": true, "jaguar": true, "land rover": true,
	"tesla": true, "alfa romeo": true, "genesis": true, "infiniti": true,
	"ds": true, "mini": true,
}

// TierOf returns the brand tier for a make name.
func TierOf(make_ string) BrandTier {
	m := Fold(make_)
	switch {
	case luxuryMakes[m]:
		return Luxury
	case premiumMakes[m]:
		return Premium
	default:
		return Mainstream
	}
}

// Upmarket reports whether the tier is premium or luxury.
func (t BrandTier) Upmarket() bool { return t != Mainstream }
