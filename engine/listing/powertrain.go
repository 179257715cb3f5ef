package listing

// Powertrain is the normalized fuel category of a vehicle.
type Powertrain string

const (
	Petrol   Powertrain = "petrol"
	Diesel   Powertrain = "diesel"
	Hybrid   Powertrain = "hybrid"
	Electric Powertrain = "electric"
	Unknown  Powertrain = "unknown"
)

// Checked in order: hybrid labels often also name the combustion fuel
// ("Hybride essence").
var powertrainTokens = []struct {
	pt     Powertrain
	tokens []string
}{
	{Hybrid, []string{"hybride", "hybrid", "phev", "hev"}},
	{Electric, []string{"electrique", "electric", "ev", "bev"}},
	{Diesel, []string{"diesel", "gazole", "gasoil", "dci", "tdi", "hdi", "bluehdi"}},
	{Petrol, []string{"essence", "petrol", "gasoline", "sp95", "sp98", "e85", "gpl", "lpg", "tce", "puretech", "tsi"}},
}

// ParsePowertrain classifies a free-text fuel label. Case and diacritics are
// ignored.
func ParsePowertrain(fuel string) Powertrain {
	folded := Fold(fuel)
	if folded == "" {
		return Unknown
	}
	for _, group := range powertrainTokens {
		for _, tok := range group.tokens {
			if ContainsWord(folded, tok) {
				return group.pt
			}
		}
	}
	return Unknown
}

// Powertrain returns the classified fuel of the record.
func (r Record) Powertrain() Powertrain { return ParsePowertrain(r.Fuel) }

// Combustion reports whether the powertrain burns fuel (anything but a
// battery-electric vehicle).
func (p Powertrain) Combustion() bool { return p != Electric }
