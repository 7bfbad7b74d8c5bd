package domain

// Town is a monitored location.
type Town struct {
	Name string
	Lat  float64
	Lng  float64
}

// Towns is the fixed registry of monitored towns, in display order.
var Towns = []Town{
	{Name: "Juba", Lat: 4.8594, Lng: 31.5804},
	{Name: "Wau", Lat: 7.7011, Lng: 28.0070},
	{Name: "Yambio", Lat: 4.5700, Lng: 28.4167},
	{Name: "Bor", Lat: 6.2065, Lng: 31.5594},
	{Name: "Malakal", Lat: 9.5330, Lng: 32.4730},
	{Name: "Bentiu", Lat: 9.2330, Lng: 29.7820},
}

// LookupTown finds a registry town by exact name.
func LookupTown(name string) (Town, bool) {
	for _, t := range Towns {
		if t.Name == name {
			return t, true
		}
	}
	return Town{}, false
}

// TownNames returns the registry names in display order.
func TownNames() []string {
	names := make([]string, len(Towns))
	for i, t := range Towns {
		names[i] = t.Name
	}
	return names
}
