package catalog

// Region is one Chilean administrative region and its provinces, used to
// validate procedure location filters and to drive selection prompts.
type Region struct {
	Name      string
	Provinces []string
}

var Regions = []Region{
	{"Arica y Parinacota", []string{"Arica", "Parinacota"}},
	{"Tarapacá", []string{"Iquique", "Tamarugal"}},
	{"Antofagasta", []string{"Antofagasta", "El Loa", "Tocopilla"}},
	{"Atacama", []string{"Copiapó", "Chañaral", "Huasco"}},
	{"Coquimbo", []string{"Elqui", "Choapa", "Limarí"}},
	{"Valparaíso", []string{"Valparaíso", "Marga Marga", "Quillota", "San Antonio", "San Felipe de Aconcagua", "Los Andes", "Petorca", "Isla de Pascua"}},
	{"Metropolitana de Santiago", []string{"Santiago", "Chacabuco", "Cordillera", "Maipo", "Melipilla", "Talagante"}},
	{"Libertador General Bernardo O'Higgins", []string{"Cachapoal", "Colchagua", "Cardenal Caro"}},
	{"Maule", []string{"Talca", "Curicó", "Linares", "Cauquenes"}},
	{"Ñuble", []string{"Diguillín", "Itata", "Punilla"}},
	{"Biobío", []string{"Concepción", "Arauco", "Biobío"}},
	{"La Araucanía", []string{"Cautín", "Malleco"}},
	{"Los Ríos", []string{"Valdivia", "Ranco"}},
	{"Los Lagos", []string{"Llanquihue", "Osorno", "Chiloé", "Palena"}},
	{"Aysén del General Carlos Ibáñez del Campo", []string{"Coyhaique", "Aysén", "General Carrera", "Capitán Prat"}},
	{"Magallanes y de la Antártica Chilena", []string{"Magallanes", "Última Esperanza", "Tierra del Fuego", "Antártica Chilena"}},
}

// FindRegion returns the region with the given name, or false.
func FindRegion(name string) (Region, bool) {
	for _, r := range Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// ValidProvince reports whether province belongs to the named region.
func ValidProvince(region, province string) bool {
	r, ok := FindRegion(region)
	if !ok {
		return false
	}
	for _, p := range r.Provinces {
		if p == province {
			return true
		}
	}
	return false
}
