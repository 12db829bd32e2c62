// Package catalog holds the immutable lookup tables loaded at process start:
// the procedure template catalog, the stage keyword table, and the Chilean
// region/province list.
package catalog

import "fmt"

type Category string

const (
	CategoryAdmin     Category = "ADMIN"
	CategoryJudicial  Category = "JUDICIAL"
	CategoryOtros     Category = "OTROS"
	CategoryCorretaje Category = "CORRETAJE"
)

var CategoryLabels = map[Category]string{
	CategoryAdmin:     "Administrativo",
	CategoryJudicial:  "Judicial",
	CategoryOtros:     "Otros",
	CategoryCorretaje: "Corretaje",
}

// CategoryPrefix maps each category to the key prefix shared by its
// templates, so "ADM_" selects every administrative type at once.
var CategoryPrefix = map[Category]string{
	CategoryAdmin:     "ADM_",
	CategoryJudicial:  "JUD_",
	CategoryOtros:     "OTR_",
	CategoryCorretaje: "COR_",
}

// Block is one entry of a template: either a plain step or a named group of
// sub-steps. Optional groups are emitted only when the caller asks for them.
type Block struct {
	Title    string
	Group    bool
	Optional bool
	Steps    []string
}

func step(title string) Block {
	return Block{Title: title}
}

func group(title string, optional bool, steps ...string) Block {
	return Block{Title: title, Group: true, Optional: optional, Steps: steps}
}

// TemplateSpec is one named checklist template of the catalog.
type TemplateSpec struct {
	Key      string
	Label    string
	Category Category
	Blocks   []Block
}

// Flatten produces the ordered step titles for this spec: every plain step,
// plus the sub-steps of each group that is non-optional or whose title is in
// includeGroups. Unknown group titles in includeGroups are silently ignored.
func (t *TemplateSpec) Flatten(includeGroups []string) []string {
	include := make(map[string]bool, len(includeGroups))
	for _, g := range includeGroups {
		include[g] = true
	}
	var out []string
	for _, b := range t.Blocks {
		if !b.Group {
			out = append(out, b.Title)
			continue
		}
		if !b.Optional || include[b.Title] {
			out = append(out, b.Steps...)
		}
	}
	return out
}

// GroupTitles returns the titles of the spec's optional groups, in order.
func (t *TemplateSpec) GroupTitles() []string {
	var out []string
	for _, b := range t.Blocks {
		if b.Group && b.Optional {
			out = append(out, b.Title)
		}
	}
	return out
}

// admStandardBlocks is the shared checklist of the standard administrative
// procedures before the DGA, including the optional "Reparos" round.
func admStandardBlocks() []Block {
	return []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Acuse recibo de presentación"),
		group("Reparos", true,
			"Recopilación antecedentes",
			"Redacción escrito reparo",
			"Envío escrito y antecedentes reparos",
			"Acuse recibo escrito reparos",
		),
		step("Admisibilidad"),
		step("Cotizar publicaciones legales"),
		step("Publicaciones legales"),
		step("Solicitud fondos Visita Técnica"),
		step("Envío fondos Visita Técnica"),
		step("Acuse recibo fondos Visita Técnica"),
		step("Coordinación Visita Técnica"),
		step("Resolución final"),
		step("Fondos para anotar resolución en CBR"),
		step("Anotación en CBR"),
	}
}

var Templates = []TemplateSpec{
	// Administrativo
	{Key: "ADM_PERFECCIONAMIENTO", Label: "Administrativo – Perfeccionamiento", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_CAMBIO_PUNTO", Label: "Administrativo – Cambio de Punto de Captación", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_REGULARIZACION_2T", Label: "Administrativo – Regularización 2T", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_REGULARIZACION_13T", Label: "Administrativo – Regularización 13T", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_TRASLADO", Label: "Administrativo – Traslado", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_NUEVO_DERECHO", Label: "Administrativo – Nuevo Derecho", Category: CategoryAdmin, Blocks: admStandardBlocks()},
	{Key: "ADM_AUTORIZACION_EXTRAORDINARIA", Label: "Administrativo – Autorización Extraordinaria DAA", Category: CategoryAdmin, Blocks: []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Acuse recibo de presentación"),
		step("Admisibilidad"),
		step("Resolución final"),
	}},
	{Key: "ADM_PATENTES", Label: "Administrativo – Patentes", Category: CategoryAdmin, Blocks: []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Acuse recibo de presentación"),
		step("Admisibilidad"),
		step("Resolución final"),
	}},
	{Key: "ADM_CPA", Label: "Administrativo – CPA", Category: CategoryAdmin, Blocks: []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Resolución final"),
	}},
	{Key: "ADM_OTROS", Label: "Administrativo – Otros", Category: CategoryAdmin, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},

	// Judicial
	{Key: "JUD_PERFECCIONAMIENTO", Label: "Judicial – Perfeccionamiento", Category: CategoryJudicial, Blocks: []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Cumple lo ordenado – Acredita Poder"),
		step("Fija audiencia de contestación y conciliación"),
		step("Encargar Notificación Audiencia"),
		step("Notificación Audiencia"),
		step("Realización audiencia contestación y conciliación"),
		step("Dictación Auto de Prueba"),
		step("Encargar Notificación AP"),
		step("Notificación AP"),
		step("Redactar escrito AP"),
		step("Presentar escrito AP"),
		step("Solicitar – Cite a oír sentencia"),
		step("Resolución – Cita a oír sentencia"),
		step("Sentencia"),
		step("Encargar Notificación Sentencia"),
		step("Notificación Sentencia DGA"),
		step("Firme y Ejecutoriada"),
		step("Solicitar exhorto"),
		step("Encargar Notificación Sentencia CBR"),
		step("Notificación Sentencia CBR"),
		step("Ingresar a CPA"),
		step("CPA Listo"),
	}},
	{Key: "JUD_PATENTE", Label: "Judicial – Patente", Category: CategoryJudicial, Blocks: []Block{
		step("Recopilación de antecedentes"),
		step("Redacción"),
		step("Presentación"),
		step("Cumple lo ordenado – Acredita Poder"),
		step("Resolución – Exime patente del listado"),
	}},
	{Key: "JUD_REGULARIZACION_2T", Label: "Judicial – Regularización 2T", Category: CategoryJudicial, Blocks: []Block{
		step("Definir estrategia y pasos"),
	}},
	{Key: "JUD_OUA", Label: "Judicial – OUA", Category: CategoryJudicial, Blocks: []Block{
		step("Definir estrategia y pasos"),
	}},
	{Key: "JUD_OTRO", Label: "Judicial – Otro", Category: CategoryJudicial, Blocks: []Block{
		step("Definir estrategia y pasos"),
	}},

	// Otros
	{Key: "OTR_CBR", Label: "Otros – CBR", Category: CategoryOtros, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "OTR_SII", Label: "Otros – SII", Category: CategoryOtros, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "OTR_TGR", Label: "Otros – TGR", Category: CategoryOtros, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "OTR_DPP", Label: "Otros – DPP", Category: CategoryOtros, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "OTR_TRANSPARENCIA", Label: "Otros – Transparencia", Category: CategoryOtros, Blocks: []Block{
		step("Ingresar Solicitud"),
		step("Recibir Respuesta Transparencia"),
	}},
	{Key: "OTR_INFORMES", Label: "Otros – Informes", Category: CategoryOtros, Blocks: []Block{
		step("Recopilación de antecedentes"),
		group("Solicitud de info por Transparencia", true,
			"Ingresar Solicitud",
			"Recibir Respuesta Transparencia",
		),
		step("Redacción"),
		step("Presentación de informe"),
	}},

	// Corretaje
	{Key: "COR_ESTUDIO_TITULOS", Label: "Corretaje – Estudio de Títulos", Category: CategoryCorretaje, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "COR_COMPRAVENTA", Label: "Corretaje – Compraventa", Category: CategoryCorretaje, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
	{Key: "COR_BUSQUEDA_DAA", Label: "Corretaje – Búsqueda DAA", Category: CategoryCorretaje, Blocks: []Block{
		step("Definir alcance y pasos"),
	}},
}

var templatesByKey = func() map[string]*TemplateSpec {
	m := make(map[string]*TemplateSpec, len(Templates))
	for i := range Templates {
		m[Templates[i].Key] = &Templates[i]
	}
	return m
}()

// ByKey looks up a template spec. An unknown key is a configuration error and
// fails the caller's request.
func ByKey(key string) (*TemplateSpec, error) {
	spec, ok := templatesByKey[key]
	if !ok {
		return nil, fmt.Errorf("unknown template key %q", key)
	}
	return spec, nil
}

// Label returns the display label for a template key, falling back to the key
// itself for custom or unknown types.
func Label(key string) string {
	if spec, ok := templatesByKey[key]; ok {
		return spec.Label
	}
	if key == "" {
		return "Tipo no definido"
	}
	return key
}

// ListByCategory returns the catalog templates of one category, in declared order.
func ListByCategory(c Category) []TemplateSpec {
	var out []TemplateSpec
	for _, t := range Templates {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}
