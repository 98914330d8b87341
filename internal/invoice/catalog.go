package invoice

// CatalogItem is one known part name.
type CatalogItem struct {
	Name string `json:"name"`
}

// CatalogCategory groups the static parts catalog by category.
type CatalogCategory struct {
	Category string        `json:"category"`
	Items    []CatalogItem `json:"items"`
}

// StaticPartsCatalog is the built-in bilingual parts list used when mapping
// invoice line items to inventory. Workshop invoices arrive in Portuguese or
// English depending on the supplier, so both forms are listed.
var StaticPartsCatalog = []CatalogCategory{
	{
		Category: "Motor / Engine",
		Items: []CatalogItem{
			{Name: "Filtro de óleo"},
			{Name: "Oil filter"},
			{Name: "Filtro de ar"},
			{Name: "Air filter"},
			{Name: "Filtro de combustível"},
			{Name: "Fuel filter"},
			{Name: "Correia de distribuição"},
			{Name: "Timing belt"},
			{Name: "Bomba de água"},
			{Name: "Water pump"},
			{Name: "Radiador"},
			{Name: "Radiator"},
			{Name: "Óleo de motor 15W40"},
			{Name: "Engine oil 15W40"},
			{Name: "Junta da cabeça"},
			{Name: "Head gasket"},
			{Name: "Turbocompressor"},
			{Name: "Turbocharger"},
		},
	},
	{
		Category: "Travões / Brakes",
		Items: []CatalogItem{
			{Name: "Pastilhas de travão"},
			{Name: "Brake pads"},
			{Name: "Discos de travão"},
			{Name: "Brake discs"},
			{Name: "Tambor de travão"},
			{Name: "Brake drum"},
			{Name: "Calços de travão"},
			{Name: "Brake shoes"},
			{Name: "Líquido de travões"},
			{Name: "Brake fluid"},
			{Name: "Compressor de ar"},
			{Name: "Air compressor"},
		},
	},
	{
		Category: "Suspensão / Suspension",
		Items: []CatalogItem{
			{Name: "Amortecedor dianteiro"},
			{Name: "Front shock absorber"},
			{Name: "Amortecedor traseiro"},
			{Name: "Rear shock absorber"},
			{Name: "Mola de lâmina"},
			{Name: "Leaf spring"},
			{Name: "Rolamento da roda"},
			{Name: "Wheel bearing"},
			{Name: "Barra estabilizadora"},
			{Name: "Stabilizer bar"},
		},
	},
	{
		Category: "Eléctrico / Electrical",
		Items: []CatalogItem{
			{Name: "Bateria 12V 100Ah"},
			{Name: "Battery 12V 100Ah"},
			{Name: "Alternador"},
			{Name: "Alternator"},
			{Name: "Motor de arranque"},
			{Name: "Starter motor"},
			{Name: "Farol dianteiro"},
			{Name: "Headlight"},
			{Name: "Lâmpada H4"},
			{Name: "Bulb H4"},
		},
	},
	{
		Category: "Pneus / Tyres",
		Items: []CatalogItem{
			{Name: "Pneu 295/80 R22.5"},
			{Name: "Tyre 295/80 R22.5"},
			{Name: "Pneu 215/75 R17.5"},
			{Name: "Tyre 215/75 R17.5"},
			{Name: "Câmara de ar"},
			{Name: "Inner tube"},
		},
	},
	{
		Category: "Transmissão / Transmission",
		Items: []CatalogItem{
			{Name: "Kit de embraiagem"},
			{Name: "Clutch kit"},
			{Name: "Caixa de velocidades"},
			{Name: "Gearbox"},
			{Name: "Cruzeta do cardan"},
			{Name: "Universal joint"},
			{Name: "Óleo de caixa"},
			{Name: "Gearbox oil"},
		},
	},
}

// CandidateNames flattens the static catalog and appends the dynamic
// custom-parts names, deduplicating case- and accent-insensitively. The
// first occurrence of a name wins, so the static spelling is preferred over
// a custom duplicate.
func CandidateNames(customParts []string) []string {
	seen := make(map[string]struct{})
	var names []string

	add := func(name string) {
		key := normalizeText(name)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, cat := range StaticPartsCatalog {
		for _, item := range cat.Items {
			add(item.Name)
		}
	}
	for _, name := range customParts {
		add(name)
	}
	return names
}
