package mock

// PlainRoute is the presentation form of a route.
type PlainRoute struct {
	ID       string    `json:"id"`
	Path     RoutePath `json:"path"`
	Method   Methods   `json:"method"`
	Delay    Delay     `json:"delay"`
	Variants []string  `json:"variants"`
}

// PlainVariant is the presentation form of a route variant.
type PlainVariant struct {
	ID       string `json:"id"`
	Route    string `json:"route"`
	Type     string `json:"type"`
	Disabled bool   `json:"disabled"`
	Preview  any    `json:"preview"`
	Delay    Delay  `json:"delay"`
}

// PlainCollection is the presentation form of a collection.
type PlainCollection struct {
	ID            string   `json:"id"`
	From          *string  `json:"from"`
	DefinedRoutes []string `json:"definedRoutes"`
	Routes        []string `json:"routes"`
}
