package plan

// ObjectiveKind tags the classification an objective came from. Feature
// kinds yield one implementation task each; standing kinds shape scoring
// and test generation but produce no task of their own.
type ObjectiveKind string

const (
	KindGeneric       ObjectiveKind = "generic"
	KindContent       ObjectiveKind = "content"
	KindIdentity      ObjectiveKind = "identity"
	KindCommerce      ObjectiveKind = "commerce"
	KindAPI           ObjectiveKind = "api"
	KindSearch        ObjectiveKind = "search"
	KindRealtime      ObjectiveKind = "realtime"
	KindDashboard     ObjectiveKind = "dashboard"
	KindAccessibility ObjectiveKind = "accessibility"
	KindTesting       ObjectiveKind = "testing"
)

// objectiveRule maps prompt keywords to a feature objective. Rules are
// evaluated in table order against the lowercased prompt, so objective
// ordering is deterministic for a given input.
type objectiveRule struct {
	kind      ObjectiveKind
	keywords  []string
	objective string
}

// objectiveRules is the fixed phrase/keyword classification table.
var objectiveRules = []objectiveRule{
	{
		kind:      KindContent,
		keywords:  []string{"blog", "post", "article", "cms", "content", "news", "publish"},
		objective: "Implement content authoring: create, edit and publish entries",
	},
	{
		kind:      KindIdentity,
		keywords:  []string{"auth", "login", "signup", "sign up", "register", "user account", "identity"},
		objective: "Implement identity: registration, authentication and sessions",
	},
	{
		kind:      KindCommerce,
		keywords:  []string{"shop", "store", "cart", "checkout", "payment", "order", "ecommerce", "e-commerce"},
		objective: "Implement commerce: product catalog, cart and checkout flow",
	},
	{
		kind:      KindAPI,
		keywords:  []string{"api", "rest", "endpoint", "graphql", "webhook"},
		objective: "Expose a documented API surface for the core entities",
	},
	{
		kind:      KindSearch,
		keywords:  []string{"search", "filter", "find", "query"},
		objective: "Implement search and filtering across primary content",
	},
	{
		kind:      KindRealtime,
		keywords:  []string{"chat", "realtime", "real-time", "websocket", "live"},
		objective: "Implement realtime updates over a live connection",
	},
	{
		kind:      KindDashboard,
		keywords:  []string{"dashboard", "admin", "analytics", "metrics", "report"},
		objective: "Implement an administrative dashboard with key metrics",
	},
}

// Standing objectives are always present regardless of the prompt.
const (
	objectiveAccessibility = "Meet accessibility standards across all generated pages"
	objectiveTestCoverage  = "Provide automated test coverage for generated code"
)

// baselineStack is the fixed technology baseline every plan starts from.
var baselineStack = []string{"typescript", "react", "vite", "tailwindcss"}

// baselineDirectories is the fixed directory → file-stem baseline.
func baselineDirectories() map[string][]string {
	return map[string][]string{
		"src":            {"main", "app"},
		"src/components": {"layout"},
		"src/styles":     {"globals"},
		"public":         {"index"},
	}
}

// architectureAddition describes what a detected feature objective
// contributes to the architecture sketch.
type architectureAddition struct {
	stack       []string
	directories map[string][]string
	dataModels  []DataModel
}

// architectureAdditions gates conditional stack and layout additions on
// detected objective kinds. Only domain-signalling kinds emit data models.
var architectureAdditions = map[ObjectiveKind]architectureAddition{
	KindContent: {
		directories: map[string][]string{
			"src/content": {"editor", "list", "detail"},
		},
		dataModels: []DataModel{
			{
				Name: "Post",
				Fields: []Field{
					{Name: "id", Type: "string"},
					{Name: "title", Type: "string"},
					{Name: "slug", Type: "string"},
					{Name: "body", Type: "string"},
					{Name: "authorId", Type: "string"},
					{Name: "publishedAt", Type: "datetime"},
				},
			},
		},
	},
	KindIdentity: {
		directories: map[string][]string{
			"src/auth": {"login", "register", "session"},
		},
		dataModels: []DataModel{
			{
				Name: "User",
				Fields: []Field{
					{Name: "id", Type: "string"},
					{Name: "email", Type: "string"},
					{Name: "passwordHash", Type: "string"},
					{Name: "displayName", Type: "string"},
					{Name: "createdAt", Type: "datetime"},
				},
			},
		},
	},
	KindCommerce: {
		directories: map[string][]string{
			"src/shop": {"catalog", "cart", "checkout"},
		},
		dataModels: []DataModel{
			{
				Name: "Product",
				Fields: []Field{
					{Name: "id", Type: "string"},
					{Name: "name", Type: "string"},
					{Name: "priceCents", Type: "int"},
					{Name: "stock", Type: "int"},
				},
			},
			{
				Name: "Order",
				Fields: []Field{
					{Name: "id", Type: "string"},
					{Name: "userId", Type: "string"},
					{Name: "totalCents", Type: "int"},
					{Name: "placedAt", Type: "datetime"},
				},
			},
		},
	},
	KindAPI: {
		stack: []string{"express"},
		directories: map[string][]string{
			"src/api": {"routes", "handlers"},
		},
	},
	KindSearch: {
		directories: map[string][]string{
			"src/search": {"index", "query"},
		},
	},
	KindRealtime: {
		stack: []string{"socket.io"},
		directories: map[string][]string{
			"src/realtime": {"channel", "client"},
		},
	},
	KindDashboard: {
		directories: map[string][]string{
			"src/dashboard": {"overview", "widgets"},
		},
	},
}
