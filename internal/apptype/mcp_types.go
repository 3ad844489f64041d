package apptype

// ProjectArgs provides a standard way to pass project context to tools.
type ProjectArgs struct {
	ProjectName string `json:"projectName,omitempty" jsonschema:"The name of the project to operate on. If not provided, the default project is used."`
}

// ImportPersonsArgs represents the arguments for the import_persons tool
type ImportPersonsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	Persons     []Person    `json:"persons" jsonschema:"Persons to insert or replace in the catalog."`
}

// GetPersonsArgs represents the arguments for the get_persons tool
type GetPersonsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	Names       []string    `json:"names" jsonschema:"Display names to look up."`
}

// SearchPersonsArgs represents the arguments for the search_persons tool
type SearchPersonsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	Query       string      `json:"query" jsonschema:"Substring matched against name, region and domains."`
	Limit       int         `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default 10)."`
	Offset      int         `json:"offset,omitempty" jsonschema:"Number of results to skip (for pagination)."`
}

// DeletePersonsArgs represents the arguments for the delete_persons tool
type DeletePersonsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	IDs         []string    `json:"ids" jsonschema:"External ids of the persons to delete."`
}

// PersonsResult is the structured output of the person lookup tools.
type PersonsResult struct {
	Persons []Person `json:"persons"`
}

// CheckConnectionArgs represents the arguments for the check_connection tool
type CheckConnectionArgs struct {
	ProjectArgs     ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	A               string      `json:"a" jsonschema:"Name of the first person."`
	B               string      `json:"b" jsonschema:"Name of the second person."`
	MinOverlapYears *int        `json:"minOverlapYears,omitempty" jsonschema:"Minimum lifespan overlap in years (default 20)."`
}

// ConnectionResult explains the connectivity decision for a pair.
type ConnectionResult struct {
	A            string `json:"a"`
	B            string `json:"b"`
	Connectable  bool   `json:"connectable"`
	OverlapYears int    `json:"overlapYears"`
	BirthGap     int    `json:"birthGap"`
	Rule         string `json:"rule"`
}

// BuildChainArgs represents the arguments for the build_chain tool
type BuildChainArgs struct {
	ProjectArgs     ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	MinOverlapYears *int        `json:"minOverlapYears,omitempty" jsonschema:"Minimum lifespan overlap in years for a strict connection (default 20)."`
	MinFame         *int        `json:"minFame,omitempty" jsonschema:"Minimum fame score for intermediate candidates (default 100)."`
	Start           string      `json:"start" jsonschema:"Name of the person to start from."`
}

// FindPathArgs represents the arguments for the find_path tool
type FindPathArgs struct {
	ProjectArgs     ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	MinOverlapYears *int        `json:"minOverlapYears,omitempty" jsonschema:"Minimum lifespan overlap in years for a strict connection (default 20)."`
	MinFame         *int        `json:"minFame,omitempty" jsonschema:"Minimum fame score for intermediate candidates (default 100)."`
	Start           string      `json:"start" jsonschema:"Name of the first person."`
	End             string      `json:"end" jsonschema:"Name of the last person."`
}

// StitchChainArgs represents the arguments for the stitch_chain tool
type StitchChainArgs struct {
	ProjectArgs     ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	MinOverlapYears *int        `json:"minOverlapYears,omitempty" jsonschema:"Minimum lifespan overlap in years for a strict connection (default 20)."`
	MinFame         *int        `json:"minFame,omitempty" jsonschema:"Minimum fame score for intermediate candidates (default 100)."`
	Start           string      `json:"start" jsonschema:"Name of the first person."`
	Waypoints       []string    `json:"waypoints,omitempty" jsonschema:"Names the chain must pass through, in order."`
	End             string      `json:"end,omitempty" jsonschema:"Optional name of the last person. When empty the chain runs to the present."`
}

// ChainResult is the structured output of the chain tools.
type ChainResult struct {
	Persons []Person `json:"persons"`
	Skipped []string `json:"skipped,omitempty"`
	Found   bool     `json:"found"`
}

// CreateRelationsArgs represents the arguments for the create_relations tool
type CreateRelationsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	Relations   []Relation  `json:"relations" jsonschema:"Known relations between persons, by external id."`
}

// ChainRelationsArgs represents the arguments for the chain_relations tool
type ChainRelationsArgs struct {
	ProjectArgs ProjectArgs `json:"projectArgs,omitempty" jsonschema:"Project context for the operation."`
	IDs         []string    `json:"ids" jsonschema:"Person ids, typically the ids of a computed chain."`
}

// RelationsResult is the structured output of chain_relations.
type RelationsResult struct {
	Relations []Relation `json:"relations"`
}

// Health
type HealthArgs struct{}

type HealthResult struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Revision        string `json:"revision"`
	BuildDate       string `json:"buildDate"`
	MultiProject    bool   `json:"multiProject"`
	ReferenceYear   int    `json:"referenceYear"`
	MinOverlapYears int    `json:"minOverlapYears"`
	MinFame         int    `json:"minFame"`
	CachedChains    int    `json:"cachedChains"`
}
