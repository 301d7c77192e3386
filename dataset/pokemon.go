package dataset

// PokemonTarget is the label column of the Pokedex dataset: 1 for
// legendary Pokemon, 0 otherwise.
const PokemonTarget = "is_legendary"

// PokemonIdentifierColumns are free-text columns that identify a row but
// carry no predictive signal; the workflow drops them before training.
var PokemonIdentifierColumns = []string{
	"name",
	"japanese_name",
	"pokedex_number",
	"classfication", // sic, misspelt in the source dataset
	"abilities",
}

// PokemonOptions returns loader options for the Pokedex CSV export:
// standard missing tokens, and the target forced to boolean so that a
// 0/1-encoded export still parses as a label rather than a count.
func PokemonOptions() Options {
	opts := DefaultOptions()
	opts.BooleanColumns = []string{PokemonTarget}
	return opts
}
