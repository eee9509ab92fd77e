package analyzer

func makeSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// keywordStopwords filters query tokens that carry no retrieval value:
// Spanish function words plus generic query fillers.
var keywordStopwords = makeSet([]string{
	"el", "la", "los", "las", "un", "una", "de", "del", "en", "con",
	"por", "para", "que", "es", "se", "como", "su", "al", "lo", "mas",
	"pero", "sus", "le", "ya", "o", "este", "si", "porque", "esta",
	"cuando", "muy", "sin", "sobre", "ser", "tiene", "tambien", "fue",
	"hay", "donde", "puede", "todos", "asi", "nos", "ni", "parte",
	"despues", "uno", "bien", "cada", "cual", "cuales",
	"segun", "documento", "archivo", "pdf", "dice", "trata",
	"resumime", "resumeme", "explicame", "cuentame", "describeme",
	"informacion",
})

// structuralStopwords are purely functional Spanish words that never carry
// topical meaning. Domain agnostic by construction.
var structuralStopwords = makeSet([]string{
	// Articles and determiners
	"el", "la", "los", "las", "un", "una", "unos", "unas",
	// Prepositions
	"de", "del", "en", "con", "por", "para", "sin", "sobre", "bajo",
	"ante", "entre",
	// Pronouns and demonstratives
	"que", "cual", "quien", "este", "esta", "estos", "estas", "ese",
	"esa", "mi", "tu", "su", "mis", "tus", "sus", "me", "te", "se",
	"nos", "les",
	// Auxiliary and common verbs
	"es", "son", "ser", "estar", "hay", "tiene", "tienen", "puede",
	"pueden", "hacer", "hecho", "sido", "siendo", "era", "fue", "seria",
	// Adverbs and connectors
	"mas", "muy", "poco", "mucho", "algo", "nada", "todo", "todos",
	"cada", "como", "cuando", "donde", "porque", "aunque", "sino",
	"pero", "tambien", "asi", "bien", "mal", "solo", "ya", "aun",
	"aqui", "alli", "ahora", "siempre",
	// Generic query words
	"hablame", "dime", "explicame", "cuentame", "describe", "describeme",
	"informacion", "documento", "documentos", "archivo", "archivos",
	"pregunta", "respuesta", "necesito", "quisiera", "podrias", "quiero",
	"dame", "muestrame", "busca", "encuentra", "ayuda", "favor",
	// Written numbers
	"uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho",
	"nueve", "diez", "primero", "segundo", "tercero", "cuarto", "quinto",
})
