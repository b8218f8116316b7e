package extract

// entityKeywords maps an entity type to the English and Spanish words that
// mark a generic mention of it.
var entityKeywords = []struct {
	Type     string
	Keywords []string
}{
	{"task", []string{"task", "todo", "to-do", "tarea", "pendiente"}},
	{"client", []string{"client", "customer", "cliente"}},
	{"quote", []string{"quote", "estimate", "quotation", "cotización", "presupuesto"}},
	{"invoice", []string{"invoice", "bill", "factura"}},
	{"project", []string{"project", "proyecto"}},
	{"event", []string{"meeting", "calendar", "appointment", "reunión", "cita", "calendario"}},
}

// topicTable is ordered; ties on hit count resolve to the earlier entry.
var topicTable = []struct {
	Topic    string
	Keywords []string
}{
	{"project_planning", []string{"project", "plan", "milestone", "deadline", "roadmap", "scope", "proyecto", "planificar", "entrega"}},
	{"financial", []string{"invoice", "payment", "price", "rate", "budget", "quote", "money", "factura", "pago", "precio", "presupuesto"}},
	{"client_relations", []string{"client", "customer", "feedback", "contract", "cliente", "contrato", "relación"}},
	{"scheduling", []string{"schedule", "calendar", "meeting", "appointment", "tomorrow", "week", "agenda", "reunión", "cita", "mañana", "semana"}},
	{"technical", []string{"code", "bug", "deploy", "server", "database", "error", "código", "servidor"}},
	{"productivity", []string{"task", "todo", "focus", "priority", "prioritize", "organize", "tarea", "prioridad", "organizar"}},
	{"communication", []string{"email", "call", "message", "reply", "send", "correo", "llamada", "mensaje", "responder"}},
	{"marketing", []string{"marketing", "portfolio", "social", "campaign", "brand", "lead", "campaña", "marca"}},
}

var positiveWords = []string{
	"great", "excellent", "thanks", "thank you", "perfect", "awesome", "good", "happy", "love", "nice",
	"gracias", "excelente", "perfecto", "genial", "bueno", "feliz",
}

var negativeWords = []string{
	"bad", "problem", "issue", "wrong", "terrible", "frustrated", "annoying", "fail", "hate", "angry",
	"malo", "problema", "fallo", "molesto", "enojado",
}

var neutralWords = []string{
	"okay", "normal", "regular", "standard", "usual", "maybe",
	"vale", "quizás", "normalmente", "habitual",
}

var urgencyWords = []string{
	"urgent", "deadline", "error", "help", "asap", "critical", "important", "immediately",
	"urgente", "fecha límite", "ayuda", "crítico", "importante",
}

// stopwords are filler tokens ignored when tracking patterns and keywords.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"what": true, "when": true, "where": true, "which": true, "have": true, "from": true,
	"about": true, "your": true, "you": true, "are": true, "was": true, "were": true,
	"can": true, "could": true, "would": true, "should": true, "will": true, "please": true,
	"there": true, "their": true, "they": true, "them": true, "then": true, "than": true,
	"into": true, "just": true, "some": true, "been": true, "does": true, "how": true,
	"para": true, "que": true, "con": true, "los": true, "las": true, "una": true,
	"del": true, "por": true, "esta": true, "este": true, "pero": true, "sobre": true,
	"como": true, "cuando": true, "donde": true, "tengo": true, "tiene": true,
}
