// Package route classifies an incoming question before any network or
// model call: which language it is in, what kind of answer it expects
// and how aggressively the crawler should explore for it.
package route

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Language is the detected question language.
type Language string

const (
	French  Language = "fr"
	English Language = "en"
	Arabic  Language = "ar"
)

// Name returns the language's self-designation for prompts and UI.
func (l Language) Name() string {
	switch l {
	case English:
		return "English"
	case Arabic:
		return "العربية"
	default:
		return "Français"
	}
}

// QuestionType selects which answering pipeline handles the question.
type QuestionType string

const (
	// TypeDocument asks about locally indexed documents.
	TypeDocument QuestionType = "document"
	// TypeTimetable asks for schedules, rooms or weekly plans.
	TypeTimetable QuestionType = "timetable"
	// TypeInternship asks for internships, programmes and procedures.
	// It is also the default for any informational request.
	TypeInternship QuestionType = "internship"
	// TypeConversation is small talk with no retrieval need.
	TypeConversation QuestionType = "conversation"
)

var arabicRe = regexp.MustCompile(`[\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}]`)

var englishMarkers = []string{
	"i", "you", "the", "is", "are", "hello", "hi", "how", "what", "where",
	"when", "schedule", "internship", "student", "help", "need", "want",
	"please", "thank", "thanks", "course", "week", "teacher",
}

var frenchMarkers = []string{
	"je", "tu", "le", "la", "est", "sont", "bonjour", "salut", "comment",
	"quoi", "où", "quand", "emploi", "stage", "étudiant", "aide", "besoin",
	"merci", "cours", "semaine", "professeur",
}

// DetectLanguage guesses the question's language. Any Arabic script
// wins outright; otherwise English and French marker words are counted
// and French is the tie-breaker, matching the user base.
func DetectLanguage(text string) Language {
	if arabicRe.MatchString(text) {
		return Arabic
	}
	padded := " " + strings.ToLower(text) + " "
	en, fr := 0, 0
	for _, w := range englishMarkers {
		if strings.Contains(padded, " "+w+" ") {
			en++
		}
	}
	for _, w := range frenchMarkers {
		if strings.Contains(padded, " "+w+" ") {
			fr++
		}
	}
	if en > fr {
		return English
	}
	return French
}

var documentTerms = []string{
	"fichier", "document uploade", "document ajoute",
	"le document", "ce document", "mon document", "mes documents",
	"le fichier", "ce fichier", "mon fichier", "mes fichiers",
	"uploaded", "the file", "the document", "my document",
	"telecharge", "charge",
	"resume", "resumer", "summarize", "summary",
	"reformul",
	"parle de quoi", "de quoi parle", "about what",
	"contenu du", "content of", "dans le fichier", "in the file",
	"cherche dans", "search in", "trouve dans", "find in",
	"selon le document", "according to the document",
	"le pdf", "the pdf", "le word", "le excel",
	"liste des documents", "list documents", "documents indexes",
	"quels documents", "which documents",
	".pdf", ".docx", ".xlsx", ".txt",
}

var continuationTerms = []string{
	"resume", "detaille", "details", "explique", "explain",
	"continue", "suite", "encore", "autre", "other",
	"chapitre", "chapter", "section", "partie",
	"exercice", "exercise", "exemple", "example",
	"quoi d'autre", "what else", "et apres", "and then",
}

var timetableTerms = []string{
	"emploi du temps", "emplois du temps", "edt",
	"horaire", "schedule", "timetable",
	"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
	"monday", "tuesday", "wednesday", "thursday", "friday",
	"salle", "room", "amphi",
	"disponib", "available",
	"gcr1", "gcr2", "gcr3", "groupe v",
	"جدول", "توقيت", "حصة",
}

var weekNumberRe = regexp.MustCompile(`(semaine|week)\s*\d+`)

var internshipTerms = []string{
	"mitacs", "mitcas", "globalink",
	"stage", "pfe", "initiation", "perfectionnement",
	"internship", "تدريب",
	"inscription", "inscrire", "procedure",
	"document", "formulaire", "convention",
	"c'est quoi", "c quoi", "what is", "qu'est-ce que", "ما هو",
	"definition", "expliquer", "explain",
	"enig", "universite", "university",
	"liste", "programme", "programs", "formations",
	"ou se trouve", "where is", "bureau", "contact",
}

var demandTerms = []string{
	"je veux", "je voudrais", "je cherche", "je souhaite",
	"i want", "i need", "i would like",
	"comment", "how to", "how do",
	"quels sont", "quelles sont", "what are",
	"peux-tu", "can you", "could you",
	"أريد", "كيف",
}

var greetingTerms = []string{
	"bonjour", "bonsoir", "salut", "coucou", "hello", "hi", "hey",
	"مرحبا", "السلام عليكم", "أهلا", "yo", "wesh", "cava",
	"au revoir", "bye", "goodbye", "مع السلامة", "a bientot", "a plus",
	"ciao", "bonne nuit", "good night",
	"merci", "thanks", "thank you", "شكرا",
}

var smallTalkTerms = []string{
	"ca va", "comment vas", "how are", "كيف حالك",
	"stress", "fatigue", "epuise", "tired",
	"triste", "sad", "deprime", "depressed", "anxieux", "anxious",
	"demotive", "j'en peux plus", "je craque", "je vais bien",
	"je me sens", "i feel", "i am fine", "pas bien",
	"blague", "joke", "rire", "laugh", "funny", "drole", "humour",
	"fais moi rire", "lol", "mdr", "haha", "ptdr",
	"motivation", "motive", "envie de rien", "pas envie",
	"j'abandonne", "je lache", "courage", "encourage",
	"conseil", "advice", "help me", "aide moi", "reviser",
	"procrastin",
	"qui es-tu", "qui es tu", "who are you", "من أنت",
	"tu es qui", "what are you", "ton nom", "your name",
	"tu fais quoi", "what do you do", "tes capacites",
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips combining diacritics so "Procédure"
// matches the keyword "procedure". Arabic script carries no combining
// marks worth stripping here and passes through unchanged.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func containsAny(folded string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// DetectQuestionType classifies the question. indexedNames are the
// filenames currently held by the local document index; when present,
// mentioning one of them (or a follow-up word like "résumé") routes to
// the document pipeline. Classification order matters: document
// references beat timetable terms beat internship terms, and small
// talk is only recognized once every informational pattern has missed.
func DetectQuestionType(question string, indexedNames []string) QuestionType {
	q := Fold(question)

	if containsAny(q, documentTerms) {
		return TypeDocument
	}
	if len(indexedNames) > 0 {
		for _, name := range indexedNames {
			base := Fold(name)
			if i := strings.LastIndex(base, "."); i > 0 {
				base = base[:i]
			}
			if base != "" && strings.Contains(q, base) {
				return TypeDocument
			}
		}
		if containsAny(q, continuationTerms) {
			return TypeDocument
		}
	}

	if containsAny(q, timetableTerms) || weekNumberRe.MatchString(q) {
		return TypeTimetable
	}
	if containsAny(q, internshipTerms) {
		return TypeInternship
	}
	if containsAny(q, demandTerms) {
		return TypeInternship
	}

	if len(strings.Fields(question)) <= 4 && containsAny(q, greetingTerms) {
		return TypeConversation
	}
	if containsAny(q, smallTalkTerms) {
		return TypeConversation
	}

	return TypeInternship
}

// Plan is the crawl strategy derived from the question's shape.
type Plan struct {
	Label      string
	MaxPages   int
	DeepCrawl  bool
	ExtractPDF bool
}

var listQuestionTerms = []string{
	"quels sont", "quelles sont", "liste", "tous les", "programme",
	"what are", "list all", "programs",
}

var procedureTerms = []string{"comment", "procedure", "etapes", "how to", "steps", "process"}

var pdfRequestTerms = []string{"pdf", "telecharger", "download", "fichier"}

// CrawlPlan maps the question's surface form to a crawl budget.
// Timetables live in PDFs behind one known page, so they get PDF
// extraction but no deep crawl; list questions need breadth; everything
// else starts with the cheapest single-page fetch.
func CrawlPlan(question string) Plan {
	q := Fold(question)

	if containsAny(q, []string{"emploi", "horaire", "semaine", "edt", "schedule", "timetable"}) {
		return Plan{Label: "timetable", MaxPages: 2, DeepCrawl: false, ExtractPDF: true}
	}
	if containsAny(q, listQuestionTerms) {
		return Plan{Label: "list", MaxPages: 5, DeepCrawl: true}
	}
	if containsAny(q, procedureTerms) {
		return Plan{Label: "procedure", MaxPages: 3}
	}
	if containsAny(q, pdfRequestTerms) {
		return Plan{Label: "pdf-link", MaxPages: 2}
	}
	return Plan{Label: "simple", MaxPages: 1}
}

// Keywords extracts the crawl priority keywords from free text: folded
// words longer than two characters, in order of appearance.
func Keywords(text string) []string {
	var out []string
	for _, w := range strings.Fields(Fold(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len([]rune(w)) > 2 {
			out = append(out, w)
		}
	}
	return out
}
