package assistant

import "strings"

// Language selects which reply table is used.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
)

// ParseLanguage maps a language tag onto a supported language. Any French
// tag ("fr", "FR", "fr-CA") selects French; everything else is English.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "fr" || strings.HasPrefix(tag, "fr-") || strings.HasPrefix(tag, "fr_") {
		return French
	}
	return English
}

// Category names the topic a message was matched to.
type Category string

const (
	CategoryPrice          Category = "price"
	CategoryDuration       Category = "duration"
	CategoryDocuments      Category = "documents"
	CategoryTaxID          Category = "tax-id"
	CategoryBanking        Category = "banking"
	CategoryJurisdiction   Category = "jurisdiction"
	CategoryGettingStarted Category = "getting-started"
	CategoryGreeting       Category = "greeting"
	CategoryFallback       Category = "fallback"
)

type topic struct {
	category Category
	keywords []string
	replies  map[Language]string
}

// Checked in order; the first topic with a keyword contained in the
// lower-cased message wins. Keywords are shared across languages.
var topics = []topic{
	{
		category: CategoryPrice,
		keywords: []string{"price", "cost", "prix", "coût"},
		replies: map[Language]string{
			English: "Our LLC formation service costs $129 (one-time fee). This includes everything: LLC registration, EIN number, 1-year registered agent, bank account assistance, and more!",
			French:  "Notre service de formation de LLC coûte 129$ (frais uniques). Cela inclut tout: enregistrement LLC, numéro EIN, agent enregistré pendant 1 an, assistance pour le compte bancaire, et bien plus encore!",
		},
	},
	{
		category: CategoryDuration,
		keywords: []string{"time", "how long", "temps", "combien de temps"},
		replies: map[Language]string{
			English: "We can form your LLC in just 48 hours! Our streamlined process ensures your business is up and running quickly.",
			French:  "Nous pouvons former votre LLC en seulement 48 heures! Notre processus simplifié garantit que votre entreprise est opérationnelle rapidement.",
		},
	},
	{
		category: CategoryDocuments,
		keywords: []string{"document", "paper", "need"},
		replies: map[Language]string{
			English: "You'll need: 1) Owner information (name, address, email), 2) Desired company name, 3) Business type, 4) Number of members. We handle all the paperwork and filings!",
			French:  "Vous aurez besoin de: 1) Informations sur le propriétaire (nom, adresse, e-mail), 2) Nom de l'entreprise souhaité, 3) Type d'entreprise, 4) Nombre de membres. Nous nous occupons de tous les documents et dépôts!",
		},
	},
	{
		category: CategoryTaxID,
		keywords: []string{"ein", "tax"},
		replies: map[Language]string{
			English: "Yes! We obtain your EIN (Employer Identification Number) as part of our service. This is your federal tax ID number required for business operations and opening bank accounts.",
			French:  "Oui! Nous obtenons votre numéro EIN (Employer Identification Number) dans le cadre de notre service. C'est votre numéro d'identification fiscale fédéral nécessaire pour les opérations commerciales et l'ouverture de comptes bancaires.",
		},
	},
	{
		category: CategoryBanking,
		keywords: []string{"bank", "account", "banque", "compte"},
		replies: map[Language]string{
			English: "We provide full bank account setup assistance. We help with documentation and guide you through the process of opening a US business bank account.",
			French:  "Nous fournissons une assistance complète pour l'ouverture de compte bancaire. Nous vous aidons avec la documentation et vous guidons tout au long du processus d'ouverture d'un compte bancaire professionnel américain.",
		},
	},
	{
		category: CategoryJurisdiction,
		keywords: []string{"state", "where", "état", "où"},
		replies: map[Language]string{
			English: "We can form your LLC in any US state. Popular choices include Delaware, Wyoming, and Nevada for their business-friendly laws. We'll help you choose the best state for your needs!",
			French:  "Nous pouvons former votre LLC dans n'importe quel État américain. Les choix populaires incluent le Delaware, le Wyoming et le Nevada pour leurs lois favorables aux entreprises. Nous vous aiderons à choisir le meilleur État pour vos besoins!",
		},
	},
	{
		category: CategoryGettingStarted,
		keywords: []string{"start", "begin", "commencer", "démarrer"},
		replies: map[Language]string{
			English: "It's easy to get started! Just click the \"Get Started Now\" button to fill out our application form. It takes just 10 minutes, and we'll contact you within 24 hours!",
			French:  "C'est facile de commencer! Cliquez simplement sur le bouton \"Commencer maintenant\" pour remplir notre formulaire de demande. Cela ne prend que 10 minutes et nous vous contacterons dans les 24 heures!",
		},
	},
	{
		category: CategoryGreeting,
		keywords: []string{"hello", "hi", "bonjour", "salut"},
		replies: map[Language]string{
			English: "Hello! How can I help you with your US LLC formation today?",
			French:  "Bonjour! Comment puis-je vous aider avec la formation de votre LLC américaine aujourd'hui?",
		},
	},
}

var fallbackReplies = map[Language]string{
	English: "Thanks for your question! For detailed information, I recommend filling out our application form or contacting our team directly. We're here to help 24/7!",
	French:  "Merci pour votre question! Pour des informations détaillées, je vous recommande de remplir notre formulaire de demande ou de contacter notre équipe directement. Nous sommes là pour vous aider 24/7!",
}

var welcomeReplies = map[Language]string{
	English: "Hello! I'm your AI assistant. How can I help you with your LLC formation today?",
	French:  "Bonjour! Je suis votre assistant IA. Comment puis-je vous aider avec la formation de votre LLC aujourd'hui?",
}

// Match returns the category and reply for message. Matching is plain
// substring containment on the lower-cased message.
func Match(message string, lang Language) (Category, string) {
	lang = normalize(lang)
	lower := strings.ToLower(message)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.category, t.replies[lang]
			}
		}
	}
	return CategoryFallback, fallbackReplies[lang]
}

// Respond returns the canned reply for message in lang.
func Respond(message string, lang Language) string {
	_, reply := Match(message, lang)
	return reply
}

// Welcome is the first bot message of a new chat session.
func Welcome(lang Language) string {
	return welcomeReplies[normalize(lang)]
}

// Categories lists every category in matching order, fallback last.
func Categories() []Category {
	out := make([]Category, 0, len(topics)+1)
	for _, t := range topics {
		out = append(out, t.category)
	}
	return append(out, CategoryFallback)
}

func normalize(lang Language) Language {
	if lang == French {
		return French
	}
	return English
}
