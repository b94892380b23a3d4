package insight

import "strings"

// Topic categories.
const (
	categoryTechnical    = "technical"
	categoryBusiness     = "business"
	categoryPersonal     = "personal"
	categoryProfessional = "professional"
	categoryGeneral      = "general"
)

// keywordGroup is one fixed vocabulary bucket of the taxonomy. The
// label identifies the bucket in score vectors, the name identifies it
// in diarization dominant-topic output.
type keywordGroup struct {
	name     string
	label    string
	category string
	words    []string
}

var technicalGroups = []keywordGroup{
	{
		name:     "ai_ml",
		label:    "tech_ai_ml",
		category: categoryTechnical,
		words: []string{
			"ai", "ml", "machine learning", "artificial intelligence", "model",
			"training", "algorithm", "neural network", "gpt", "claude", "llm",
			"prompt", "inference",
		},
	},
	{
		name:     "development",
		label:    "tech_development",
		category: categoryTechnical,
		words: []string{
			"code", "coding", "programming", "development", "github", "vercel",
			"react", "javascript", "python", "api", "database", "frontend",
			"backend", "microservices",
		},
	},
	{
		name:     "security",
		label:    "tech_security",
		category: categoryTechnical,
		words: []string{
			"security", "compliance", "encryption", "authentication",
			"authorization", "vulnerabilities", "threats", "cybersecurity",
			"siem", "soc",
		},
	},
	{
		// Commercial vocabulary; classified under the business category.
		name:     "business",
		label:    "tech_business",
		category: categoryBusiness,
		words: []string{
			"client", "customer", "revenue", "pricing", "sales", "marketing",
			"business model", "strategy", "competitive", "market",
		},
	},
	{
		name:     "infrastructure",
		label:    "tech_infrastructure",
		category: categoryTechnical,
		words: []string{
			"cloud", "aws", "azure", "kubernetes", "docker", "infrastructure",
			"deployment", "scaling", "architecture",
		},
	},
	{
		name:     "automation",
		label:    "tech_automation",
		category: categoryTechnical,
		words: []string{
			"automation", "workflow", "process", "efficiency", "optimization",
			"integration", "pipeline",
		},
	},
}

var businessGroups = []keywordGroup{
	{
		name:     "strategy",
		label:    "business_strategy",
		category: categoryBusiness,
		words: []string{
			"strategy", "strategic", "vision", "roadmap", "planning",
			"objectives", "goals",
		},
	},
	{
		name:     "operations",
		label:    "business_operations",
		category: categoryBusiness,
		words: []string{
			"operations", "process", "workflow", "efficiency", "optimization",
			"management",
		},
	},
	{
		name:     "finance",
		label:    "business_finance",
		category: categoryBusiness,
		words: []string{
			"cost", "pricing", "revenue", "budget", "investment", "roi",
			"financial",
		},
	},
	{
		name:     "sales",
		label:    "business_sales",
		category: categoryBusiness,
		words: []string{
			"sales", "selling", "prospect", "lead", "conversion", "pipeline",
			"funnel",
		},
	},
	{
		name:     "product",
		label:    "business_product",
		category: categoryBusiness,
		words: []string{
			"product", "feature", "development", "iteration", "feedback",
			"user experience",
		},
	},
}

const (
	labelPersonal     = "personal"
	labelProfessional = "professional"
)

var personalIndicators = []string{"personal", "family", "life", "feeling", "tired", "weekend"}
var professionalIndicators = []string{"project", "client", "work", "business", "meeting", "deadline"}

// labelOrder fixes the emission order of every possible label, so that
// accumulator and tie-break iteration is deterministic.
var labelOrder = buildLabelOrder()

var categoryByLabel = buildCategoryIndex()

func buildLabelOrder() []string {
	order := make([]string, 0, len(technicalGroups)+len(businessGroups)+2)
	for _, g := range technicalGroups {
		order = append(order, g.label)
	}
	for _, g := range businessGroups {
		order = append(order, g.label)
	}
	return append(order, labelPersonal, labelProfessional)
}

func buildCategoryIndex() map[string]string {
	index := make(map[string]string, len(labelOrder))
	for _, g := range technicalGroups {
		index[g.label] = g.category
	}
	for _, g := range businessGroups {
		index[g.label] = g.category
	}
	index[labelPersonal] = categoryPersonal
	index[labelProfessional] = categoryProfessional
	return index
}

// matchesKeyword is the single matching primitive for the whole
// pipeline: case-insensitive substring containment against an already
// lower-cased text. Word-boundary matching can be substituted here
// without touching callers.
func matchesKeyword(loweredText, keyword string) bool {
	return strings.Contains(loweredText, keyword)
}

func countKeywordHits(loweredText string, words []string) int {
	hits := 0
	for _, w := range words {
		if matchesKeyword(loweredText, w) {
			hits++
		}
	}
	return hits
}

// ClassifyMessage scores one message text against the fixed keyword
// taxonomies. Only positive scores are emitted; at most one of the
// personal/professional labels appears, ties favoring professional.
// Pure and deterministic.
func ClassifyMessage(text string) map[string]float64 {
	lowered := strings.ToLower(text)
	scores := make(map[string]float64, 4)

	for _, g := range technicalGroups {
		if hits := countKeywordHits(lowered, g.words); hits > 0 {
			scores[g.label] = float64(hits) / float64(len(g.words))
		}
	}
	for _, g := range businessGroups {
		if hits := countKeywordHits(lowered, g.words); hits > 0 {
			scores[g.label] = float64(hits) / float64(len(g.words))
		}
	}

	personalHits := countKeywordHits(lowered, personalIndicators)
	professionalHits := countKeywordHits(lowered, professionalIndicators)
	if personalHits > professionalHits {
		scores[labelPersonal] = float64(personalHits) / float64(len(personalIndicators))
	} else if professionalHits > 0 {
		scores[labelProfessional] = float64(professionalHits) / float64(len(professionalIndicators))
	}

	return scores
}

func allTechnicalKeywords() []string {
	words := make([]string, 0, 64)
	for _, g := range technicalGroups {
		words = append(words, g.words...)
	}
	return words
}

// Behavioral cue vocabularies shared by topic tags and insight tags.
var behavioralCues = []struct {
	tag   string
	words []string
}{
	{tag: "questioning", words: []string{"question", "how", "what", "why", "when"}},
	{tag: "advisory", words: []string{"suggest", "recommend", "propose"}},
	{tag: "cautious", words: []string{"concern", "worry", "risk"}},
	{tag: "enthusiastic", words: []string{"excited", "great", "awesome", "love"}},
}

// behavioralTags derives cue tags from already lower-cased text.
func behavioralTags(loweredText string) []string {
	tags := make([]string, 0, len(behavioralCues))
	for _, cue := range behavioralCues {
		for _, w := range cue.words {
			if matchesKeyword(loweredText, w) {
				tags = append(tags, cue.tag)
				break
			}
		}
	}
	return tags
}
