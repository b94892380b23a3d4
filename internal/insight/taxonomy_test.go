package insight

import "testing"

func TestClassifyMessageEmitsOnlyPositiveScores(t *testing.T) {
	t.Parallel()

	scores := ClassifyMessage("The weather is lovely today")
	if len(scores) != 0 {
		t.Fatalf("neutral text got scores %v want none", scores)
	}
	for label, score := range scores {
		if score <= 0 {
			t.Fatalf("label %q has non-positive score %v", label, score)
		}
	}
}

func TestClassifyMessageTechnicalVocabulary(t *testing.T) {
	t.Parallel()

	scores := ClassifyMessage("The model training needs more data")
	// "model", "training", and the "ai" substring inside "training".
	want := 3.0 / 13.0
	if got := scores["tech_ai_ml"]; got != want {
		t.Fatalf("tech_ai_ml got %v want %v", got, want)
	}
}

func TestClassifyMessagePersonalProfessionalTie(t *testing.T) {
	t.Parallel()

	scores := ClassifyMessage("family project")
	if _, ok := scores[labelPersonal]; ok {
		t.Fatalf("tie must favor professional, got personal in %v", scores)
	}
	if got := scores[labelProfessional]; got != 1.0/6.0 {
		t.Fatalf("professional got %v want %v", got, 1.0/6.0)
	}
}

func TestClassifyMessagePersonalWins(t *testing.T) {
	t.Parallel()

	scores := ClassifyMessage("family weekend")
	if got := scores[labelPersonal]; got != 2.0/6.0 {
		t.Fatalf("personal got %v want %v", got, 2.0/6.0)
	}
	if _, ok := scores[labelProfessional]; ok {
		t.Fatalf("professional must not appear, got %v", scores)
	}
}

func TestCategoryByLabelMapsCommercialVocabularyToBusiness(t *testing.T) {
	t.Parallel()

	if got := categoryByLabel["tech_business"]; got != categoryBusiness {
		t.Fatalf("tech_business category got %q want %q", got, categoryBusiness)
	}
	if got := categoryByLabel["tech_ai_ml"]; got != categoryTechnical {
		t.Fatalf("tech_ai_ml category got %q want %q", got, categoryTechnical)
	}
	if got := categoryByLabel[labelPersonal]; got != categoryPersonal {
		t.Fatalf("personal category got %q want %q", got, categoryPersonal)
	}
}

func TestCountKeywordHits(t *testing.T) {
	t.Parallel()

	hits := countKeywordHits("we deploy to the cloud with docker", []string{"cloud", "docker", "kubernetes"})
	if hits != 2 {
		t.Fatalf("hits got %d want 2", hits)
	}
}

func TestBehavioralTags(t *testing.T) {
	t.Parallel()

	tags := behavioralTags("i suggest we consider the risk")
	if len(tags) != 2 || tags[0] != "advisory" || tags[1] != "cautious" {
		t.Fatalf("tags got %v want [advisory cautious]", tags)
	}
	if got := behavioralTags("plain talk"); len(got) != 0 {
		t.Fatalf("neutral text tags got %v want none", got)
	}
}
