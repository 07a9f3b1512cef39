package domain

// DefaultCategories is the arXiv category list the service monitors. It is
// the default for the pipeline configuration, not a hard-wired constant:
// every component receives its category list explicitly.
var DefaultCategories = []string{
	"cs.AI", "cs.LG", "cs.CV", "cs.CL", "cs.RO", "stat.ML",
}

// DefaultSafetyTerms is the ordered safety vocabulary used to classify
// records. Order matters: matched keywords are reported in this order, and
// multi-word phrases are matched as substrings alongside their components.
var DefaultSafetyTerms = []string{
	"alignment", "misalignment", "value alignment", "AI alignment", "aligned AI",
	"interpretability", "explainability", "transparency",
	"existential risk", "x-risk", "catastrophic risk",
	"safety", "AI safety", "safe AI", "robust AI",
	"control problem", "AI control", "corrigibility",
	"specification gaming", "reward hacking", "value learning",
	"outer alignment", "inner alignment",
	"adversarial", "adversarial attack", "adversarial example",
	"ethics", "ethical AI", "responsible AI",
	"goal misgeneralization", "distributional shift",
	"AI governance", "AI policy",
	"superintelligence", "AGI safety",
}
