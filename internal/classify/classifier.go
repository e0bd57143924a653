package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/logger"
)

// Classifier assigns a high-impact category to raw text by substring
// matching. Exclusion phrases take precedence over category keywords.
type Classifier struct {
	keywords   map[model.Category][]string
	exclusions []string
}

func New(keywords map[string][]string, exclusions []string) *Classifier {
	byCategory := make(map[model.Category][]string, len(keywords))
	for name, words := range keywords {
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			lowered = append(lowered, strings.ToLower(w))
		}
		byCategory[model.Category(name)] = lowered
	}

	loweredExclusions := make([]string, 0, len(exclusions))
	for _, e := range exclusions {
		loweredExclusions = append(loweredExclusions, strings.ToLower(e))
	}

	return &Classifier{
		keywords:   byCategory,
		exclusions: loweredExclusions,
	}
}

// Classify scans the text against the exclusion list first, then against
// the category keyword lists in the fixed model.CategoryOrder. The first
// category with a keyword hit wins; overlapping keywords across categories
// resolve by that order.
func (c *Classifier) Classify(text string) model.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return model.ClassificationResult{Category: model.CategoryNone}
	}

	lowered := strings.ToLower(text)

	for _, exclusion := range c.exclusions {
		if strings.Contains(lowered, exclusion) {
			logger.Debug("Text excluded from classification",
				zap.String("exclusion", exclusion),
			)
			return model.ClassificationResult{Category: model.CategoryNone}
		}
	}

	for _, category := range model.CategoryOrder {
		for _, keyword := range c.keywords[category] {
			if strings.Contains(lowered, keyword) {
				return model.ClassificationResult{
					IsHighImpact: true,
					Category:     category,
				}
			}
		}
	}

	return model.ClassificationResult{Category: model.CategoryNone}
}
