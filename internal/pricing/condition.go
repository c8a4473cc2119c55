package pricing

import (
	"strings"

	"hunter-market/internal/models"
)

// Keyword groups for condition inference. Groups are checked in a fixed
// order so that a strong negative signal beats a positive one appearing in
// the same title: "중고 A급" is 중고 first, hence soso rather than good.
var conditionKeywords = []struct {
	condition string
	terms     []string
}{
	{models.ConditionBest, []string{"미개봉", "새상품", "새제품", "미사용", "풀박스", "새거"}},
	{models.ConditionWorst, []string{"고장", "부품용", "파손", "미작동", "먹통", "액정나감"}},
	{models.ConditionBad, []string{"하자", "기스많", "사용감많", "많이사용", "찍힘"}},
	{models.ConditionSoso, []string{"중고", "사용감", "생활기스", "양호"}},
	{models.ConditionGood, []string{"a급", "s급", "상태좋", "깨끗"}},
}

// InferCondition maps a raw product title to a condition label. Titles that
// match no keyword default to best, matching how shopping-search results are
// overwhelmingly new items.
func InferCondition(title string) string {
	normalized := strings.ToLower(strings.ReplaceAll(title, " ", ""))
	for _, group := range conditionKeywords {
		for _, term := range group.terms {
			if strings.Contains(normalized, term) {
				return group.condition
			}
		}
	}
	return models.ConditionBest
}
