package pricing

import (
	"testing"

	"hunter-market/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestInferCondition(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"미개봉 새상품", models.ConditionBest},
		{"아이패드 미사용 풀박스", models.ConditionBest},
		{"중고 A급", models.ConditionSoso},
		{"사용감 있는 노트북", models.ConditionSoso},
		{"고장 부품용", models.ConditionWorst},
		{"액정나감 부품용 판매", models.ConditionWorst},
		{"하자 있음 싸게 팝니다", models.ConditionBad},
		{"S급 에어팟", models.ConditionGood},
		{"상태좋은 자전거", models.ConditionGood},
		// no keyword: shopping results are overwhelmingly new items
		{"갤럭시 버즈3 프로", models.ConditionBest},
		{"", models.ConditionBest},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCondition(tt.title))
		})
	}
}

func TestInferConditionNegativeBeatsPositive(t *testing.T) {
	// 중고 is checked before A급: a used A-grade item is still used.
	assert.Equal(t, models.ConditionSoso, InferCondition("중고 A급 최상"))
	// but outright broken beats everything below best
	assert.Equal(t, models.ConditionWorst, InferCondition("사용감 있는 고장 노트북"))
}
