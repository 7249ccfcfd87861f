package ai

import (
	"context"
	"strings"
	"time"
)

// Canned answers for offline operation, keyed by a keyword contained in the
// query. Carried over verbatim from the production knowledge snippets.
var mockResponses = map[string]map[string]string{
	"chinese": {
		"高血压": "高血压是常见的慢性疾病，日常应注意：\n1. 限制钠盐摄入\n2. 规律测量血压\n3. 保持适当运动\n4. 避免情绪激动\n5. 按时服药\n6. 戒烟限酒",
		"糖尿病": "糖尿病患者日常管理建议：\n1. 控制碳水化合物摄入\n2. 规律监测血糖\n3. 坚持适量运动\n4. 按医嘱服药\n5. 定期进行并发症筛查",
		"感冒":  "普通感冒建议：\n1. 多休息，保证充足睡眠\n2. 多饮水\n3. 可服用对症药物缓解症状\n4. 如症状持续超过一周或出现高热应及时就医",
	},
	"mongolian": {
		"高血压": "ᠴᠢᠰᠦᠨ ᠦ ᠳᠠᠷᠤᠯᠲᠠ ᠥᠨᠳᠥᠷ ᠡᠪᠡᠳᠴᠢᠲᠡᠨ ᠦ ᠡᠳᠦᠷ ᠲᠤᠲᠤᠮ ᠤᠨ ᠠᠩᠬᠠᠷᠬᠤ ᠵᠦᠢᠯ᠄\n1. ᠳᠠᠪᠤᠰᠤ ᠢᠳᠡᠬᠦ ᠶᠢ ᠬᠢᠵᠠᠭᠠᠷᠯᠠᠬᠤ\n2. ᠴᠢᠰᠦᠨ ᠦ ᠳᠠᠷᠤᠯᠲᠠ ᠪᠠᠨ ᠲᠣᠭᠲᠠᠮᠠᠯ ᠬᠡᠮᠵᠢᠬᠦ\n3. ᠵᠣᠬᠢᠰᠲᠠᠢ ᠳᠠᠰᠬᠠᠯ ᠬᠥᠳᠡᠯᠭᠡᠭᠡᠨ ᠬᠢᠬᠦ\n4. ᠰᠡᠳᠬᠢᠯ ᠬᠥᠳᠡᠯᠦᠯ ᠡᠴᠡ ᠵᠠᠢᠯᠠᠰᠬᠢᠬᠦ\n5. ᠡᠮ ᠢᠶᠠᠨ ᠴᠠᠭ ᠲᠤᠬᠠᠢ ᠳᠤᠨᠢ ᠤᠤᠭᠤᠬᠤ\n6. ᠲᠠᠮᠠᠬᠢ ᠲᠠᠲᠠᠬᠤ ᠦᠭᠡᠢ᠂ ᠠᠷᠢᠬᠢ ᠤᠤᠭᠤᠬᠤ ᠦᠭᠡᠢ ᠪᠠᠢᠬᠤ",
		"糖尿病": "ᠴᠢᠬᠢᠷ ᠰᠢᠵᠢᠩ ᠡᠪᠡᠳᠴᠢᠲᠡᠨ ᠳᠦ ᠡᠳᠦᠷ ᠲᠤᠲᠤᠮ ᠤᠨ ᠵᠥᠪᠯᠡᠭᠡ᠄\n1. ᠨᠢᠭᠦᠷᠰᠦ ᠤᠰᠤᠨ ᠤ ᠬᠡᠷᠡᠭᠯᠡᠭᠡ ᠶᠢ ᠬᠢᠨᠠᠬᠤ\n2. ᠴᠢᠰᠦᠨ ᠳᠠᠬᠢ ᠴᠢᠬᠢᠷ ᠢ ᠲᠣᠭᠲᠠᠮᠠᠯ ᠬᠢᠨᠠᠬᠤ\n3. ᠲᠣᠬᠢᠷᠠᠭᠰᠠᠨ ᠳᠠᠰᠬᠠᠯ ᠬᠥᠳᠡᠯᠭᠡᠭᠡᠨ ᠬᠢᠬᠦ\n4. ᠡᠮᠴᠢ ᠶᠢᠨ ᠵᠢᠭᠠᠪᠤᠷᠢ ᠶᠢᠨ ᠳᠠᠭᠠᠤ ᠡᠮ ᠤᠤᠭᠤᠬᠤ\n5. ᠬᠦᠨᠳᠦᠷᠡᠯ ᠦᠨ ᠰᠢᠨᠵᠢᠯᠡᠭᠡ ᠶᠢ ᠲᠣᠭᠲᠠᠮᠠᠯ ᠬᠢᠯᠭᠡᠬᠦ",
		"感冒":  "ᠡᠩ ᠦᠨ ᠬᠠᠨᠢᠶᠠᠳᠤᠨ ᠵᠥᠪᠯᠡᠭᠡ᠄\n1. ᠠᠮᠠᠷᠠᠬᠤ᠂ ᠬᠠᠩᠭᠠᠯᠲᠠᠢ ᠤᠨᠲᠠᠬᠤ\n2. ᠢᠬᠡ ᠬᠡᠮᠵᠢᠶᠡᠨ ᠦ ᠰᠢᠩᠭᠡᠨ ᠤᠤᠭᠤᠬᠤ\n3. ᠰᠢᠨᠵᠢ ᠲᠡᠮᠳᠡᠭ ᠢ ᠨᠠᠮᠳᠠᠭᠠᠬᠤ ᠡᠮ ᠤᠤᠭᠤᠬᠤ\n4. ᠬᠡᠷᠪᠡ ᠰᠢᠨᠵᠢ ᠲᠡᠮᠳᠡᠭ ᠳᠣᠯᠣᠭᠠᠨ ᠬᠣᠨᠣᠭ ᠠᠴᠠ ᠳᠡᠭᠡᠷᠡ ᠦᠷᠭᠦᠯᠵᠢᠯᠡᠭᠰᠡᠨ ᠡᠰᠡᠬᠦᠯᠡ ᠥᠨᠳᠥᠷ ᠬᠠᠯᠠᠭᠤᠷᠠᠭᠰᠠᠨ ᠪᠣᠯ ᠡᠮᠴᠢ ᠳᠦ ᠶᠠᠭᠠᠷᠠᠯᠲᠠᠢ ᠦᠵᠡᠭᠦᠯᠬᠦ",
	},
}

var mockFallbacks = map[string]string{
	"chinese":   "很抱歉，我无法理解您的问题。请提供更多信息，或咨询其他健康问题。",
	"mongolian": "ᠤᠴᠢᠷ ᠤᠨ ᠤᠴᠢᠷ᠂ ᠪᠢ ᠲᠠᠨ ᠤ ᠠᠰᠠᠭᠤᠯᠲᠠ ᠶᠢ ᠣᠢᠢᠯᠠᠭᠠᠬᠤ ᠦᠭᠡᠢ ᠪᠠᠢᠨᠠ᠃ ᠲᠠ ᠨᠡᠩ ᠣᠯᠠᠨ ᠮᠡᠳᠡᠭᠡᠯᠡᠯ ᠥᠭᠬᠦ ᠡᠰᠡᠬᠦᠯᠡ ᠥᠭᠡᠷᠡ ᠡᠷᠡᠭᠦᠯ ᠮᠡᠨᠳᠦ ᠶᠢᠨ ᠠᠰᠠᠭᠤᠯᠲᠠ ᠠᠰᠠᠭᠤᠨᠠ ᠤᠤ᠃",
}

// MockQAClient is the deterministic offline substitute for the live model.
// It always succeeds: unknown queries get the generic fallback answer.
type MockQAClient struct{}

func NewMockQAClient() *MockQAClient {
	return &MockQAClient{}
}

// Query picks a canned answer by keyword containment. Generation parameters
// are accepted for interface parity and ignored.
func (c *MockQAClient) Query(_ context.Context, query, language string, _ int, _ float64) QAResult {
	lang := strings.ToLower(language)
	responses, ok := mockResponses[lang]
	if !ok {
		lang = "chinese"
		responses = mockResponses[lang]
	}

	text := mockFallbacks[lang]
	for keyword, resp := range responses {
		if strings.Contains(query, keyword) {
			text = resp
			break
		}
	}

	// Synthetic latency figure in the 0.5-3.5s range, no actual sleeping.
	timeTaken := round2(float64(time.Now().UnixMilli()%3000)/1000 + 0.5)

	return QAResult{Response: text, TimeTaken: timeTaken, OK: true, Mock: true}
}
